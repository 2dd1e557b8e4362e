package leaderboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler 持有leaderboard模块的HTTP处理器依赖。
type Handler struct {
	service *Service
}

// NewHandler 创建leaderboard模块的HTTP处理器。
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// DailyReading 处理 GET /api/leaderboard/daily-reading
func (h *Handler) DailyReading(c *gin.Context) {
	entries, err := h.service.DailyReading()
	if err != nil {
		fmt.Printf("查询当日排行榜失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Annual 处理 GET /api/leaderboard/annual/:category
func (h *Handler) Annual(c *gin.Context) {
	entries, err := h.service.Annual(c.Param("category"))
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		fmt.Printf("查询年度排行榜失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
