package stats

import (
	"fmt"
	"net/http"

	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 持有stats模块的HTTP处理器依赖。
type Handler struct {
	service *Service
}

// NewHandler 创建stats模块的HTTP处理器。
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type dailyReadingRequest struct {
	// 指针用于区分“缺失”和“0页”；负数增量按历史行为原样接受
	Pages *int `json:"pages"`
}

// AddDailyReading 处理 POST /api/reading/daily
func (h *Handler) AddDailyReading(c *gin.Context) {
	var req dailyReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Pages == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pages value is required"})
		return
	}

	if err := h.service.AddDailyPages(user.CurrentUserID(c), *req.Pages); err != nil {
		fmt.Printf("累加当日阅读失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating daily reading"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Daily reading updated successfully"})
}
