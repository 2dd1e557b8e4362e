package media

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 持有media模块的HTTP处理器依赖。
type Handler struct {
	service *Service
}

// NewHandler 创建media模块的HTTP处理器。
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeError(c *gin.Context, err error, serverMessage string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item not found"})
	default:
		fmt.Printf("媒体条目操作失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": serverMessage})
	}
}

type addMediaRequest struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Rating      *float64 `json:"rating"`
	Review      *string  `json:"review"`
	ReleaseDate *string  `json:"release_date"`
	TotalPages  *int     `json:"total_pages"`
}

// AddMedia 处理 POST /api/media
func (h *Handler) AddMedia(c *gin.Context) {
	var req addMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.service.AddItem(user.CurrentUserID(c), ItemInput{
		Title:       req.Title,
		Type:        Type(req.Type),
		Status:      Status(req.Status),
		Rating:      req.Rating,
		Review:      req.Review,
		ReleaseDate: req.ReleaseDate,
		TotalPages:  req.TotalPages,
	})
	if err != nil {
		h.writeError(c, err, "Error adding media item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": item.ID, "message": "Media item added successfully"})
}

// ListMedia 处理 GET /api/media?status=&type=&sort_by=&sort_order=
func (h *Handler) ListMedia(c *gin.Context) {
	items, err := h.service.ListItems(user.CurrentUserID(c), ListFilter{
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		SortBy:    c.DefaultQuery("sort_by", "date_added"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	})
	if err != nil {
		h.writeError(c, err, "Error fetching media items")
		return
	}

	c.JSON(http.StatusOK, items)
}

type updateMediaRequest struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Rating      *float64 `json:"rating"`
	Review      *string  `json:"review"`
	ReleaseDate *string  `json:"release_date"`
	PagesRead   int      `json:"pages_read"`
	IsFinished  bool     `json:"is_finished"`
}

// UpdateMedia 处理 PUT /api/media/:id
func (h *Handler) UpdateMedia(c *gin.Context) {
	// 非数字ID不可能命中任何条目，与不存在等价
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media item not found"})
		return
	}

	var req updateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.service.UpdateItem(user.CurrentUserID(c), uint(id), UpdateInput{
		Title:       req.Title,
		Type:        Type(req.Type),
		Status:      Status(req.Status),
		Rating:      req.Rating,
		Review:      req.Review,
		ReleaseDate: req.ReleaseDate,
		PagesRead:   req.PagesRead,
		IsFinished:  req.IsFinished,
	})
	if err != nil {
		h.writeError(c, err, "Error updating media item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media item updated successfully"})
}

// DeleteMedia 处理 DELETE /api/media/:id
// 宽松语义：删除不存在的条目同样返回成功。
func (h *Handler) DeleteMedia(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err == nil {
		if err := h.service.DeleteItem(user.CurrentUserID(c), uint(id)); err != nil {
			h.writeError(c, err, "Error deleting media item")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media item deleted successfully"})
}
