package user

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// allowedImageExts 是头像上传允许的文件扩展名集合。
var allowedImageExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

// Handler 持有user模块的HTTP处理器依赖。
type Handler struct {
	service       *Service
	uploadDir     string
	maxUploadSize int64
}

// NewHandler 创建user模块的HTTP处理器。
func NewHandler(service *Service, uploadDir string, maxUploadSizeMB int64) *Handler {
	return &Handler{
		service:       service,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// Register 处理 POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	t, u, err := h.service.Register(req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		case errors.Is(err, ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already exists"})
		default:
			fmt.Printf("注册用户失败: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": t,
		"user":  gin.H{"id": u.ID, "email": u.Email, "username": u.Username},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 处理 POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	t, u, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		fmt.Printf("用户登录失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": t, "user": u})
}

// GetProfile 处理 GET /api/profile
func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.service.Profile(CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		fmt.Printf("读取个人资料失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateProfile 处理 PUT /api/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.UpdateProfile(CurrentUserID(c), in); err != nil {
		fmt.Printf("更新个人资料失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UploadProfilePicture 处理 POST /api/profile/picture
// 校验失败或落库失败时，临时保存的文件会被清理，不留下孤儿文件。
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if file.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if !allowedImageExts[ext] || !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed!"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		fmt.Printf("无法创建上传目录: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	filename := uuid.NewString() + ext
	dst := filepath.Join(h.uploadDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		fmt.Printf("保存上传文件失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	pictureURL := "/uploads/" + filename
	if err := h.service.SetProfilePicture(CurrentUserID(c), pictureURL); err != nil {
		// 落库失败时回收已写入的文件
		_ = os.Remove(dst)
		fmt.Printf("更新头像记录失败: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile picture"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile_picture": pictureURL})
}
