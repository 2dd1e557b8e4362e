package api

import (
	"github.com/SlpAus/media-diary-backend/internal/leaderboard"
	"github.com/SlpAus/media-diary-backend/internal/media"
	"github.com/SlpAus/media-diary-backend/internal/platform/health"
	"github.com/SlpAus/media-diary-backend/internal/stats"
	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/SlpAus/media-diary-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// Handlers 汇集各模块的HTTP处理器，由main构造后注入。
type Handlers struct {
	User        *user.Handler
	Media       *media.Handler
	Stats       *stats.Handler
	Leaderboard *leaderboard.Handler
	Health      *health.Checker
	TokenMaker  *token.Maker
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health.Handler)

		// 认证相关的路由（无需令牌）
		api.POST("/register", h.User.Register)
		api.POST("/login", h.User.Login)

		// 其余路由全部要求Bearer令牌
		authed := api.Group("", user.RequireAuth(h.TokenMaker))
		{
			// 个人资料
			authed.GET("/profile", h.User.GetProfile)
			authed.PUT("/profile", h.User.UpdateProfile)
			authed.POST("/profile/picture", h.User.UploadProfilePicture)

			// 媒体条目
			authed.POST("/media", h.Media.AddMedia)
			authed.GET("/media", h.Media.ListMedia)
			authed.PUT("/media/:id", h.Media.UpdateMedia)
			authed.DELETE("/media/:id", h.Media.DeleteMedia)

			// 每日阅读进度
			authed.POST("/reading/daily", h.Stats.AddDailyReading)

			// 排行榜
			authed.GET("/leaderboard/daily-reading", h.Leaderboard.DailyReading)
			authed.GET("/leaderboard/annual/:category", h.Leaderboard.Annual)
		}
	}
}
