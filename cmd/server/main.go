package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/media-diary-backend/api"
	"github.com/SlpAus/media-diary-backend/internal/leaderboard"
	"github.com/SlpAus/media-diary-backend/internal/media"
	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"github.com/SlpAus/media-diary-backend/internal/platform/database"
	"github.com/SlpAus/media-diary-backend/internal/platform/health"
	"github.com/SlpAus/media-diary-backend/internal/platform/shutdown"
	"github.com/SlpAus/media-diary-backend/internal/platform/startup"
	"github.com/SlpAus/media-diary-backend/internal/stats"
	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/SlpAus/media-diary-backend/pkg/lifecycle"
	"github.com/SlpAus/media-diary-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env用于本地开发时注入环境变量，缺失时静默跳过
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	db, err := database.OpenDB(cfg.Database)
	if err != nil {
		panic(err)
	}
	rdb, err := database.OpenRedis(cfg.Database.Redis)
	if err != nil {
		panic(err)
	}

	// 各模块的依赖在这里显式构造和注入
	tokenMaker := token.NewMaker(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	statsService := stats.NewService(db, rdb, cfg.Stats)
	userService := user.NewService(user.NewRepository(db), tokenMaker)
	mediaService := media.NewService(db, statsService)
	leaderboardService := leaderboard.NewService(db, rdb, statsService)

	if err := startup.InitializeApplication(db, statsService); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 健康检查器在Redis重启后负责重建排行榜镜像
	checker := health.NewChecker(db, rdb, statsService.WarmupCache)
	if err := checker.InitializeRunID(); err != nil {
		panic(err)
	}

	manager := lifecycle.NewManager()
	healthHandle, err := manager.NewServiceHandle("health-checker")
	if err != nil {
		panic(err)
	}
	go checker.Run(healthHandle)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 上传的头像以静态文件方式对外提供
	r.Static("/uploads", cfg.Uploads.Dir)

	api.SetupRoutes(r, api.Handlers{
		User:        user.NewHandler(userService, cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB),
		Media:       media.NewHandler(mediaService),
		Stats:       stats.NewHandler(statsService),
		Leaderboard: leaderboard.NewHandler(leaderboardService),
		Health:      checker,
		TokenMaker:  tokenMaker,
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	shutdown.NewCoordinator(manager).ListenForSignalsAndShutdown(server)
}
