package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB 根据配置构造主存储的连接句柄。
// 返回的*gorm.DB会被显式传递给各个模块，不使用全局单例。
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中设为Silent
			Colorful:      true,
		},
	)
	gormConfig := &gorm.Config{Logger: newLogger}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.Sqlite.Path
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("无法创建SQLite数据目录: %w", err)
			}
		}
		// 设置busy_timeout，让并发写入排队而不是直接失败
		dsn := path
		if !strings.Contains(dsn, "?") {
			dsn = "file:" + dsn + "?_busy_timeout=5000"
		}
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.Postgres.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	fmt.Println("数据库连接成功！")
	return db, nil
}
