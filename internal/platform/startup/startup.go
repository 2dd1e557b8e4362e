package startup

import (
	"fmt"

	"github.com/SlpAus/media-diary-backend/internal/media"
	"github.com/SlpAus/media-diary-backend/internal/stats"
	"github.com/SlpAus/media-diary-backend/internal/user"
	"gorm.io/gorm"
)

// InitializeApplication 是应用首次启动时执行的总入口：
// 迁移各模块的表结构，然后从权威数据库预热排行榜镜像。
func InitializeApplication(db *gorm.DB, statsService *stats.Service) error {
	fmt.Println("开始应用初始化...")

	if err := user.PrimeModule(db); err != nil {
		return err
	}
	if err := media.PrimeModule(db); err != nil {
		return err
	}
	if err := stats.PrimeModule(db); err != nil {
		return err
	}
	if err := statsService.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
