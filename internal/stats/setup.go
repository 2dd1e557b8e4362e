package stats

import (
	"fmt"

	"gorm.io/gorm"
)

// PrimeModule 是stats模块的初始化入口，负责迁移聚合表结构。
func PrimeModule(db *gorm.DB) error {
	if err := db.AutoMigrate(&DailyReading{}, &AnnualStats{}); err != nil {
		return fmt.Errorf("无法迁移统计表: %w", err)
	}
	fmt.Println("统计数据库表迁移成功。")
	return nil
}
