package media

import (
	"fmt"

	"gorm.io/gorm"
)

// PrimeModule 是media模块的初始化入口，负责迁移表结构。
func PrimeModule(db *gorm.DB) error {
	if err := db.AutoMigrate(&MediaItem{}); err != nil {
		return fmt.Errorf("无法迁移media_items表: %w", err)
	}
	fmt.Println("MediaItem数据库表迁移成功。")
	return nil
}
