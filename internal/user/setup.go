package user

import (
	"fmt"

	"gorm.io/gorm"
)

// PrimeModule 是user模块的初始化入口，负责迁移表结构。
func PrimeModule(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移users表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}
