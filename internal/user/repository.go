package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository 封装了user表的所有数据库访问。
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建一个user仓库，持有外部注入的数据库句柄。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 插入一条新用户记录。
// 邮箱或用户名冲突时返回ErrDuplicateUser。
func (r *Repository) Create(u *User) error {
	if err := r.db.Create(u).Error; err != nil {
		// SQLite与PostgreSQL驱动对唯一约束错误的封装不同，这里统一判断
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

// FindByEmail 按邮箱查找用户，不存在时返回gorm.ErrRecordNotFound。
func (r *Repository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID 按主键查找用户。
func (r *Repository) FindByID(id uint) (*User, error) {
	var u User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile 整体替换用户的个人资料字段。
func (r *Repository) UpdateProfile(id uint, in ProfileInput) error {
	return r.db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"bio":             in.Bio,
		"favorite_movies": in.FavoriteMovies,
		"favorite_shows":  in.FavoriteShows,
		"favorite_books":  in.FavoriteBooks,
		"favorite_genres": in.FavoriteGenres,
	}).Error
}

// UpdateProfilePicture 更新用户头像的访问路径。
func (r *Repository) UpdateProfilePicture(id uint, pictureURL string) error {
	return r.db.Model(&User{}).Where("id = ?", id).Update("profile_picture", pictureURL).Error
}
