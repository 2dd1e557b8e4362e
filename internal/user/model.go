package user

import "time"

// User 定义了用户在数据库中的持久化模型。
// 密码哈希永远不会被序列化到任何响应中。
type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	ProfilePicture *string   `json:"profile_picture"`
	Bio            *string   `json:"bio"`
	FavoriteMovies *string   `json:"favorite_movies"`
	FavoriteShows  *string   `json:"favorite_shows"`
	FavoriteBooks  *string   `json:"favorite_books"`
	FavoriteGenres *string   `json:"favorite_genres"`
	CreatedAt      time.Time `json:"created_at"`
}
