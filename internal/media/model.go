package media

import "time"

// Type 是被追踪作品的媒体类型，封闭枚举。
type Type string

const (
	TypeMovie Type = "movie"
	TypeTV    Type = "tv"
	TypeBook  Type = "book"
	TypeComic Type = "comic"
)

// Valid 判断媒体类型是否合法。
func (t Type) Valid() bool {
	switch t {
	case TypeMovie, TypeTV, TypeBook, TypeComic:
		return true
	}
	return false
}

// Status 表示条目属于待看/待读清单还是已看/已读日志。
type Status string

const (
	StatusWatchlist Status = "watchlist"
	StatusReadlist  Status = "readlist"
	StatusWatched   Status = "watched"
	StatusRead      Status = "read"
)

// Valid 判断状态是否合法。
func (s Status) Valid() bool {
	switch s {
	case StatusWatchlist, StatusReadlist, StatusWatched, StatusRead:
		return true
	}
	return false
}

// MediaItem 是一条被追踪的作品记录，归属于单个用户。
//
// 不变式：DateCompleted非空当且仅当IsFinished曾经为真；
// 它在第一次false→true转变时被设置，此后任何编辑都不会清除或改写它。
type MediaItem struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Title         string     `gorm:"not null" json:"title"`
	Type          Type       `gorm:"type:text;not null" json:"type"`
	Status        Status     `gorm:"type:text;not null" json:"status"`
	Rating        *float64   `json:"rating"`
	Review        *string    `json:"review"`
	ReleaseDate   *string    `json:"release_date"`
	PagesRead     int        `gorm:"default:0" json:"pages_read"`
	TotalPages    *int       `json:"total_pages"`
	IsFinished    bool       `gorm:"default:false" json:"is_finished"`
	DateAdded     time.Time  `gorm:"autoCreateTime" json:"date_added"`
	DateCompleted *time.Time `json:"date_completed"`
}
