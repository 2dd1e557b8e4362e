package stats

// Category 标识年度统计中的一个计数器列。
// 取值与API路径参数和数据库列名一致。
type Category string

const (
	CategoryBooksRead       Category = "books_read"
	CategoryComicsRead      Category = "comics_read"
	CategoryMoviesWatched   Category = "movies_watched"
	CategoryTVShowsFinished Category = "tv_shows_finished"
)

// Categories 列出全部合法的年度统计类别。
var Categories = []Category{
	CategoryBooksRead,
	CategoryComicsRead,
	CategoryMoviesWatched,
	CategoryTVShowsFinished,
}

// ValidCategory 判断一个字符串是否是合法的年度统计类别。
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// CategoryForMediaType 把媒体类型映射为对应的年度计数器。
// 未知类型返回false，调用方应静默跳过（保持宽松语义）。
func CategoryForMediaType(mediaType string) (Category, bool) {
	switch mediaType {
	case "book":
		return CategoryBooksRead, true
	case "comic":
		return CategoryComicsRead, true
	case "movie":
		return CategoryMoviesWatched, true
	case "tv":
		return CategoryTVShowsFinished, true
	default:
		return "", false
	}
}

// DailyReading 是每个(用户, 日期)一行的当日阅读页数累计。
// 行只增不删，“今天”的查询自然地随日期翻转而换行。
type DailyReading struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    uint   `gorm:"uniqueIndex:idx_daily_user_date;not null" json:"user_id"`
	Date      string `gorm:"uniqueIndex:idx_daily_user_date;not null" json:"date"`
	PagesRead int    `gorm:"default:0" json:"pages_read"`
}

// TableName 保持与历史数据库相同的单数表名。
func (DailyReading) TableName() string { return "daily_reading" }

// AnnualStats 是每个(用户, 年份)一行的年度完成计数。
// 行在该用户当年第一次完成事件时创建，之后各计数器独立累加。
type AnnualStats struct {
	ID              uint `gorm:"primarykey" json:"id"`
	UserID          uint `gorm:"uniqueIndex:idx_annual_user_year;not null" json:"user_id"`
	Year            int  `gorm:"uniqueIndex:idx_annual_user_year;not null" json:"year"`
	BooksRead       int  `gorm:"default:0" json:"books_read"`
	ComicsRead      int  `gorm:"default:0" json:"comics_read"`
	MoviesWatched   int  `gorm:"default:0" json:"movies_watched"`
	TVShowsFinished int  `gorm:"column:tv_shows_finished;default:0" json:"tv_shows_finished"`
}

// TableName 保持与历史数据库相同的表名。
func (AnnualStats) TableName() string { return "annual_stats" }

// CounterFor 返回指定类别的计数器值。
func (a AnnualStats) CounterFor(cat Category) int {
	switch cat {
	case CategoryBooksRead:
		return a.BooksRead
	case CategoryComicsRead:
		return a.ComicsRead
	case CategoryMoviesWatched:
		return a.MoviesWatched
	case CategoryTVShowsFinished:
		return a.TVShowsFinished
	default:
		return 0
	}
}
