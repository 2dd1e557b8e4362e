package stats

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyDailyDelta 以单条原子upsert累加(用户, 日期)的阅读页数。
// 并发调用由存储层串行化，不存在读-改-写竞态。
func applyDailyDelta(tx *gorm.DB, owner uint, date string, pages int) error {
	row := DailyReading{UserID: owner, Date: date, PagesRead: pages}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"pages_read": gorm.Expr("pages_read + ?", pages),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("无法累加当日阅读页数: %w", err)
	}
	return nil
}

// applyCompletion 以单条原子upsert把(用户, 年份)的指定类别计数器加一。
// cat来自封闭枚举，列名直接拼入表达式是安全的。
func applyCompletion(tx *gorm.DB, owner uint, year int, cat Category) error {
	row := AnnualStats{UserID: owner, Year: year}
	switch cat {
	case CategoryBooksRead:
		row.BooksRead = 1
	case CategoryComicsRead:
		row.ComicsRead = 1
	case CategoryMoviesWatched:
		row.MoviesWatched = 1
	case CategoryTVShowsFinished:
		row.TVShowsFinished = 1
	default:
		return fmt.Errorf("未知的年度统计类别: %s", cat)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			string(cat): gorm.Expr(string(cat) + " + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("无法累加年度统计: %w", err)
	}
	return nil
}
