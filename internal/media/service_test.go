package media

import (
	"path/filepath"
	"testing"

	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"github.com/SlpAus/media-diary-backend/internal/stats"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, PrimeModule(db))
	require.NoError(t, stats.PrimeModule(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	statsService := stats.NewService(db, rdb, config.StatsConfig{})
	return NewService(db, statsService), db
}

func ptrFloat(v float64) *float64 { return &v }

func baseUpdate(item *MediaItem) UpdateInput {
	return UpdateInput{
		Title:       item.Title,
		Type:        item.Type,
		Status:      item.Status,
		Rating:      item.Rating,
		Review:      item.Review,
		ReleaseDate: item.ReleaseDate,
		PagesRead:   item.PagesRead,
		IsFinished:  item.IsFinished,
	}
}

func reload(t *testing.T, db *gorm.DB, id uint) MediaItem {
	t.Helper()
	var item MediaItem
	require.NoError(t, db.First(&item, id).Error)
	return item
}

func TestAddItemDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)
	require.NotZero(t, item.ID)
	require.False(t, item.IsFinished)
	require.Zero(t, item.PagesRead)
	require.Nil(t, item.DateCompleted)
	require.False(t, item.DateAdded.IsZero())
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newTestService(t)

	var vErr *ValidationError

	_, err := svc.AddItem(1, ItemInput{Title: "", Type: TypeBook, Status: StatusReadlist})
	require.ErrorAs(t, err, &vErr)

	_, err = svc.AddItem(1, ItemInput{Title: "x", Type: "podcast", Status: StatusReadlist})
	require.ErrorAs(t, err, &vErr)

	_, err = svc.AddItem(1, ItemInput{Title: "x", Type: TypeBook, Status: "queued"})
	require.ErrorAs(t, err, &vErr)

	_, err = svc.AddItem(1, ItemInput{Title: "x", Type: TypeBook, Status: StatusReadlist, Rating: ptrFloat(5.5)})
	require.ErrorAs(t, err, &vErr)

	_, err = svc.AddItem(1, ItemInput{Title: "x", Type: TypeBook, Status: StatusReadlist, Rating: ptrFloat(-1)})
	require.ErrorAs(t, err, &vErr)
}

func TestListItemsFilterAndSort(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(1, ItemInput{Title: "Alien", Type: TypeMovie, Status: StatusWatched, Rating: ptrFloat(5)})
	require.NoError(t, err)
	_, err = svc.AddItem(1, ItemInput{Title: "Blade Runner", Type: TypeMovie, Status: StatusWatchlist, Rating: ptrFloat(4)})
	require.NoError(t, err)
	_, err = svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist, Rating: ptrFloat(3)})
	require.NoError(t, err)
	_, err = svc.AddItem(2, ItemInput{Title: "Other User", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	items, err := svc.ListItems(1, ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	items, err = svc.ListItems(1, ListFilter{Type: "movie"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = svc.ListItems(1, ListFilter{Status: "readlist"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Dune", items[0].Title)

	items, err = svc.ListItems(1, ListFilter{SortBy: "rating", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, []string{"Dune", "Blade Runner", "Alien"},
		[]string{items[0].Title, items[1].Title, items[2].Title})

	items, err = svc.ListItems(1, ListFilter{SortBy: "title", SortOrder: "desc"})
	require.NoError(t, err)
	require.Equal(t, "Dune", items[0].Title)

	// 排序方向大小写不敏感
	items, err = svc.ListItems(1, ListFilter{SortBy: "title", SortOrder: "Asc"})
	require.NoError(t, err)
	require.Equal(t, "Alien", items[0].Title)
}

func TestListItemsLenientSortStrictFilter(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(1, ItemInput{Title: "A", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	// 未知排序字段静默回退，不报错
	items, err := svc.ListItems(1, ListFilter{SortBy: "user_id; DROP TABLE media_items"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 未知过滤值是硬错误
	var vErr *ValidationError
	_, err = svc.ListItems(1, ListFilter{Status: "nope"})
	require.ErrorAs(t, err, &vErr)
	_, err = svc.ListItems(1, ListFilter{Type: "nope"})
	require.ErrorAs(t, err, &vErr)
}

func TestListItemsEmptyIsNotNil(t *testing.T) {
	svc, _ := newTestService(t)

	items, err := svc.ListItems(42, ListFilter{})
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestUpdateItemCrossUserNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	err = svc.UpdateItem(2, item.ID, baseUpdate(item))
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItemCompletionExactlyOnce(t *testing.T) {
	svc, db := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	// 第一次完成：设置date_completed并计入年度统计
	in := baseUpdate(item)
	in.IsFinished = true
	in.Status = StatusRead
	require.NoError(t, svc.UpdateItem(1, item.ID, in))

	got := reload(t, db, item.ID)
	require.True(t, got.IsFinished)
	require.NotNil(t, got.DateCompleted)
	firstCompleted := *got.DateCompleted

	var annual stats.AnnualStats
	require.NoError(t, db.Where("user_id = ?", 1).First(&annual).Error)
	require.Equal(t, 1, annual.BooksRead)

	// 改回未完成：date_completed保留，统计不回退
	in.IsFinished = false
	require.NoError(t, svc.UpdateItem(1, item.ID, in))
	got = reload(t, db, item.ID)
	require.False(t, got.IsFinished)
	require.NotNil(t, got.DateCompleted)
	require.True(t, got.DateCompleted.Equal(firstCompleted))

	// 再次完成：不重新触发统计，date_completed不变
	in.IsFinished = true
	require.NoError(t, svc.UpdateItem(1, item.ID, in))
	got = reload(t, db, item.ID)
	require.True(t, got.IsFinished)
	require.True(t, got.DateCompleted.Equal(firstCompleted))

	require.NoError(t, db.Where("user_id = ?", 1).First(&annual).Error)
	require.Equal(t, 1, annual.BooksRead)
}

func TestUpdateItemCompletionUsesPreviousType(t *testing.T) {
	svc, db := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Arrival", Type: TypeMovie, Status: StatusWatchlist})
	require.NoError(t, err)

	// 同一次更新里既改类型又标记完成：统计按更新前的类型计入
	in := baseUpdate(item)
	in.Type = TypeBook
	in.IsFinished = true
	require.NoError(t, svc.UpdateItem(1, item.ID, in))

	var annual stats.AnnualStats
	require.NoError(t, db.Where("user_id = ?", 1).First(&annual).Error)
	require.Equal(t, 1, annual.MoviesWatched)
	require.Equal(t, 0, annual.BooksRead)

	require.Equal(t, TypeBook, reload(t, db, item.ID).Type)
}

func TestUpdateItemPlainEditKeepsCompletion(t *testing.T) {
	svc, db := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	in := baseUpdate(item)
	in.IsFinished = true
	require.NoError(t, svc.UpdateItem(1, item.ID, in))
	completed := *reload(t, db, item.ID).DateCompleted

	// 完成后普通编辑（改评分/页数）不得清空date_completed
	in.Rating = ptrFloat(4.5)
	in.PagesRead = 412
	require.NoError(t, svc.UpdateItem(1, item.ID, in))

	got := reload(t, db, item.ID)
	require.NotNil(t, got.Rating)
	require.Equal(t, 4.5, *got.Rating)
	require.Equal(t, 412, got.PagesRead)
	require.NotNil(t, got.DateCompleted)
	require.True(t, got.DateCompleted.Equal(completed))
}

func TestDeleteItemLenient(t *testing.T) {
	svc, db := newTestService(t)

	item, err := svc.AddItem(1, ItemInput{Title: "Dune", Type: TypeBook, Status: StatusReadlist})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(1, item.ID))

	var count int64
	require.NoError(t, db.Model(&MediaItem{}).Count(&count).Error)
	require.Zero(t, count)

	// 删除不存在的条目和别人的条目都幂等成功
	require.NoError(t, svc.DeleteItem(1, item.ID))
	require.NoError(t, svc.DeleteItem(2, 9999))
}
