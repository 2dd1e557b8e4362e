package stats

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, PrimeModule(db))
	return db
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(newTestDB(t), rdb, config.StatsConfig{}), mr
}

func TestAddDailyPagesMergesAdditively(t *testing.T) {
	s, _ := newTestService(t)

	require.NoError(t, s.AddDailyPages(1, 20))
	require.NoError(t, s.AddDailyPages(1, 15))

	var row DailyReading
	require.NoError(t, s.db.Where("user_id = ? AND date = ?", 1, s.Today()).First(&row).Error)
	require.Equal(t, 35, row.PagesRead)

	score, err := s.rdb.ZScore(Ctx, DailyLeaderboardKey(s.Today()), "1").Result()
	require.NoError(t, err)
	require.Equal(t, float64(35), score)
}

func TestAddDailyPagesAcceptsNegativeDelta(t *testing.T) {
	s, _ := newTestService(t)

	require.NoError(t, s.AddDailyPages(1, 30))
	require.NoError(t, s.AddDailyPages(1, -10))

	var row DailyReading
	require.NoError(t, s.db.Where("user_id = ?", 1).First(&row).Error)
	require.Equal(t, 20, row.PagesRead)
}

func TestAddDailyPagesConcurrent(t *testing.T) {
	s, _ := newTestService(t)

	const workers = 8
	const pages = 5

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.AddDailyPages(7, pages)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var row DailyReading
	require.NoError(t, s.db.Where("user_id = ?", 7).First(&row).Error)
	require.Equal(t, workers*pages, row.PagesRead)

	score, err := s.rdb.ZScore(Ctx, DailyLeaderboardKey(s.Today()), "7").Result()
	require.NoError(t, err)
	require.Equal(t, float64(workers*pages), score)
}

func TestDailyRowsArePerDate(t *testing.T) {
	s, _ := newTestService(t)

	// 昨天的行不参与今天的累计
	require.NoError(t, applyDailyDelta(s.db, 1, "2000-01-01", 99))
	require.NoError(t, s.AddDailyPages(1, 10))

	var row DailyReading
	require.NoError(t, s.db.Where("user_id = ? AND date = ?", 1, s.Today()).First(&row).Error)
	require.Equal(t, 10, row.PagesRead)

	var count int64
	require.NoError(t, s.db.Model(&DailyReading{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestRecordCompletionIncrementsMappedCounter(t *testing.T) {
	s, _ := newTestService(t)

	require.NoError(t, s.RecordCompletion(3, "book"))
	require.NoError(t, s.RecordCompletion(3, "book"))
	require.NoError(t, s.RecordCompletion(3, "movie"))

	var row AnnualStats
	require.NoError(t, s.db.Where("user_id = ? AND year = ?", 3, s.CurrentYear()).First(&row).Error)
	require.Equal(t, 2, row.BooksRead)
	require.Equal(t, 1, row.MoviesWatched)
	require.Equal(t, 0, row.ComicsRead)
	require.Equal(t, 0, row.TVShowsFinished)

	score, err := s.rdb.ZScore(Ctx, AnnualLeaderboardKey(s.CurrentYear(), CategoryBooksRead), "3").Result()
	require.NoError(t, err)
	require.Equal(t, float64(2), score)
}

func TestRecordCompletionBackfillsOtherCategories(t *testing.T) {
	s, _ := newTestService(t)

	// 首次完成后用户要出现在全部四个类别的镜像里，未完成的类别计0
	require.NoError(t, s.RecordCompletion(3, "book"))

	for _, cat := range Categories {
		score, err := s.rdb.ZScore(Ctx, AnnualLeaderboardKey(s.CurrentYear(), cat), "3").Result()
		require.NoError(t, err)
		if cat == CategoryBooksRead {
			require.Equal(t, float64(1), score)
		} else {
			require.Equal(t, float64(0), score)
		}
	}

	// 0分补位不会覆盖已有的真实计数
	require.NoError(t, s.RecordCompletion(3, "movie"))
	require.NoError(t, s.RecordCompletion(3, "book"))

	score, err := s.rdb.ZScore(Ctx, AnnualLeaderboardKey(s.CurrentYear(), CategoryBooksRead), "3").Result()
	require.NoError(t, err)
	require.Equal(t, float64(2), score)
	score, err = s.rdb.ZScore(Ctx, AnnualLeaderboardKey(s.CurrentYear(), CategoryMoviesWatched), "3").Result()
	require.NoError(t, err)
	require.Equal(t, float64(1), score)
}

func TestRecordCompletionUnknownTypeIsNoop(t *testing.T) {
	s, _ := newTestService(t)

	require.NoError(t, s.RecordCompletion(3, "podcast"))

	var count int64
	require.NoError(t, s.db.Model(&AnnualStats{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestWarmupCacheRebuildsMirror(t *testing.T) {
	s, mr := newTestService(t)

	require.NoError(t, s.AddDailyPages(1, 25))
	require.NoError(t, s.AddDailyPages(2, 40))
	require.NoError(t, s.RecordCompletion(1, "comic"))

	// 模拟Redis重启丢失全部镜像
	mr.FlushAll()
	require.NoError(t, s.WarmupCache())

	score, err := s.rdb.ZScore(Ctx, DailyLeaderboardKey(s.Today()), "2").Result()
	require.NoError(t, err)
	require.Equal(t, float64(40), score)

	score, err = s.rdb.ZScore(Ctx, AnnualLeaderboardKey(s.CurrentYear(), CategoryComicsRead), "1").Result()
	require.NoError(t, err)
	require.Equal(t, float64(1), score)
}

func TestCategoryForMediaType(t *testing.T) {
	cases := map[string]Category{
		"book":  CategoryBooksRead,
		"comic": CategoryComicsRead,
		"movie": CategoryMoviesWatched,
		"tv":    CategoryTVShowsFinished,
	}
	for mediaType, want := range cases {
		got, ok := CategoryForMediaType(mediaType)
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	_, ok := CategoryForMediaType("vinyl")
	require.False(t, ok)
}
