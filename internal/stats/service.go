package stats

import (
	"fmt"
	"strconv"
	"time"

	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service 实现每日阅读与年度完成统计的聚合逻辑。
// SQLite/PostgreSQL中的行是权威数据，Redis中的排行榜镜像只服务读路径。
type Service struct {
	db     *gorm.DB
	rdb    *redis.Client
	useUTC bool
}

// NewService 创建stats服务。
func NewService(db *gorm.DB, rdb *redis.Client, cfg config.StatsConfig) *Service {
	return &Service{db: db, rdb: rdb, useUTC: cfg.UseUTC}
}

// now 按配置返回本地或UTC时间，统一所有日期边界判定。
func (s *Service) now() time.Time {
	if s.useUTC {
		return time.Now().UTC()
	}
	return time.Now()
}

// Today 返回当前日期的ISO字符串（YYYY-MM-DD）。
func (s *Service) Today() string {
	return s.now().Format("2006-01-02")
}

// CurrentYear 返回当前年份。
func (s *Service) CurrentYear() int {
	return s.now().Year()
}

func member(owner uint) string {
	return strconv.FormatUint(uint64(owner), 10)
}

// warnMirrorDegraded 统一输出镜像写入失败的警告。
// 镜像降级只影响热路径：读侧会回退到SQL，下一次预热会修复镜像。
func warnMirrorDegraded(scope string, err error) {
	fmt.Printf("警告: 更新%s镜像失败: %v\n", scope, err)
}

// AddDailyPages 把pages累加到(owner, 今天)的阅读计数上。
// 历史行为允许任意整数增量，包括负数，这里原样保留。
func (s *Service) AddDailyPages(owner uint, pages int) error {
	date := s.Today()
	if err := applyDailyDelta(s.db, owner, date, pages); err != nil {
		return err
	}

	// 数据库提交成功后更新排行榜镜像。
	// 增量是可交换的，并发写不会互相覆盖。
	key := DailyLeaderboardKey(date)
	pipe := s.rdb.Pipeline()
	pipe.ZIncrBy(Ctx, key, float64(pages), member(owner))
	pipe.Expire(Ctx, key, dailyKeyTTL)
	if _, err := pipe.Exec(Ctx); err != nil {
		warnMirrorDegraded("当日排行榜", err)
	}
	return nil
}

// ApplyCompletionTx 在调用方的事务内记录一次完成事件。
// 返回被累加的类别；未知媒体类型静默跳过并返回false。
// 调用方必须保证每次完成转变只调用一次（见media模块的条件更新）。
func (s *Service) ApplyCompletionTx(tx *gorm.DB, owner uint, mediaType string) (Category, bool, error) {
	cat, ok := CategoryForMediaType(mediaType)
	if !ok {
		return "", false, nil
	}
	if err := applyCompletion(tx, owner, s.CurrentYear(), cat); err != nil {
		return "", false, err
	}
	return cat, true, nil
}

// MirrorCompletion 在完成事件的事务提交后更新年度排行榜镜像。
// 年度行存在的用户要出现在全部四个类别的榜单上（未完成的类别计0），
// 所以除了累加完成类别，还要把用户以0分补进其余类别的键。
func (s *Service) MirrorCompletion(owner uint, cat Category) {
	year := s.CurrentYear()
	m := member(owner)

	pipe := s.rdb.Pipeline()
	pipe.ZIncrBy(Ctx, AnnualLeaderboardKey(year, cat), 1, m)
	for _, other := range Categories {
		if other == cat {
			continue
		}
		pipe.ZAddNX(Ctx, AnnualLeaderboardKey(year, other), redis.Z{Score: 0, Member: m})
	}
	if _, err := pipe.Exec(Ctx); err != nil {
		warnMirrorDegraded("年度排行榜", err)
	}
}

// RecordCompletion 独立记录一次完成事件（自带事务）。
// media模块的更新路径使用ApplyCompletionTx以共享行更新的事务。
func (s *Service) RecordCompletion(owner uint, mediaType string) error {
	var cat Category
	var counted bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		cat, counted, err = s.ApplyCompletionTx(tx, owner, mediaType)
		return err
	})
	if err != nil {
		return err
	}
	if counted {
		s.MirrorCompletion(owner, cat)
	}
	return nil
}

// WarmupCache 从权威数据库重建今天和今年的排行榜镜像。
// 在启动时调用，也在检测到Redis重启后由健康检查器调用。
func (s *Service) WarmupCache() error {
	date := s.Today()
	year := s.CurrentYear()

	var dailyRows []DailyReading
	if err := s.db.Where("date = ?", date).Find(&dailyRows).Error; err != nil {
		return fmt.Errorf("无法读取当日阅读数据: %w", err)
	}

	var annualRows []AnnualStats
	if err := s.db.Where("year = ?", year).Find(&annualRows).Error; err != nil {
		return fmt.Errorf("无法读取年度统计数据: %w", err)
	}

	pipe := s.rdb.Pipeline()

	dailyKey := DailyLeaderboardKey(date)
	pipe.Del(Ctx, dailyKey)
	for _, row := range dailyRows {
		pipe.ZAdd(Ctx, dailyKey, redis.Z{Score: float64(row.PagesRead), Member: member(row.UserID)})
	}
	pipe.Expire(Ctx, dailyKey, dailyKeyTTL)

	for _, cat := range Categories {
		key := AnnualLeaderboardKey(year, cat)
		pipe.Del(Ctx, key)
		for _, row := range annualRows {
			pipe.ZAdd(Ctx, key, redis.Z{Score: float64(row.CounterFor(cat)), Member: member(row.UserID)})
		}
	}

	if _, err := pipe.Exec(Ctx); err != nil {
		return fmt.Errorf("预热排行榜镜像失败: %w", err)
	}

	fmt.Printf("成功预热排行榜镜像：%d 条当日记录，%d 条年度记录。\n", len(dailyRows), len(annualRows))
	return nil
}
