package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/SlpAus/media-diary-backend/internal/stats"
	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrInvalidCategory 表示请求的年度排行榜类别不在封闭枚举内。
var ErrInvalidCategory = errors.New("invalid leaderboard category")

// DailyEntry 是当日阅读排行榜的一行。
type DailyEntry struct {
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
	PagesRead      int     `json:"pages_read"`
}

// AnnualEntry 是年度排行榜的一行。
type AnnualEntry struct {
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
	Count          int     `json:"count"`
}

// Service 生成排行榜视图。
// 热路径读取Redis Sorted Set镜像；Redis不可用时回退到对权威
// 数据库的JOIN查询，排行榜因此总能反映当前聚合状态。
//
// 排序保证：分数降序；同分时按用户名升序，保证结果确定。
type Service struct {
	db    *gorm.DB
	rdb   *redis.Client
	stats *stats.Service
}

// NewService 创建leaderboard服务。
func NewService(db *gorm.DB, rdb *redis.Client, statsService *stats.Service) *Service {
	return &Service{db: db, rdb: rdb, stats: statsService}
}

// warnMirrorFallback 统一输出镜像读取失败、回退到权威数据库的警告。
func warnMirrorFallback(err error) {
	fmt.Printf("警告: 排行榜镜像不可用，回退到数据库查询: %v\n", err)
}

// rankedScore 是从镜像中读出的一条(用户, 分数)。
type rankedScore struct {
	userID uint
	score  int
}

// readMirror 读取一个排行榜键的全部成员，失败时返回错误交由调用方回退。
func (s *Service) readMirror(key string) ([]rankedScore, error) {
	zs, err := s.rdb.ZRevRangeWithScores(stats.Ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	scores := make([]rankedScore, 0, len(zs))
	for _, z := range zs {
		memberStr, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(memberStr, 10, 64)
		if err != nil {
			continue
		}
		scores = append(scores, rankedScore{userID: uint(id), score: int(z.Score)})
	}
	return scores, nil
}

// joinUsers 按ID批量读取用户的展示信息。
// 镜像中存在但用户表中已缺失的成员会被跳过。
func (s *Service) joinUsers(scores []rankedScore) (map[uint]user.User, error) {
	if len(scores) == 0 {
		return map[uint]user.User{}, nil
	}
	ids := make([]uint, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.userID)
	}

	var users []user.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法读取排行榜用户信息: %w", err)
	}

	byID := make(map[uint]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// DailyReading 返回今天的阅读排行榜。
// 只包含今天有阅读记录的用户；没有记录的用户不会以0分出现。
func (s *Service) DailyReading() ([]DailyEntry, error) {
	key := stats.DailyLeaderboardKey(s.stats.Today())

	scores, err := s.readMirror(key)
	if err != nil {
		warnMirrorFallback(err)
		return s.dailyReadingFromDB()
	}

	byID, err := s.joinUsers(scores)
	if err != nil {
		return nil, err
	}

	entries := make([]DailyEntry, 0, len(scores))
	for _, sc := range scores {
		u, ok := byID[sc.userID]
		if !ok {
			continue
		}
		entries = append(entries, DailyEntry{
			Username:       u.Username,
			ProfilePicture: u.ProfilePicture,
			PagesRead:      sc.score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PagesRead != entries[j].PagesRead {
			return entries[i].PagesRead > entries[j].PagesRead
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}

// dailyReadingFromDB 是当日排行榜的权威回退查询。
func (s *Service) dailyReadingFromDB() ([]DailyEntry, error) {
	entries := make([]DailyEntry, 0)
	err := s.db.Table("daily_reading AS dr").
		Select("u.username AS username, u.profile_picture AS profile_picture, dr.pages_read AS pages_read").
		Joins("JOIN users u ON u.id = dr.user_id").
		Where("dr.date = ?", s.stats.Today()).
		Order("dr.pages_read DESC, u.username ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询当日排行榜: %w", err)
	}
	return entries, nil
}

// Annual 返回今年指定类别的排行榜。
// 只包含今年有年度统计行的用户；非法类别返回ErrInvalidCategory。
func (s *Service) Annual(category string) ([]AnnualEntry, error) {
	if !stats.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	cat := stats.Category(category)
	key := stats.AnnualLeaderboardKey(s.stats.CurrentYear(), cat)

	scores, err := s.readMirror(key)
	if err != nil {
		warnMirrorFallback(err)
		return s.annualFromDB(cat)
	}

	byID, err := s.joinUsers(scores)
	if err != nil {
		return nil, err
	}

	entries := make([]AnnualEntry, 0, len(scores))
	for _, sc := range scores {
		u, ok := byID[sc.userID]
		if !ok {
			continue
		}
		entries = append(entries, AnnualEntry{
			Username:       u.Username,
			ProfilePicture: u.ProfilePicture,
			Count:          sc.score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}

// annualFromDB 是年度排行榜的权威回退查询。
// cat已通过封闭枚举校验，列名直接拼入SQL是安全的。
func (s *Service) annualFromDB(cat stats.Category) ([]AnnualEntry, error) {
	entries := make([]AnnualEntry, 0)
	err := s.db.Table("annual_stats AS a").
		Select(fmt.Sprintf("u.username AS username, u.profile_picture AS profile_picture, a.%s AS count", cat)).
		Joins("JOIN users u ON u.id = a.user_id").
		Where("a.year = ?", s.stats.CurrentYear()).
		Order(fmt.Sprintf("a.%s DESC, u.username ASC", cat)).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询年度排行榜: %w", err)
	}
	return entries, nil
}
