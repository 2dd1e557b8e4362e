package media

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/media-diary-backend/internal/stats"
	"gorm.io/gorm"
)

// ErrItemNotFound 表示条目不存在或不属于请求用户。
// 两种情况对外不可区分，避免泄露他人条目的存在性。
var ErrItemNotFound = errors.New("media item not found")

// ValidationError 表示请求字段未通过边界校验，handler层翻译为400。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidInput(reason string) error {
	return &ValidationError{Reason: reason}
}

// 列表排序的合法字段。未知的sort_by静默回退到date_added，
// 这是文档化的宽松行为，不是错误。
var sortColumns = map[string]string{
	"date_added":   "date_added",
	"release_date": "release_date",
	"rating":       "rating",
	"title":        "title",
}

// ItemInput 是创建条目的可写字段集合。
type ItemInput struct {
	Title       string
	Type        Type
	Status      Status
	Rating      *float64
	Review      *string
	ReleaseDate *string
	TotalPages  *int
}

// UpdateInput 是更新条目的完整可变字段集合（整体替换语义）。
type UpdateInput struct {
	Title       string
	Type        Type
	Status      Status
	Rating      *float64
	Review      *string
	ReleaseDate *string
	PagesRead   int
	IsFinished  bool
}

// ListFilter 是列表查询的过滤与排序参数。
type ListFilter struct {
	Status    string
	Type      string
	SortBy    string
	SortOrder string
}

// Service 实现媒体条目的增删改查和完成状态追踪。
type Service struct {
	db    *gorm.DB
	stats *stats.Service
}

// NewService 创建media服务。完成事件会同步写入注入的stats服务。
func NewService(db *gorm.DB, statsService *stats.Service) *Service {
	return &Service{db: db, stats: statsService}
}

func validateFields(title string, mediaType Type, status Status, rating *float64, pagesRead int) error {
	if title == "" {
		return invalidInput("Title is required")
	}
	if !mediaType.Valid() {
		return invalidInput("Invalid media type")
	}
	if !status.Valid() {
		return invalidInput("Invalid status")
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return invalidInput("Rating must be between 0 and 5")
	}
	if pagesRead < 0 {
		return invalidInput("Pages read cannot be negative")
	}
	return nil
}

// AddItem 为owner创建一条新条目。
// 新条目总是未完成状态：pages_read=0，date_completed为空。
func (s *Service) AddItem(owner uint, in ItemInput) (*MediaItem, error) {
	if err := validateFields(in.Title, in.Type, in.Status, in.Rating, 0); err != nil {
		return nil, err
	}

	item := &MediaItem{
		UserID:      owner,
		Title:       in.Title,
		Type:        in.Type,
		Status:      in.Status,
		Rating:      in.Rating,
		Review:      in.Review,
		ReleaseDate: in.ReleaseDate,
		TotalPages:  in.TotalPages,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("无法创建媒体条目: %w", err)
	}
	return item, nil
}

// ListItems 返回owner名下的条目，支持状态/类型过滤和排序。
// 过滤值会被校验；sort_by则按文档化的宽松行为静默回退。
func (s *Service) ListItems(owner uint, f ListFilter) ([]MediaItem, error) {
	if f.Status != "" && !Status(f.Status).Valid() {
		return nil, invalidInput("Invalid status filter")
	}
	if f.Type != "" && !Type(f.Type).Valid() {
		return nil, invalidInput("Invalid type filter")
	}

	query := s.db.Where("user_id = ?", owner)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "date_added"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}

	items := make([]MediaItem, 0)
	if err := query.Order(column + " " + direction).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("无法查询媒体条目: %w", err)
	}
	return items, nil
}

// UpdateItem 整体替换一条条目的可变字段，并应用完成状态转变规则：
// 只有第一次false→true的转变会设置date_completed并计入年度统计。
// date_completed一经设置不再改变，之后把is_finished改回false再改回
// true也不会重新触发统计——完成事件在条目的整个生命周期内恰好一次。
//
// 转变判定和统计累加在同一个数据库事务内完成，转变本身通过
// “is_finished仍为false且date_completed仍为空”的条件更新关闭
// 读-改-写竞态窗口：两个并发请求最多只有一个能完成转变。
func (s *Service) UpdateItem(owner uint, id uint, in UpdateInput) error {
	if err := validateFields(in.Title, in.Type, in.Status, in.Rating, in.PagesRead); err != nil {
		return err
	}

	var completedCategory stats.Category
	completed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prev MediaItem
		if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&prev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("无法读取媒体条目: %w", err)
		}

		updates := map[string]interface{}{
			"title":          in.Title,
			"type":           in.Type,
			"status":         in.Status,
			"rating":         in.Rating,
			"review":         in.Review,
			"release_date":   in.ReleaseDate,
			"pages_read":     in.PagesRead,
			"is_finished":    in.IsFinished,
			"date_completed": prev.DateCompleted,
		}

		transitioned := !prev.IsFinished && in.IsFinished && prev.DateCompleted == nil
		if !transitioned {
			return tx.Model(&MediaItem{}).
				Where("id = ? AND user_id = ?", id, owner).
				Updates(updates).Error
		}

		now := time.Now()
		updates["date_completed"] = &now

		res := tx.Model(&MediaItem{}).
			Where("id = ? AND user_id = ? AND is_finished = ? AND date_completed IS NULL", id, owner, false).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发请求抢先完成了转变（或条目刚被删除）。
			// 重新读取后按非转变路径落盘，不再触发统计。
			var cur MediaItem
			if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&cur).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			updates["date_completed"] = cur.DateCompleted
			return tx.Model(&MediaItem{}).
				Where("id = ? AND user_id = ?", id, owner).
				Updates(updates).Error
		}

		// 完成事件在同一事务内计入年度统计。
		// 类别取自更新前的条目类型，与历史行为一致。
		cat, counted, err := s.stats.ApplyCompletionTx(tx, owner, string(prev.Type))
		if err != nil {
			return err
		}
		if counted {
			completedCategory = cat
			completed = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if completed {
		s.stats.MirrorCompletion(owner, completedCategory)
	}
	return nil
}

// DeleteItem 删除owner名下的一条条目。
// 删除不存在的条目不是错误，幂等成功。
func (s *Service) DeleteItem(owner uint, id uint) error {
	if err := s.db.Where("id = ? AND user_id = ?", id, owner).Delete(&MediaItem{}).Error; err != nil {
		return fmt.Errorf("无法删除媒体条目: %w", err)
	}
	return nil
}
