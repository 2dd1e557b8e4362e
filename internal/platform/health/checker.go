package health

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/SlpAus/media-diary-backend/pkg/lifecycle"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// Checker 周期性地检查数据库和Redis的可用性。
// 通过run_id检测Redis重启：重启后排行榜镜像已丢失，
// 此时触发注入的rebuild回调从权威数据库重建镜像。
type Checker struct {
	db      *gorm.DB
	rdb     *redis.Client
	rebuild func() error

	mu             sync.RWMutex
	dbHealthy      bool
	redisHealthy   bool
	lastKnownRunID string
}

// NewChecker 创建健康检查器。rebuild在检测到Redis重启后被调用。
func NewChecker(db *gorm.DB, rdb *redis.Client, rebuild func() error) *Checker {
	return &Checker{db: db, rdb: rdb, rebuild: rebuild, dbHealthy: true, redisHealthy: true}
}

// getRedisRunID 从Redis服务器信息中提取run_id。
func (ck *Checker) getRedisRunID() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	info, err := ck.rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// InitializeRunID 在应用启动时执行一次，记录初始的run_id。
func (ck *Checker) InitializeRunID() error {
	runID, err := ck.getRedisRunID()
	if err != nil {
		return fmt.Errorf("无法在启动时获取Redis Run ID: %w", err)
	}
	ck.mu.Lock()
	ck.lastKnownRunID = runID
	ck.mu.Unlock()
	fmt.Printf("获取初始Redis Run ID成功: %s\n", runID)
	return nil
}

// PerformCheck 执行一次完整的健康检查和可能的镜像重建。
func (ck *Checker) PerformCheck() {
	// 数据库连通性
	dbOK := false
	if sqlDB, err := ck.db.DB(); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		dbOK = sqlDB.PingContext(ctx) == nil
		cancel()
	}

	currentRunID, err := ck.getRedisRunID()
	if err != nil {
		ck.setStatus(dbOK, false, "")
		return
	}

	ck.mu.RLock()
	lastKnown := ck.lastKnownRunID
	ck.mu.RUnlock()

	if currentRunID != lastKnown {
		// Redis重启过，镜像数据已丢失，重建后才恢复健康状态
		fmt.Printf("健康检查: 检测到Redis重启 (run_id: %s -> %s)，正在重建排行榜镜像...\n", lastKnown, currentRunID)
		if err := ck.rebuild(); err != nil {
			fmt.Printf("健康检查错误: 排行榜镜像重建失败: %v\n", err)
			ck.setStatus(dbOK, false, "")
			return
		}
		fmt.Println("健康检查: 排行榜镜像重建成功。")
	}
	ck.setStatus(dbOK, true, currentRunID)
}

func (ck *Checker) setStatus(dbOK, redisOK bool, runID string) {
	ck.mu.Lock()
	defer ck.mu.Unlock()
	ck.dbHealthy = dbOK
	ck.redisHealthy = redisOK
	if runID != "" {
		ck.lastKnownRunID = runID
	}
}

// Run 以后台服务的形式周期性执行健康检查，直到收到停机信号。
func (ck *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("健康检查器已启动。")
	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("健康检查器已停止。")
			return
		}
		ck.PerformCheck()
	}
}

// Handler 处理 GET /api/health
func (ck *Checker) Handler(c *gin.Context) {
	ck.mu.RLock()
	dbOK, redisOK := ck.dbHealthy, ck.redisHealthy
	ck.mu.RUnlock()

	status := "ok"
	if !dbOK || !redisOK {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "database": dbOK, "redis": redisOK})
}
