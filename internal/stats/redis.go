package stats

import (
	"context"
	"fmt"
	"time"
)

// --- Redis 键名 ---

const (
	// dailyLeaderboardKeyPrefix 下的每个键是一个Sorted Set：
	// Member为用户ID，Score为该用户当日累计阅读页数。
	dailyLeaderboardKeyPrefix = "leaderboard:daily:"

	// annualLeaderboardKeyPrefix 下的每个键是一个Sorted Set：
	// Member为用户ID，Score为该用户当年某一类别的完成数。
	annualLeaderboardKeyPrefix = "leaderboard:annual:"
)

// dailyKeyTTL 让过期日期的排行榜键自然消失，避免无限累积。
const dailyKeyTTL = 48 * time.Hour

// Ctx 是stats与leaderboard模块共享的Redis操作上下文。
var Ctx = context.Background()

// DailyLeaderboardKey 返回指定日期的当日阅读排行榜键名。
func DailyLeaderboardKey(date string) string {
	return dailyLeaderboardKeyPrefix + date
}

// AnnualLeaderboardKey 返回指定年份和类别的年度排行榜键名。
func AnnualLeaderboardKey(year int, cat Category) string {
	return fmt.Sprintf("%s%d:%s", annualLeaderboardKeyPrefix, year, cat)
}
