package user

import (
	"net/http"
	"strings"

	"github.com/SlpAus/media-diary-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey 是认证中间件写入Gin上下文的用户ID键名。
	UserIDKey = "userID"
	// UsernameKey 是认证中间件写入Gin上下文的用户名键名。
	UsernameKey = "username"
)

// RequireAuth 校验Authorization头中的Bearer令牌。
// 缺少令牌返回401，令牌无效返回403，与历史行为保持一致。
func RequireAuth(maker *token.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
			return
		}

		claims, err := maker.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// CurrentUserID 从Gin上下文中读取认证中间件写入的用户ID。
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(UserIDKey)
	id, _ := v.(uint)
	return id
}
