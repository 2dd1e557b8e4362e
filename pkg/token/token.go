package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 表示令牌无法通过签名或有效期校验。
var ErrInvalidToken = errors.New("无效的令牌")

// Claims 定义了签入JWT的身份信息。
// 字段名与历史版本的payload保持一致（id/email/username）。
type Claims struct {
	UserID   uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Maker 负责签发和校验Bearer令牌。
type Maker struct {
	secret []byte
	ttl    time.Duration
}

// NewMaker 创建一个令牌签发器。
// secret为空时生成一个密码学安全的随机密钥，此时旧令牌在重启后全部失效。
func NewMaker(secret string, ttl time.Duration) *Maker {
	var key []byte
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("无法生成安全的密钥: " + err.Error())
		}
		fmt.Printf("警告: 未配置JWT密钥，已生成随机密钥 (%s...)，重启后已有令牌将失效。\n",
			base64.RawURLEncoding.EncodeToString(key)[:8])
	} else {
		key = []byte(secret)
	}
	return &Maker{secret: key, ttl: ttl}
}

// Generate 为指定用户签发一个带有效期的HS256令牌。
func (m *Maker) Generate(userID uint, email, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("无法签发令牌: %w", err)
	}
	return signed, nil
}

// Validate 校验令牌的签名和有效期，返回其中的身份信息。
func (m *Maker) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
