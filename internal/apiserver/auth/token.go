// Package auth 认证：JWT 令牌、登录注册、邮箱验证流程与 HTTP 中间件
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-backend/internal/config"
	"blog-backend/internal/shared/model"
)

// 令牌类型
const (
	TokenTypeAccess = "access"
	TokenTypeVerify = "verify" // 邮箱验证专用，不能用于 API 访问
)

// Claims JWT 声明，RegisteredClaims 之外携带完整身份负载
type Claims struct {
	jwt.RegisteredClaims
	Status   model.Status `json:"status,omitempty"`
	Username string       `json:"username,omitempty"`
	Email    string       `json:"email,omitempty"`
	Role     model.Role   `json:"role,omitempty"`
	Type     string       `json:"type,omitempty"` // "access" | "verify"
}

// Payload 从声明还原身份负载
func (c *Claims) Payload() *model.TokenPayload {
	return &model.TokenPayload{
		ID:       c.Subject,
		Status:   c.Status,
		Username: c.Username,
		Email:    c.Email,
		Role:     c.Role,
	}
}

// Token 签发结果
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func generateToken(cfg config.AuthConfig, p *model.TokenPayload, tokenType string, ttl time.Duration) (Token, error) {
	expiresAt := time.Now().Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Status:   p.Status,
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
		Type:     tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ExpiresAt: expiresAt}, nil
}

// GenerateAccessToken 签发 API 访问令牌
func GenerateAccessToken(cfg config.AuthConfig, p *model.TokenPayload) (Token, error) {
	return generateToken(cfg, p, TokenTypeAccess, cfg.AccessTTL())
}

// GenerateVerifyToken 签发邮箱验证令牌
func GenerateVerifyToken(cfg config.AuthConfig, p *model.TokenPayload) (Token, error) {
	return generateToken(cfg, p, TokenTypeVerify, cfg.VerifyTTL())
}

// ParseToken 解析并验证 JWT
func ParseToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
