package auth

import (
	"log"
	"net/http"
	"strings"

	"blog-backend/internal/config"
	"blog-backend/internal/shared/identity"
)

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/v1/auth/",
	"/health",
	"/metrics",
	"/api/v1/openapi",
}

// isPublicRoute 请求是否免认证
//
// 帖子读取对匿名开放（可见性裁决在服务层完成），写入需要令牌。
func isPublicRoute(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if method == http.MethodGet && (path == "/api/v1/posts" || strings.HasPrefix(path, "/api/v1/posts/")) {
		return true
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 受保护路由要求有效的访问令牌；公开路由放行，但携带了有效令牌时
// 仍注入身份（会员可见性依赖它）。验证类令牌不能用于 API 访问。
func Middleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := bearerClaims(cfg, r)

			if isPublicRoute(r.Method, r.URL.Path) {
				if ok {
					r = r.WithContext(identity.WithActor(r.Context(), claims.Payload()))
				}
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				http.Error(w, `{"status":false,"message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), claims.Payload())))
		})
	}
}

// bearerClaims 提取并校验 Bearer 访问令牌
func bearerClaims(cfg config.AuthConfig, r *http.Request) (*Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := ParseToken(cfg, parts[1])
	if err != nil {
		log.Printf("[Auth] Token parse error: %v", err)
		return nil, false
	}
	if claims.Type != TokenTypeAccess {
		return nil, false
	}
	return claims, true
}
