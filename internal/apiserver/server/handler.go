// Package server 路由配置与核心基础设施
//
// 本文件组装 HTTP API 路由，将请求分发到各领域独立包。
// 仍保留在本包的模块：
//   - metrics.go: Prometheus 指标
//   - common.go: 健康检查与恢复中间件
package server

import (
	"net/http"

	"blog-backend/api"
	"blog-backend/internal/apiserver/auth"
	"blog-backend/internal/apiserver/post"
	"blog-backend/internal/apiserver/user"
	"blog-backend/internal/config"
	"blog-backend/internal/shared/objstore"
	"blog-backend/internal/shared/queue"
	"blog-backend/internal/shared/storage"
	"blog-backend/pkg/logging"
)

// Handler 聚合 API Server 的依赖
type Handler struct {
	store   storage.Store
	mail    queue.MailQueue  // 可为 nil
	images  *objstore.Client // 可为 nil
	cfg     *config.Config
	metrics *Metrics
	logger  *logging.Logger
}

// NewHandler 创建 API Server Handler
func NewHandler(store storage.Store, mail queue.MailQueue, images *objstore.Client, cfg *config.Config) *Handler {
	return &Handler{
		store:   store,
		mail:    mail,
		images:  images,
		cfg:     cfg,
		metrics: NewMetrics("blog"),
		logger:  logging.Default("api-server"),
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 认证 (Auth):
//   - POST   /api/v1/auth/signup            - 注册（PASSIVE 状态 + 验证邮件）
//   - POST   /api/v1/auth/login             - 登录
//   - POST   /api/v1/auth/verify            - 邮箱验证激活
//   - POST   /api/v1/auth/send-verification - 重发验证邮件
//
// 用户管理 (User):
//   - GET    /api/v1/users                    - 分页列出用户
//   - GET    /api/v1/users/{id}               - 获取用户
//   - GET    /api/v1/users/username/{name}    - 按用户名获取
//   - PUT    /api/v1/users/{id}               - 更新资料
//   - PUT    /api/v1/users/{id}/role/{role}   - 变更角色（sys_admin）
//   - PUT    /api/v1/users/{id}/suspend       - 封禁
//   - PUT    /api/v1/users/{id}/activate      - 激活
//   - DELETE /api/v1/users/{id}               - 软删除
//   - DELETE /api/v1/users/{id}/purge         - 物理清除
//
// 帖子管理 (Post):
//   - GET    /api/v1/posts                                 - 分页列出
//   - GET    /api/v1/posts/{id}                            - 单帖读取
//   - GET    /api/v1/posts/user/{userId}                   - 按作者列出
//   - POST   /api/v1/posts                                 - 创建
//   - PUT    /api/v1/posts/{id}                            - 更新
//   - DELETE /api/v1/posts/{id}                            - 删除
//   - POST   /api/v1/posts/{id}/comments                   - 评论
//   - DELETE /api/v1/posts/{postId}/comments/{commentId}   - 删除评论
//   - POST   /api/v1/posts/{id}/like                       - 点赞
//   - DELETE /api/v1/posts/{id}/like                       - 取消点赞
//   - POST   /api/v1/posts/{id}/images                     - 上传题图
//   - GET    /api/v1/posts/images/{key...}                 - 下载题图
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// OpenAPI 文档
	mux.HandleFunc("GET /api/v1/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPISpec)
	})

	userSvc := user.NewService(h.store, h.store)
	postSvc := post.NewService(h.store, h.store, imageStoreOrNil(h.images))
	authSvc := auth.NewService(userSvc, h.mail, h.cfg.Auth)

	auth.NewHandler(authSvc).RegisterRoutes(mux)
	user.NewHandler(userSvc).RegisterRoutes(mux)
	post.NewHandler(postSvc, h.images).RegisterRoutes(mux)

	// 中间件链：恢复 → 访问日志 → CORS → 认证 → 指标 → 路由
	handler := h.metrics.MetricsMiddleware(mux)
	handler = auth.Middleware(h.cfg.Auth)(handler)
	handler = corsMiddleware(handler)
	handler = h.logMiddleware(handler)
	return recoverMiddleware(handler)
}

// imageStoreOrNil 空客户端不转成非 nil 接口值
func imageStoreOrNil(c *objstore.Client) post.ImageStore {
	if c == nil {
		return nil
	}
	return c
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
