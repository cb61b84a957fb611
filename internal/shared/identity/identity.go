// Package identity 请求身份在 context 中的传递
//
// 认证中间件解析令牌后注入，各领域 Handler 读取。
// nil 表示匿名请求者。
package identity

import (
	"context"

	"blog-backend/internal/shared/model"
)

// contextKey context 键类型
type contextKey string

const ctxKeyActor contextKey = "actor"

// WithActor 将操作者身份注入 context
func WithActor(ctx context.Context, actor *model.TokenPayload) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// ActorFrom 从 context 获取操作者身份，匿名时返回 nil
func ActorFrom(ctx context.Context) *model.TokenPayload {
	actor, _ := ctx.Value(ctxKeyActor).(*model.TokenPayload)
	return actor
}
