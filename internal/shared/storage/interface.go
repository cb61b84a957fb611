// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - Service 只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（生产）、memstore/（测试）
//   - 初始化时通过依赖注入传入实现
//
// 存储是唯一的跨请求共享状态，并发变更由单文档条件更新仲裁，
// 应用层不加锁。
package storage

import (
	"context"

	"blog-backend/internal/shared/model"
)

// ============================================================================
// 查询参数
// ============================================================================

// ListOptions 排序与分页
type ListOptions struct {
	Sort  string // 排序字段，空值默认 created_at
	Asc   int    // 1 升序 / -1 降序，0 默认 -1
	Skip  int64
	Limit int64 // 0 表示不限制
}

// PostFilter 帖子列表过滤条件，visibility 与 category 取交集
type PostFilter struct {
	OwnerID    string // 非空时按 owner 过滤
	Visibility []model.Visibility
	Categories []model.Category
}

// PostUpdate 帖子可更新字段，nil 表示不变更
type PostUpdate struct {
	Header     *string
	Body       *string
	Image      *string
	Category   *model.Category
	Visibility *model.Visibility
}

// ============================================================================
// 存储接口
// ============================================================================

// UserStore 用户集合操作
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	// GetUser 按 ID 查找，包含已软删除用户；不存在返回 (nil, nil)
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUserByUsername / GetUserByEmail 排除已软删除用户
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UserExists 用户存在且未软删除
	UserExists(ctx context.Context, id string) (bool, error)
	// UsernameTaken 用户名是否被非 deleted 用户占用；excludeID 非空时排除该用户自身
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	// EmailTaken 邮箱是否被占用（包含已软删除用户）
	EmailTaken(ctx context.Context, email string) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
	// ListUsers 排除已软删除用户
	ListUsers(ctx context.Context, opts ListOptions) ([]*model.User, error)
	// GetUserRefs 批量获取最小公开投影（id + username）
	GetUserRefs(ctx context.Context, ids []string) (map[string]*model.UserRef, error)
	// UpdateUserProfile 更新用户名及密码哈希；passwordHash 为空表示密码不变
	UpdateUserProfile(ctx context.Context, id, username, passwordHash string) error
	UpdateUserRole(ctx context.Context, id string, role model.Role) error
	UpdateUserStatus(ctx context.Context, id string, status model.Status) error
	// DeleteUser 物理删除（purge 专用）
	DeleteUser(ctx context.Context, id string) error
}

// PostStore 帖子集合操作，评论与点赞为帖子内嵌文档
type PostStore interface {
	CreatePost(ctx context.Context, p *model.Post) error
	// GetPost 按 ID 查找；不存在返回 (nil, nil)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	PostExists(ctx context.Context, id string) (bool, error)
	// IsPostOwner 显式归属查询：(postID, ownerID) 是否匹配
	IsPostOwner(ctx context.Context, postID, ownerID string) (bool, error)
	CountPosts(ctx context.Context, f PostFilter) (int64, error)
	// ListPosts 列表查询，结果不含评论内容（投影排除 comments）
	ListPosts(ctx context.Context, f PostFilter, opts ListOptions) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id string, upd PostUpdate) error
	DeletePost(ctx context.Context, id string) error
	// DeletePostsByOwner purge 级联：删除用户的全部帖子
	DeletePostsByOwner(ctx context.Context, ownerID string) error

	// AddComment / RemoveComment 不触发帖子 updated_at
	AddComment(ctx context.Context, postID string, c *model.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
	// CommentOwned (postID, commentID, ownerID) 是否匹配
	CommentOwned(ctx context.Context, postID, commentID, ownerID string) (bool, error)
	// RemoveCommentsByOwner purge 级联：从所有帖子中剥离该用户的评论
	RemoveCommentsByOwner(ctx context.Context, ownerID string) error

	// HasLike (post, user) 点赞是否存在；Add/RemoveLike 不触发帖子 updated_at
	HasLike(ctx context.Context, postID, ownerID string) (bool, error)
	AddLike(ctx context.Context, postID string, like *model.Like) error
	RemoveLike(ctx context.Context, postID, ownerID string) error
}

// Store 持久化存储组合接口
type Store interface {
	UserStore
	PostStore
	Close() error
}
