// Package user 用户领域 - 生命周期与权限控制
//
// 所有操作以 Result 表达业务结果；基础设施故障以 error 返回，
// 由 Handler 层统一映射为 500。
package user

import (
	"context"
	"log"
	"time"

	"blog-backend/internal/shared/crypt"
	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/result"
	"blog-backend/internal/shared/rules"
	"blog-backend/internal/shared/storage"
)

// Service 用户服务
type Service struct {
	users storage.UserStore
	posts storage.PostStore
}

// NewService 创建用户服务
func NewService(users storage.UserStore, posts storage.PostStore) *Service {
	return &Service{users: users, posts: posts}
}

// AddUser 创建用户的输入
type AddUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUser 更新用户的输入（仅本人资料字段）
type UpdateUser struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// ListQuery 列表查询参数
type ListQuery struct {
	Page  int64  // 1 起始；非正数按 1 处理
	Limit int64  // 非正数表示不分页（取全量）
	Sort  string // 排序字段，默认 created_at
	Asc   int    // 1 升序 / -1 降序，默认 -1
}

// ============================================================================
// 读取
// ============================================================================

// GetAll 分页列出全部用户（排除软删除）
func (s *Service) GetAll(ctx context.Context, q ListQuery) (result.DataResult[result.Page[*model.User]], error) {
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return result.FailData[result.Page[*model.User]]("Operation failed"), err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = total
	}

	users, err := s.users.ListUsers(ctx, storage.ListOptions{
		Sort:  q.Sort,
		Asc:   q.Asc,
		Skip:  (page - 1) * limit,
		Limit: limit,
	})
	if err != nil {
		return result.FailData[result.Page[*model.User]]("Operation failed"), err
	}

	return result.OkData(result.NewPage(users, page, limit, total)), nil
}

// GetByID 按 ID 读取用户
func (s *Service) GetByID(ctx context.Context, id string) (result.DataResult[*model.User], error) {
	var infra error
	if res := rules.Run(ctx, s.isExists(id, &infra)); !res.Status {
		return result.FailDataFrom[*model.User](res), infra
	}

	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return result.FailData[*model.User]("Operation failed"), err
	}
	return result.OkData(u), nil
}

// GetByUsername 按用户名读取用户（排除软删除）
func (s *Service) GetByUsername(ctx context.Context, username string) (result.DataResult[*model.User], error) {
	var infra error
	if res := rules.Run(ctx, s.isExistsUsername(username, &infra)); !res.Status {
		return result.FailDataFrom[*model.User](res), infra
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return result.FailData[*model.User]("Operation failed"), err
	}
	if u == nil {
		return result.FailData[*model.User]("User not exits"), nil
	}
	return result.OkData(u), nil
}

// GetByEmail 按邮箱读取用户（排除软删除）
func (s *Service) GetByEmail(ctx context.Context, email string) (result.DataResult[*model.User], error) {
	var infra error
	if res := rules.Run(ctx, s.isExistsEmail(email, &infra)); !res.Status {
		return result.FailDataFrom[*model.User](res), infra
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return result.FailData[*model.User]("Operation failed"), err
	}
	if u == nil {
		return result.FailData[*model.User]("User not exits"), nil
	}
	return result.OkData(u), nil
}

// ============================================================================
// 写入
// ============================================================================

// Add 创建用户
//
// 密码入库前哈希；初始状态 PASSIVE，初始角色 user。
// 唯一性校验与写入之间的竞争由存储层 email 唯一索引兜底。
func (s *Service) Add(ctx context.Context, in AddUser) (result.DataResult[*model.User], error) {
	var infra error
	res := rules.Run(ctx,
		s.isUsernameUnique(in.Username, "", &infra),
		s.isEmailUnique(in.Email, &infra),
	)
	if !res.Status {
		return result.FailDataFrom[*model.User](res), infra
	}

	hash, err := crypt.HashPassword(in.Password)
	if err != nil {
		return result.FailData[*model.User]("Operation failed"), err
	}

	now := time.Now()
	u := &model.User{
		ID:           generateID("usr"),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.StatusPassive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if err == storage.ErrDuplicate {
			// 唯一索引兜住了校验与写入之间的竞争窗口
			return result.FailData[*model.User]("email is taken"), nil
		}
		return result.FailData[*model.User]("Operation failed"), err
	}

	log.Printf("[User] Created user: %s (%s)", u.Username, u.ID)
	return result.OkDataMsg(u, "Created"), nil
}

// Update 更新用户资料（用户名 / 密码）
//
// 密码字段存在且与当前哈希不匹配时才重新哈希。
func (s *Service) Update(ctx context.Context, id string, in UpdateUser, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isExists(id, &infra),
		s.isUserAllowedForOperation(id, actor, &infra),
		s.isUsernameUnique(in.Username, id, &infra),
	)
	if !res.Status {
		return res, infra
	}

	passwordHash := ""
	if in.Password != "" {
		current, err := s.users.GetUser(ctx, id)
		if err != nil {
			return result.Fail("Operation failed"), err
		}
		if current != nil && !crypt.CheckPassword(in.Password, current.PasswordHash) {
			passwordHash, err = crypt.HashPassword(in.Password)
			if err != nil {
				return result.Fail("Operation failed"), err
			}
		}
	}

	if err := s.users.UpdateUserProfile(ctx, id, in.Username, passwordHash); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("User updated"), nil
}

// ChangeRole 变更用户角色
func (s *Service) ChangeRole(ctx context.Context, id string, role model.Role) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isExists(id, &infra),
		isRolePossible(role),
	)
	if !res.Status {
		return res, infra
	}

	if err := s.users.UpdateUserRole(ctx, id, role); err != nil {
		return result.Fail("Operation failed"), err
	}
	log.Printf("[User] Changed role: %s -> %s", id, role)
	return result.OkMsg("Role updated"), nil
}

// Suspend 封禁用户
func (s *Service) Suspend(ctx context.Context, id string, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isExists(id, &infra),
		s.canChange(id, actor, &infra),
	)
	if !res.Status {
		return res, infra
	}
	return s.transition(ctx, id, model.StatusSuspended)
}

// Activate 激活用户（特权操作）
func (s *Service) Activate(ctx context.Context, id string, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isExists(id, &infra),
		s.canChange(id, actor, &infra),
	)
	if !res.Status {
		return res, infra
	}
	return s.transition(ctx, id, model.StatusActive)
}

// SelfActivate 邮箱验证触发的自助激活
//
// 没有权限校验，调用方（Auth 服务）以已验证的令牌把关。
func (s *Service) SelfActivate(ctx context.Context, id string) (result.Result, error) {
	var infra error
	if res := rules.Run(ctx, s.isExists(id, &infra)); !res.Status {
		return res, infra
	}
	return s.transition(ctx, id, model.StatusActive)
}

// transition 带迁移表守卫的状态变更
func (s *Service) transition(ctx context.Context, id string, to model.Status) (result.Result, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return result.Fail("Operation failed"), err
	}
	if u == nil {
		return result.Fail("User not exits"), nil
	}
	if u.Status == to {
		if to == model.StatusActive {
			return result.Fail("User is already active"), nil
		}
		return result.Fail("User is already " + string(to)), nil
	}
	if !model.CanTransition(u.Status, to) {
		return result.Fail("Status change is not allowed"), nil
	}

	if err := s.users.UpdateUserStatus(ctx, id, to); err != nil {
		return result.Fail("Operation failed"), err
	}
	log.Printf("[User] Status changed: %s %s -> %s", id, u.Status, to)
	return result.OkMsg("User " + string(to)), nil
}

// Remove 软删除用户（状态置 DELETED，记录保留）
//
// 权限在路由层把关（本人或特权角色），服务层只校验存在性。
func (s *Service) Remove(ctx context.Context, id string) (result.Result, error) {
	var infra error
	if res := rules.Run(ctx, s.isExists(id, &infra)); !res.Status {
		return res, infra
	}

	if err := s.users.UpdateUserStatus(ctx, id, model.StatusDeleted); err != nil {
		return result.Fail("Operation failed"), err
	}
	log.Printf("[User] Soft-deleted user: %s", id)
	return result.OkMsg("User deleted"), nil
}

// Purge 物理清除用户及其全部痕迹
//
// 级联三步：删除其全部帖子 → 从所有帖子剥离其评论 → 硬删用户记录。
// 三步相互独立且无回滚，中途失败只透出统一的 "Operation failed"；
// 各步均可重入，调用方可整体重试。
func (s *Service) Purge(ctx context.Context, id string, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx, s.isUserAllowedForOperation(id, actor, &infra))
	if !res.Status {
		return res, infra
	}

	if err := s.posts.DeletePostsByOwner(ctx, id); err != nil {
		log.Printf("[User] Purge cascade failed (posts): %s: %v", id, err)
		return result.Fail("Operation failed"), nil
	}
	if err := s.posts.RemoveCommentsByOwner(ctx, id); err != nil {
		log.Printf("[User] Purge cascade failed (comments): %s: %v", id, err)
		return result.Fail("Operation failed"), nil
	}
	if err := s.users.DeleteUser(ctx, id); err != nil && err != storage.ErrNotFound {
		log.Printf("[User] Purge cascade failed (user): %s: %v", id, err)
		return result.Fail("Operation failed"), nil
	}

	log.Printf("[User] Purged user: %s", id)
	return result.OkMsg("User purged"), nil
}
