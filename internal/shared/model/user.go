package model

import "time"

// Role 用户角色
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleSysAdmin Role = "sys_admin"
)

// Status 用户生命周期状态
//
// 软删除路径：passive → active → suspended/deleted，deleted 为终态。
// 物理清除（purge）不是状态，是独立的破坏性操作。
type Status string

const (
	StatusPassive   Status = "passive"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// CanTransition 状态迁移是否被允许
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPassive:
		return to == StatusActive || to == StatusDeleted
	case StatusActive:
		return to == StatusSuspended || to == StatusDeleted
	case StatusSuspended:
		return to == StatusActive || to == StatusDeleted
	case StatusDeleted:
		return false
	}
	return false
}

// User 用户
//
// username 在非 deleted 用户间唯一；email 全局唯一（包含 deleted，
// 存储层以唯一索引兜底）。PasswordHash 永不出现在 JSON 中。
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	Status       Status    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Deleted 是否已软删除
func (u *User) Deleted() bool {
	return u.Status == StatusDeleted
}

// Ref 转为最小公开投影
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}

// UserRef 用户的最小公开投影
//
// 帖子及评论返回时 owner 一律解析为该投影，绝不内嵌完整用户记录。
type UserRef struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
}

// TokenPayload 令牌中携带的身份声明
//
// 由认证中间件解析后注入 context，作为操作者（Actor）身份传给
// Service。nil 表示匿名请求者。该结构只存在于令牌中，不落库。
type TokenPayload struct {
	ID       string `json:"id"`
	Status   Status `json:"status"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
