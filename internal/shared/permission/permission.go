// Package permission 角色与归属判定
//
// 纯谓词：给定操作者身份、目标归属和目标当前角色即可判定，
// 不访问存储。需要查库的部分（目标角色读取）由调用方完成后
// 再传入。谓词失败时调用方只向外透出统一的 "Not permitted"，
// 不泄露角色或归属信息。
package permission

import "blog-backend/internal/shared/model"

// IsSelf 操作者是否就是目标用户
func IsSelf(actorID, targetID string) bool {
	return actorID != "" && actorID == targetID
}

// IsPrivileged 是否特权角色（admin 或 sys_admin）
func IsPrivileged(role model.Role) bool {
	return role == model.RoleAdmin || role == model.RoleSysAdmin
}

// CanActOn 操作者角色能否对目标角色实施管理操作
//
// sys_admin 可以操作任何人；admin 只能操作基础 user
// （admin 不能动 admin / sys_admin）；user 不能管理他人。
func CanActOn(actorRole, targetRole model.Role) bool {
	switch actorRole {
	case model.RoleSysAdmin:
		return true
	case model.RoleAdmin:
		return targetRole == model.RoleUser
	default:
		return false
	}
}

// IsKnownRole 角色值是否在可识别的枚举内
func IsKnownRole(role model.Role) bool {
	switch role {
	case model.RoleUser, model.RoleAdmin, model.RoleSysAdmin:
		return true
	}
	return false
}
