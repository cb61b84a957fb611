package user

import (
	"context"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/permission"
	"blog-backend/internal/shared/result"
	"blog-backend/internal/shared/rules"
)

// ============================================================================
// 业务规则
//
// 每条规则构造一个 rules.Check 闭包。存储故障不属于业务失败，
// 通过 infra 指针带出，调用方先查 infra 再看业务结果。
// ============================================================================

// isExists 用户存在（排除软删除）
func (s *Service) isExists(id string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		ok, err := s.users.UserExists(ctx, id)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if !ok {
			return result.Fail("User not exits")
		}
		return result.Ok()
	}
}

// isExistsUsername 用户名对应的用户存在（排除软删除）
func (s *Service) isExistsUsername(username string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		u, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if u == nil {
			return result.Fail("User not exits")
		}
		return result.Ok()
	}
}

// isExistsEmail 邮箱对应的用户存在（排除软删除）
func (s *Service) isExistsEmail(email string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		u, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if u == nil {
			return result.Fail("User not exits")
		}
		return result.Ok()
	}
}

// isUsernameUnique 用户名在非 deleted 用户间唯一
// excludeID 非空时排除自身（更新场景）
func (s *Service) isUsernameUnique(username, excludeID string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		taken, err := s.users.UsernameTaken(ctx, username, excludeID)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if taken {
			return result.Fail("username is taken")
		}
		return result.Ok()
	}
}

// isEmailUnique 邮箱全局唯一（包含 deleted 用户，删除账号的邮箱不可复用）
func (s *Service) isEmailUnique(email string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		taken, err := s.users.EmailTaken(ctx, email)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if taken {
			return result.Fail("email is taken")
		}
		return result.Ok()
	}
}

// isUserAllowedForOperation 操作者可否对目标用户执行更新/清除
//
// sys_admin 任意；本人任意；admin 仅限目标为基础 user。
// 失败只透出统一的 "Not permitted"。
func (s *Service) isUserAllowedForOperation(targetID string, actor *model.TokenPayload, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		if actor == nil {
			return result.Fail("Not permitted")
		}
		if actor.Role == model.RoleSysAdmin {
			return result.Ok()
		}
		if permission.IsSelf(actor.ID, targetID) {
			return result.Ok()
		}
		if actor.Role == model.RoleAdmin {
			target, err := s.users.GetUser(ctx, targetID)
			if err != nil {
				*infra = err
				return result.Fail("Operation failed")
			}
			if target != nil && permission.CanActOn(actor.Role, target.Role) {
				return result.Ok()
			}
		}
		return result.Fail("Not permitted")
	}
}

// canChange 操作者可否变更目标用户状态
//
// 与 isUserAllowedForOperation 相同但没有"本人"例外：
// 状态变更不走自助路径（邮箱验证走独立的 SelfActivate）。
func (s *Service) canChange(targetID string, actor *model.TokenPayload, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		if actor == nil {
			return result.Fail("Not permitted")
		}
		if actor.Role == model.RoleSysAdmin {
			return result.Ok()
		}
		if actor.Role == model.RoleAdmin {
			target, err := s.users.GetUser(ctx, targetID)
			if err != nil {
				*infra = err
				return result.Fail("Operation failed")
			}
			if target != nil && permission.CanActOn(actor.Role, target.Role) {
				return result.Ok()
			}
		}
		return result.Fail("Not permitted")
	}
}

// isRolePossible 角色值在可识别的枚举内
func isRolePossible(role model.Role) rules.Check {
	return func(ctx context.Context) result.Result {
		if permission.IsKnownRole(role) {
			return result.Ok()
		}
		return result.Fail("Role is not exists")
	}
}
