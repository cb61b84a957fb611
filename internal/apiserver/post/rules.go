package post

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
// 每条规则构造一个 rules.Check 闭包。存储故障通过 infra 指针带出，
// 调用方先查 infra 再看业务结果。
// ============================================================================

// isUserExists 操作者的用户记录存在（排除软删除）
func (s *Service) isUserExists(id string, infra *error) rules.Check {
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

// isPostExists 帖子存在
func (s *Service) isPostExists(id string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		ok, err := s.posts.PostExists(ctx, id)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if !ok {
			return result.Fail("Post not exists")
		}
		return result.Ok()
	}
}

// isPostOwned 帖子归属校验，admin / sys_admin 直接放行
//
// 归属用显式 (postID, actorID) 查询判定，失败只透出 "Not permitted"。
func (s *Service) isPostOwned(postID string, actor *model.TokenPayload, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		if actor == nil {
			return result.Fail("Not permitted")
		}
		if permission.IsPrivileged(actor.Role) {
			return result.Ok()
		}
		owned, err := s.posts.IsPostOwner(ctx, postID, actor.ID)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if !owned {
			return result.Fail("Not permitted")
		}
		return result.Ok()
	}
}

// isCommentOwned 评论归属校验，admin / sys_admin 直接放行
func (s *Service) isCommentOwned(postID, commentID string, actor *model.TokenPayload, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		if actor == nil {
			return result.Fail("Not permitted")
		}
		if permission.IsPrivileged(actor.Role) {
			return result.Ok()
		}
		owned, err := s.posts.CommentOwned(ctx, postID, commentID, actor.ID)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if !owned {
			return result.Fail("Not permitted")
		}
		return result.Ok()
	}
}

// isNotLiked (post, user) 点赞不存在，重复点赞的幂等守卫
func (s *Service) isNotLiked(postID, userID string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		liked, err := s.posts.HasLike(ctx, postID, userID)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if liked {
			return result.Fail("Post is already liked")
		}
		return result.Ok()
	}
}

// isLiked (post, user) 点赞存在，取消点赞的幂等守卫
func (s *Service) isLiked(postID, userID string, infra *error) rules.Check {
	return func(ctx context.Context) result.Result {
		liked, err := s.posts.HasLike(ctx, postID, userID)
		if err != nil {
			*infra = err
			return result.Fail("Operation failed")
		}
		if !liked {
			return result.Fail("Post is not liked")
		}
		return result.Ok()
	}
}
