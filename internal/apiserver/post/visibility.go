package post

import (
	"context"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/permission"
)

// canView 单帖读取的可见性裁决
//
// public 对任何人可见；members 要求存在已认证身份；private 只对
// 帖主可见，admin / sys_admin 不受限制。private 的归属用显式
// (postID, actorID) 查询判定，不信任令牌之外的输入。
//
// 调用方把"不可见"与"不存在"折叠成同一个对外失败：未授权的
// 请求者无法区分帖子是不存在还是被隐藏。
func (s *Service) canView(ctx context.Context, p *model.Post, actor *model.TokenPayload) (bool, error) {
	switch p.Visibility {
	case model.VisibilityPublic:
		return true, nil
	case model.VisibilityMembers:
		return actor != nil, nil
	case model.VisibilityPrivate:
		if actor == nil {
			return false, nil
		}
		if permission.IsPrivileged(actor.Role) {
			return true, nil
		}
		return s.posts.IsPostOwner(ctx, p.ID, actor.ID)
	}
	return false, nil
}
