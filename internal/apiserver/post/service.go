// Package post 帖子领域 - 内容、评论与点赞
//
// 所有操作以 Result 表达业务结果；基础设施故障以 error 返回，
// 由 Handler 层统一映射为 500。
package post

import (
	"context"
	"log"
	"time"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/result"
	"blog-backend/internal/shared/rules"
	"blog-backend/internal/shared/storage"
)

// ImageStore 帖子题图的对象存储清理接口
type ImageStore interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// Service 帖子服务
type Service struct {
	users  storage.UserStore
	posts  storage.PostStore
	images ImageStore // 可为 nil（未配置对象存储时跳过题图清理）
}

// NewService 创建帖子服务
func NewService(users storage.UserStore, posts storage.PostStore, images ImageStore) *Service {
	return &Service{users: users, posts: posts, images: images}
}

// AddPost 创建帖子的输入
type AddPost struct {
	Header     string           `json:"header"`
	Body       string           `json:"body"`
	Image      string           `json:"image,omitempty"`
	Category   model.Category   `json:"category"`
	Visibility model.Visibility `json:"visibility"`
}

// UpdatePost 更新帖子的输入，nil 字段不变更
type UpdatePost struct {
	Header     *string           `json:"header,omitempty"`
	Body       *string           `json:"body,omitempty"`
	Image      *string           `json:"image,omitempty"`
	Category   *model.Category   `json:"category,omitempty"`
	Visibility *model.Visibility `json:"visibility,omitempty"`
}

// ListQuery 列表查询参数
type ListQuery struct {
	Visibility []model.Visibility // 空值默认 {public}
	Categories []model.Category   // 空值默认全部分类
	Page       int64
	Limit      int64
	Sort       string
	Asc        int
}

// ============================================================================
// 读取
// ============================================================================

// GetAll 分页列出帖子
//
// visibility 与 category 过滤取交集；列表结果不含评论内容。
func (s *Service) GetAll(ctx context.Context, q ListQuery) (result.DataResult[result.Page[*model.Post]], error) {
	return s.list(ctx, "", q)
}

// GetByUserID 分页列出指定用户的帖子
func (s *Service) GetByUserID(ctx context.Context, userID string, q ListQuery) (result.DataResult[result.Page[*model.Post]], error) {
	return s.list(ctx, userID, q)
}

func (s *Service) list(ctx context.Context, ownerID string, q ListQuery) (result.DataResult[result.Page[*model.Post]], error) {
	f := storage.PostFilter{
		OwnerID:    ownerID,
		Visibility: q.Visibility,
		Categories: q.Categories,
	}
	if len(f.Visibility) == 0 {
		f.Visibility = []model.Visibility{model.VisibilityPublic}
	}
	if len(f.Categories) == 0 {
		f.Categories = model.AllCategories()
	}

	total, err := s.posts.CountPosts(ctx, f)
	if err != nil {
		return result.FailData[result.Page[*model.Post]]("Operation failed"), err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = total
	}

	posts, err := s.posts.ListPosts(ctx, f, storage.ListOptions{
		Sort:  q.Sort,
		Asc:   q.Asc,
		Skip:  (page - 1) * limit,
		Limit: limit,
	})
	if err != nil {
		return result.FailData[result.Page[*model.Post]]("Operation failed"), err
	}

	return result.OkData(result.NewPage(posts, page, limit, total)), nil
}

// GetByID 读取单帖，含可见性裁决和 owner 投影填充
//
// 不可见与不存在折叠为同一个失败消息。
func (s *Service) GetByID(ctx context.Context, id string, actor *model.TokenPayload) (result.DataResult[*model.Post], error) {
	var infra error
	if res := rules.Run(ctx, s.isPostExists(id, &infra)); !res.Status {
		return result.FailDataFrom[*model.Post](res), infra
	}

	p, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return result.FailData[*model.Post]("Operation failed"), err
	}
	if p == nil {
		return result.FailData[*model.Post]("Post not exists"), nil
	}

	visible, err := s.canView(ctx, p, actor)
	if err != nil {
		return result.FailData[*model.Post]("Operation failed"), err
	}
	if !visible {
		return result.FailData[*model.Post]("Post not exists"), nil
	}

	if err := s.populateOwners(ctx, p); err != nil {
		return result.FailData[*model.Post]("Operation failed"), err
	}
	return result.OkData(p), nil
}

// populateOwners 将帖主和评论作者解析为最小公开投影
func (s *Service) populateOwners(ctx context.Context, p *model.Post) error {
	ids := []string{p.OwnerID}
	for _, c := range p.Comments {
		ids = append(ids, c.OwnerID)
	}

	refs, err := s.users.GetUserRefs(ctx, ids)
	if err != nil {
		return err
	}

	p.Owner = refs[p.OwnerID]
	for i := range p.Comments {
		p.Comments[i].Owner = refs[p.Comments[i].OwnerID]
	}
	return nil
}

// ============================================================================
// 写入
// ============================================================================

// Add 创建帖子
//
// 非法的 category / visibility 归一化为默认值（general / public）。
func (s *Service) Add(ctx context.Context, in AddPost, actor *model.TokenPayload) (result.DataResult[*model.Post], error) {
	if actor == nil {
		return result.FailData[*model.Post]("Not permitted"), nil
	}

	var infra error
	if res := rules.Run(ctx, s.isUserExists(actor.ID, &infra)); !res.Status {
		return result.FailDataFrom[*model.Post](res), infra
	}

	if !model.KnownCategory(in.Category) {
		in.Category = model.CategoryGeneral
	}
	if !model.KnownVisibility(in.Visibility) {
		in.Visibility = model.VisibilityPublic
	}

	now := time.Now()
	p := &model.Post{
		ID:         generateID("post"),
		OwnerID:    actor.ID,
		Header:     in.Header,
		Body:       in.Body,
		Image:      in.Image,
		Category:   in.Category,
		Visibility: in.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.posts.CreatePost(ctx, p); err != nil {
		return result.FailData[*model.Post]("Operation failed"), err
	}

	log.Printf("[Post] Created post: %s by %s", p.ID, actor.ID)
	return result.OkDataMsg(p, "Created"), nil
}

// Update 更新帖子，帖主或特权角色可操作
func (s *Service) Update(ctx context.Context, id string, in UpdatePost, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isPostExists(id, &infra),
		s.isPostOwned(id, actor, &infra),
	)
	if !res.Status {
		return res, infra
	}

	upd := storage.PostUpdate{
		Header:     in.Header,
		Body:       in.Body,
		Image:      in.Image,
		Category:   in.Category,
		Visibility: in.Visibility,
	}
	if upd.Category != nil && !model.KnownCategory(*upd.Category) {
		upd.Category = nil
	}
	if upd.Visibility != nil && !model.KnownVisibility(*upd.Visibility) {
		upd.Visibility = nil
	}

	if err := s.posts.UpdatePost(ctx, id, upd); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("Post updated"), nil
}

// Remove 删除帖子及其题图，帖主或特权角色可操作
func (s *Service) Remove(ctx context.Context, id string, actor *model.TokenPayload) (result.Result, error) {
	var infra error
	res := rules.Run(ctx,
		s.isPostExists(id, &infra),
		s.isPostOwned(id, actor, &infra),
	)
	if !res.Status {
		return res, infra
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return result.Fail("Operation failed"), err
	}

	// 题图清理尽力而为，失败不影响删除结果
	if s.images != nil {
		if err := s.images.DeletePrefix(ctx, "posts/"+id+"/"); err != nil {
			log.Printf("[Post] Image cleanup failed: %s: %v", id, err)
		}
	}

	log.Printf("[Post] Deleted post: %s", id)
	return result.OkMsg("Post deleted"), nil
}

// ============================================================================
// 评论与点赞
// ============================================================================

// AddComment 添加评论
func (s *Service) AddComment(ctx context.Context, postID, comment string, actor *model.TokenPayload) (result.Result, error) {
	if actor == nil {
		return result.Fail("Not permitted"), nil
	}

	var infra error
	res := rules.Run(ctx,
		s.isUserExists(actor.ID, &infra),
		s.isPostExists(postID, &infra),
	)
	if !res.Status {
		return res, infra
	}

	c := &model.Comment{
		ID:        generateID("cmt"),
		OwnerID:   actor.ID,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := s.posts.AddComment(ctx, postID, c); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("Comment added"), nil
}

// RemoveComment 删除评论，评论作者或特权角色可操作
func (s *Service) RemoveComment(ctx context.Context, postID, commentID string, actor *model.TokenPayload) (result.Result, error) {
	if actor == nil {
		return result.Fail("Not permitted"), nil
	}

	var infra error
	res := rules.Run(ctx,
		s.isUserExists(actor.ID, &infra),
		s.isPostExists(postID, &infra),
		s.isCommentOwned(postID, commentID, actor, &infra),
	)
	if !res.Status {
		return res, infra
	}

	if err := s.posts.RemoveComment(ctx, postID, commentID); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("Comment deleted"), nil
}

// AddLike 点赞，重复点赞被幂等守卫拒绝
func (s *Service) AddLike(ctx context.Context, postID string, actor *model.TokenPayload) (result.Result, error) {
	if actor == nil {
		return result.Fail("Not permitted"), nil
	}

	var infra error
	res := rules.Run(ctx,
		s.isUserExists(actor.ID, &infra),
		s.isPostExists(postID, &infra),
		s.isNotLiked(postID, actor.ID, &infra),
	)
	if !res.Status {
		return res, infra
	}

	if err := s.posts.AddLike(ctx, postID, &model.Like{OwnerID: actor.ID, CreatedAt: time.Now()}); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("Like added"), nil
}

// RemoveLike 取消点赞，未点赞时被幂等守卫拒绝
func (s *Service) RemoveLike(ctx context.Context, postID string, actor *model.TokenPayload) (result.Result, error) {
	if actor == nil {
		return result.Fail("Not permitted"), nil
	}

	var infra error
	res := rules.Run(ctx,
		s.isUserExists(actor.ID, &infra),
		s.isPostExists(postID, &infra),
		s.isLiked(postID, actor.ID, &infra),
	)
	if !res.Status {
		return res, infra
	}

	if err := s.posts.RemoveLike(ctx, postID, actor.ID); err != nil {
		return result.Fail("Operation failed"), err
	}
	return result.OkMsg("Like removed"), nil
}
