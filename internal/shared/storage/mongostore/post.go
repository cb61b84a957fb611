package mongostore

import (
	"context"
	"time"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	return insertOne(ctx, s.col(ColPosts), p)
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return findOne[model.Post](ctx, s.col(ColPosts), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.col(ColPosts), bson.D{{Key: "_id", Value: id}})
}

// IsPostOwner 显式归属查询，私有帖可见性判定和属主校验共用
func (s *Store) IsPostOwner(ctx context.Context, postID, ownerID string) (bool, error) {
	return exists(ctx, s.col(ColPosts), bson.D{
		{Key: "_id", Value: postID},
		{Key: "owner", Value: bson.D{{Key: "$eq", Value: ownerID}}},
	})
}

func (s *Store) CountPosts(ctx context.Context, f storage.PostFilter) (int64, error) {
	return s.col(ColPosts).CountDocuments(ctx, postFilter(f))
}

// ListPosts 列表查询，投影排除 comments 以减小响应体
func (s *Store) ListPosts(ctx context.Context, f storage.PostFilter, opts storage.ListOptions) ([]*model.Post, error) {
	fo := listFindOptions(opts)
	fo.SetProjection(bson.D{{Key: "comments", Value: 0}})
	return findMany[model.Post](ctx, s.col(ColPosts), postFilter(f), fo)
}

func (s *Store) UpdatePost(ctx context.Context, id string, upd storage.PostUpdate) error {
	update := bson.D{{Key: "updated_at", Value: time.Now()}}
	if upd.Header != nil {
		update = append(update, bson.E{Key: "header", Value: *upd.Header})
	}
	if upd.Body != nil {
		update = append(update, bson.E{Key: "body", Value: *upd.Body})
	}
	if upd.Image != nil {
		update = append(update, bson.E{Key: "image", Value: *upd.Image})
	}
	if upd.Category != nil {
		update = append(update, bson.E{Key: "category", Value: *upd.Category})
	}
	if upd.Visibility != nil {
		update = append(update, bson.E{Key: "visibility", Value: *upd.Visibility})
	}
	return setFields(ctx, s.col(ColPosts), id, update)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColPosts), id)
}

func (s *Store) DeletePostsByOwner(ctx context.Context, ownerID string) error {
	_, err := s.col(ColPosts).DeleteMany(ctx, bson.D{{Key: "owner", Value: ownerID}})
	return wrapError(err)
}

// ============================================================================
// Comments（内嵌文档，$push/$pull 不触发帖子 updated_at）
// ============================================================================

func (s *Store) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "comments", Value: c}}},
	})
}

func (s *Store) RemoveComment(ctx context.Context, postID, commentID string) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "comments", Value: bson.D{{Key: "_id", Value: commentID}}}}},
	})
}

func (s *Store) CommentOwned(ctx context.Context, postID, commentID, ownerID string) (bool, error) {
	return exists(ctx, s.col(ColPosts), bson.D{
		{Key: "_id", Value: postID},
		{Key: "comments", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "_id", Value: commentID},
			{Key: "owner", Value: ownerID},
		}}}},
	})
}

// RemoveCommentsByOwner purge 级联：从所有帖子中剥离该用户的评论
func (s *Store) RemoveCommentsByOwner(ctx context.Context, ownerID string) error {
	_, err := s.col(ColPosts).UpdateMany(ctx, bson.D{}, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "comments", Value: bson.D{{Key: "owner", Value: ownerID}}}}},
	})
	return wrapError(err)
}

// ============================================================================
// Likes（内嵌文档，每 (post, user) 至多一条）
// ============================================================================

func (s *Store) HasLike(ctx context.Context, postID, ownerID string) (bool, error) {
	return exists(ctx, s.col(ColPosts), bson.D{
		{Key: "_id", Value: postID},
		{Key: "likes", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "owner", Value: ownerID}}}}},
	})
}

func (s *Store) AddLike(ctx context.Context, postID string, like *model.Like) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "likes", Value: like}}},
	})
}

func (s *Store) RemoveLike(ctx context.Context, postID, ownerID string) error {
	return updateByID(ctx, s.col(ColPosts), postID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "owner", Value: ownerID}}}}},
	})
}

// postFilter 构造帖子列表过滤条件（visibility ∩ category [∩ owner]）
func postFilter(f storage.PostFilter) bson.D {
	filter := bson.D{}
	if f.OwnerID != "" {
		filter = append(filter, bson.E{Key: "owner", Value: bson.D{{Key: "$eq", Value: f.OwnerID}}})
	}
	if len(f.Visibility) > 0 {
		filter = append(filter, bson.E{Key: "visibility", Value: bson.D{{Key: "$in", Value: f.Visibility}}})
	}
	if len(f.Categories) > 0 {
		filter = append(filter, bson.E{Key: "category", Value: bson.D{{Key: "$in", Value: f.Categories}}})
	}
	return filter
}
