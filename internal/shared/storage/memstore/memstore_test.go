package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/storage"
)

func seedUser(t *testing.T, s *Store, id, username, email string, status model.Status) {
	t.Helper()
	err := s.CreateUser(context.Background(), &model.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Role:      model.RoleUser,
		Status:    status,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestSoftDeleteFiltering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "alice", "alice@example.com", model.StatusActive)
	seedUser(t, s, "u2", "bob", "bob@example.com", model.StatusDeleted)

	// GetUser 含软删除用户
	u, err := s.GetUser(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.StatusDeleted, u.Status)

	// 按用户名/邮箱查找排除软删除用户
	u, err = s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = s.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	exists, err := s.UserExists(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUniquenessSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "alice", "alice@example.com", model.StatusActive)
	seedUser(t, s, "u2", "bob", "bob@example.com", model.StatusDeleted)

	// 用户名唯一性只对非 deleted 用户生效
	taken, err := s.UsernameTaken(ctx, "alice", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.UsernameTaken(ctx, "bob", "")
	require.NoError(t, err)
	assert.False(t, taken)

	// excludeID 排除自身
	taken, err = s.UsernameTaken(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.False(t, taken)

	// 邮箱唯一性覆盖软删除用户
	taken, err = s.EmailTaken(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	// 重复邮箱在写入时被唯一索引语义拦截
	err = s.CreateUser(ctx, &model.User{ID: "u3", Username: "carol", Email: "bob@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestListUsersSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Now()
	for i, name := range []string{"carol", "alice", "bob"} {
		err := s.CreateUser(ctx, &model.User{
			ID:        name,
			Username:  name,
			Email:     name + "@example.com",
			Status:    model.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	// 默认按 created_at 降序
	users, err := s.ListUsers(ctx, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "bob", users[0].Username)

	// username 升序 + 分页
	users, err = s.ListUsers(ctx, storage.ListOptions{Sort: "username", Asc: 1, Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	// Skip 超出范围返回空切片
	users, err = s.ListUsers(ctx, storage.ListOptions{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListPostsProjection(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	err := s.CreatePost(ctx, &model.Post{
		ID:         "p1",
		OwnerID:    "u1",
		Header:     "hello",
		Category:   model.CategoryGeneral,
		Visibility: model.VisibilityPublic,
		Comments:   []model.Comment{{ID: "c1", OwnerID: "u2", Comment: "hi"}},
		Likes:      []model.Like{{OwnerID: "u2"}},
	})
	require.NoError(t, err)

	// 列表投影不含评论，点赞保留
	posts, err := s.ListPosts(ctx, storage.PostFilter{}, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].Comments)
	assert.Len(t, posts[0].Likes, 1)

	// 单帖读取包含评论
	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Len(t, p.Comments, 1)
}

func TestPostFilterIntersection(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed := []struct {
		id  string
		vis model.Visibility
		cat model.Category
	}{
		{"p1", model.VisibilityPublic, model.CategoryGeneral},
		{"p2", model.VisibilityPublic, model.CategoryScience},
		{"p3", model.VisibilityPrivate, model.CategoryGeneral},
	}
	for _, p := range seed {
		err := s.CreatePost(ctx, &model.Post{ID: p.id, OwnerID: "u1", Visibility: p.vis, Category: p.cat})
		require.NoError(t, err)
	}

	n, err := s.CountPosts(ctx, storage.PostFilter{
		Visibility: []model.Visibility{model.VisibilityPublic},
		Categories: []model.Category{model.CategoryGeneral},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	posts, err := s.ListPosts(ctx, storage.PostFilter{OwnerID: "u2"}, storage.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPurgeCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreatePost(ctx, &model.Post{ID: "p1", OwnerID: "victim"}))
	require.NoError(t, s.CreatePost(ctx, &model.Post{
		ID:      "p2",
		OwnerID: "other",
		Comments: []model.Comment{
			{ID: "c1", OwnerID: "victim", Comment: "bye"},
			{ID: "c2", OwnerID: "other", Comment: "stay"},
		},
	}))

	require.NoError(t, s.DeletePostsByOwner(ctx, "victim"))
	require.NoError(t, s.RemoveCommentsByOwner(ctx, "victim"))

	exists, err := s.PostExists(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, exists)

	p, err := s.GetPost(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "c2", p.Comments[0].ID)
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreatePost(ctx, &model.Post{ID: "p1", OwnerID: "u1"}))

	has, err := s.HasLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.AddLike(ctx, "p1", &model.Like{OwnerID: "u2", CreatedAt: time.Now()}))
	has, err = s.HasLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.RemoveLike(ctx, "p1", "u2"))
	has, err = s.HasLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, s.AddLike(ctx, "ghost", &model.Like{OwnerID: "u2"}), storage.ErrNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "alice", "alice@example.com", model.StatusActive)

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	u.Username = "mallory"

	again, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}
