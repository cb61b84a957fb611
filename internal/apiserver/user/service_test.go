package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/result"
	"blog-backend/internal/shared/storage/memstore"
)

func newTestService() (*Service, *memstore.Store) {
	store := memstore.NewStore()
	return NewService(store, store), store
}

func seedUser(t *testing.T, store *memstore.Store, id, username string, role model.Role, status model.Status) *model.User {
	t.Helper()
	u := &model.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$12$fakehashfakehashfakehashfakehashfakehashfakehashfakeha",
		Role:         role,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func actorFor(u *model.User) *model.TokenPayload {
	return &model.TokenPayload{
		ID:       u.ID,
		Status:   u.Status,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("creates passive user with hashed password", func(t *testing.T) {
		svc, _ := newTestService()

		res, err := svc.Add(ctx, AddUser{Username: "alice", Email: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Equal(t, "Created", res.Message)
		assert.Equal(t, model.RoleUser, res.Data.Role)
		assert.Equal(t, model.StatusPassive, res.Data.Status)
		assert.NotEqual(t, "secret123", res.Data.PasswordHash)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		svc, store := newTestService()
		seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)

		res, err := svc.Add(ctx, AddUser{Username: "alice", Email: "other@example.com", Password: "x"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "username is taken", res.Message)
	})

	t.Run("rejects taken email", func(t *testing.T) {
		svc, store := newTestService()
		seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)

		res, err := svc.Add(ctx, AddUser{Username: "bob", Email: "alice@example.com", Password: "x"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "email is taken", res.Message)
	})

	t.Run("deleted account frees username but not email", func(t *testing.T) {
		svc, store := newTestService()
		seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusDeleted)

		res, err := svc.Add(ctx, AddUser{Username: "alice", Email: "new@example.com", Password: "x"})
		require.NoError(t, err)
		assert.True(t, res.Status)

		res, err = svc.Add(ctx, AddUser{Username: "someone", Email: "alice@example.com", Password: "x"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "email is taken", res.Message)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)
	seedUser(t, store, "usr-2", "gone", model.RoleUser, model.StatusDeleted)

	res, err := svc.GetByID(ctx, "usr-1")
	require.NoError(t, err)
	require.True(t, res.Status)
	assert.Equal(t, "alice", res.Data.Username)

	res, err = svc.GetByID(ctx, "usr-2")
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "User not exits", res.Message)

	res, err = svc.GetByID(ctx, "usr-missing")
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "User not exits", res.Message)
}

func TestGetAllPagination(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	base := time.Now()
	for i, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		u := &model.User{
			ID:        "usr-" + name,
			Username:  name,
			Email:     name + "@example.com",
			Role:      model.RoleUser,
			Status:    model.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base,
		}
		require.NoError(t, store.CreateUser(ctx, u))
	}
	seedUser(t, store, "usr-deleted", "ghost", model.RoleUser, model.StatusDeleted)

	t.Run("page and limit", func(t *testing.T) {
		res, err := svc.GetAll(ctx, ListQuery{Page: 2, Limit: 2, Sort: "username", Asc: 1})
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Equal(t, int64(2), res.Data.PageNum)
		assert.Equal(t, int64(5), res.Data.TotalItems)
		assert.Equal(t, int64(3), res.Data.TotalPages)
		require.Len(t, res.Data.Data, 2)
		assert.Equal(t, "u3", res.Data.Data[0].Username)
		assert.Equal(t, "u4", res.Data.Data[1].Username)
	})

	t.Run("no limit returns everything on one page", func(t *testing.T) {
		res, err := svc.GetAll(ctx, ListQuery{})
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Len(t, res.Data.Data, 5)
		assert.Equal(t, int64(1), res.Data.TotalPages)
	})
}

func TestUpdatePermissions(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *model.User, *model.User, *model.User, *model.User) {
		svc, store := newTestService()
		target := seedUser(t, store, "usr-target", "target", model.RoleUser, model.StatusActive)
		admin := seedUser(t, store, "usr-admin", "admin", model.RoleAdmin, model.StatusActive)
		admin2 := seedUser(t, store, "usr-admin2", "admin2", model.RoleAdmin, model.StatusActive)
		sys := seedUser(t, store, "usr-sys", "sys", model.RoleSysAdmin, model.StatusActive)
		return svc, target, admin, admin2, sys
	}

	t.Run("anonymous is rejected", func(t *testing.T) {
		svc, target, _, _, _ := setup(t)
		res, err := svc.Update(ctx, target.ID, UpdateUser{Username: "renamed"}, nil)
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Not permitted", res.Message)
	})

	t.Run("self can update", func(t *testing.T) {
		svc, target, _, _, _ := setup(t)
		res, err := svc.Update(ctx, target.ID, UpdateUser{Username: "renamed"}, actorFor(target))
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Equal(t, "User updated", res.Message)
	})

	t.Run("admin can update basic user", func(t *testing.T) {
		svc, target, admin, _, _ := setup(t)
		res, err := svc.Update(ctx, target.ID, UpdateUser{Username: "renamed"}, actorFor(admin))
		require.NoError(t, err)
		assert.True(t, res.Status)
	})

	t.Run("admin cannot update another admin", func(t *testing.T) {
		svc, _, admin, admin2, _ := setup(t)
		res, err := svc.Update(ctx, admin2.ID, UpdateUser{Username: "renamed"}, actorFor(admin))
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Not permitted", res.Message)
	})

	t.Run("sys_admin can update anyone", func(t *testing.T) {
		svc, _, _, admin2, sys := setup(t)
		res, err := svc.Update(ctx, admin2.ID, UpdateUser{Username: "renamed"}, actorFor(sys))
		require.NoError(t, err)
		assert.True(t, res.Status)
	})

	t.Run("keeping own username is allowed", func(t *testing.T) {
		svc, target, _, _, _ := setup(t)
		res, err := svc.Update(ctx, target.ID, UpdateUser{Username: target.Username}, actorFor(target))
		require.NoError(t, err)
		assert.True(t, res.Status)
	})

	t.Run("taking another user's name is rejected", func(t *testing.T) {
		svc, target, admin, _, _ := setup(t)
		res, err := svc.Update(ctx, target.ID, UpdateUser{Username: admin.Username}, actorFor(target))
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "username is taken", res.Message)
	})
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)

	res, err := svc.ChangeRole(ctx, "usr-1", model.RoleAdmin)
	require.NoError(t, err)
	require.True(t, res.Status)

	got, err := store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	res, err = svc.ChangeRole(ctx, "usr-1", model.Role("overlord"))
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "Role is not exists", res.Message)

	res, err = svc.ChangeRole(ctx, "usr-missing", model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "User not exits", res.Message)
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    model.Status
		op      string // suspend / activate / self-activate
		wantOK  bool
		wantMsg string
	}{
		{"activate passive", model.StatusPassive, "activate", true, "User active"},
		{"suspend active", model.StatusActive, "suspend", true, "User suspended"},
		{"activate suspended", model.StatusSuspended, "activate", true, "User active"},
		{"suspend passive", model.StatusPassive, "suspend", false, "Status change is not allowed"},
		{"activate active", model.StatusActive, "activate", false, "User is already active"},
		{"suspend suspended", model.StatusSuspended, "suspend", false, "User is already suspended"},
		{"self-activate passive", model.StatusPassive, "self-activate", true, "User active"},
		{"self-activate active", model.StatusActive, "self-activate", false, "User is already active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService()
			seedUser(t, store, "usr-1", "alice", model.RoleUser, tt.from)
			sys := seedUser(t, store, "usr-sys", "sys", model.RoleSysAdmin, model.StatusActive)

			var (
				res result.Result
				err error
			)
			switch tt.op {
			case "suspend":
				res, err = svc.Suspend(ctx, "usr-1", actorFor(sys))
			case "activate":
				res, err = svc.Activate(ctx, "usr-1", actorFor(sys))
			case "self-activate":
				res, err = svc.SelfActivate(ctx, "usr-1")
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, res.Status)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}

	t.Run("status change needs privilege", func(t *testing.T) {
		svc, store := newTestService()
		target := seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)

		// 状态变更没有"本人"例外
		res, err := svc.Suspend(ctx, target.ID, actorFor(target))
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Not permitted", res.Message)
	})

	t.Run("deleted user is unreachable", func(t *testing.T) {
		svc, store := newTestService()
		seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusDeleted)
		sys := seedUser(t, store, "usr-sys", "sys", model.RoleSysAdmin, model.StatusActive)

		res, err := svc.Activate(ctx, "usr-1", actorFor(sys))
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "User not exits", res.Message)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	seedUser(t, store, "usr-1", "alice", model.RoleUser, model.StatusActive)

	res, err := svc.Remove(ctx, "usr-1")
	require.NoError(t, err)
	require.True(t, res.Status)
	assert.Equal(t, "User deleted", res.Message)

	// 记录保留但从公开查询中消失
	got, err := store.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, got.Status)

	byName, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, byName)

	res, err = svc.Remove(ctx, "usr-missing")
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "User not exits", res.Message)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *memstore.Store, *model.User, *model.User) {
		svc, store := newTestService()
		victim := seedUser(t, store, "usr-victim", "victim", model.RoleUser, model.StatusActive)
		other := seedUser(t, store, "usr-other", "other", model.RoleUser, model.StatusActive)

		for _, id := range []string{"post-1", "post-2"} {
			require.NoError(t, store.CreatePost(ctx, &model.Post{
				ID: id, OwnerID: victim.ID, Header: "h", Body: "b",
				Category: model.CategoryGeneral, Visibility: model.VisibilityPublic,
			}))
		}
		require.NoError(t, store.CreatePost(ctx, &model.Post{
			ID: "post-3", OwnerID: other.ID, Header: "h", Body: "b",
			Category: model.CategoryGeneral, Visibility: model.VisibilityPublic,
		}))
		require.NoError(t, store.AddComment(ctx, "post-3", &model.Comment{ID: "cmt-victim", OwnerID: victim.ID, Comment: "mine"}))
		require.NoError(t, store.AddComment(ctx, "post-3", &model.Comment{ID: "cmt-other", OwnerID: other.ID, Comment: "theirs"}))
		return svc, store, victim, other
	}

	t.Run("cascade removes posts, comments and the user", func(t *testing.T) {
		svc, store, victim, _ := setup(t)
		sys := seedUser(t, store, "usr-sys", "sys", model.RoleSysAdmin, model.StatusActive)

		res, err := svc.Purge(ctx, victim.ID, actorFor(sys))
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Equal(t, "User purged", res.Message)

		for _, id := range []string{"post-1", "post-2"} {
			p, err := store.GetPost(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, p)
		}

		p3, err := store.GetPost(ctx, "post-3")
		require.NoError(t, err)
		require.NotNil(t, p3)
		require.Len(t, p3.Comments, 1)
		assert.Equal(t, "cmt-other", p3.Comments[0].ID)

		u, err := store.GetUser(ctx, victim.ID)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("self can purge own account", func(t *testing.T) {
		svc, store, victim, _ := setup(t)

		res, err := svc.Purge(ctx, victim.ID, actorFor(victim))
		require.NoError(t, err)
		assert.True(t, res.Status)

		u, err := store.GetUser(ctx, victim.ID)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("basic user cannot purge someone else", func(t *testing.T) {
		svc, store, victim, other := setup(t)

		res, err := svc.Purge(ctx, victim.ID, actorFor(other))
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Not permitted", res.Message)

		u, err := store.GetUser(ctx, victim.ID)
		require.NoError(t, err)
		assert.NotNil(t, u)
	})

	t.Run("anonymous cannot purge", func(t *testing.T) {
		svc, _, victim, _ := setup(t)

		res, err := svc.Purge(ctx, victim.ID, nil)
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Not permitted", res.Message)
	})
}
