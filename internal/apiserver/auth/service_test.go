package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/apiserver/user"
	"blog-backend/internal/config"
	"blog-backend/internal/shared/crypt"
	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/queue"
	"blog-backend/internal/shared/storage/memstore"
)

var testCfg = config.AuthConfig{
	JWTSecret:      "test-secret",
	AccessTokenTTL: "1h",
	VerifyTokenTTL: "1h",
}

func newTestService(t *testing.T) (*Service, *memstore.Store, *queue.MemoryQueue) {
	t.Helper()
	store := memstore.NewStore()
	mail := queue.NewMemoryQueue()
	users := user.NewService(store, store)
	return NewService(users, mail, testCfg), store, mail
}

func seedUser(t *testing.T, store *memstore.Store, username, password string, status model.Status) *model.User {
	t.Helper()
	hash, err := crypt.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{
		ID:           "usr-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	seedUser(t, store, "alice", "secret123", model.StatusActive)
	seedUser(t, store, "pending", "secret123", model.StatusPassive)
	seedUser(t, store, "banned", "secret123", model.StatusSuspended)

	t.Run("valid credentials issue access token", func(t *testing.T) {
		res, err := svc.Login(ctx, Login{Username: "alice", Password: "secret123"})
		require.NoError(t, err)
		require.True(t, res.Status)
		require.NotEmpty(t, res.Data.Token)

		claims, err := ParseToken(testCfg, res.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.Equal(t, "usr-alice", claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, model.RoleUser, claims.Role)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		res, err := svc.Login(ctx, Login{Username: "alice", Password: "wrong"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Login failed", res.Message)

		res, err = svc.Login(ctx, Login{Username: "nobody", Password: "secret123"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Login failed", res.Message)
	})

	t.Run("passive user cannot log in", func(t *testing.T) {
		res, err := svc.Login(ctx, Login{Username: "pending", Password: "secret123"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "User is pending for activation", res.Message)
	})

	t.Run("suspended user cannot log in", func(t *testing.T) {
		res, err := svc.Login(ctx, Login{Username: "banned", Password: "secret123"})
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "User is suspended", res.Message)
	})
}

func TestSignUpAndVerify(t *testing.T) {
	ctx := context.Background()
	svc, store, mail := newTestService(t)

	res, err := svc.SignUp(ctx, SignUp{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.True(t, res.Status)
	assert.Equal(t, "Email sent to alice@example.com", res.Message)

	u, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.StatusPassive, u.Status)

	// 验证邮件异步入队
	require.Eventually(t, func() bool {
		n, err := mail.GetMailQueueLength(ctx)
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	msgs, err := mail.ConsumeVerifications(ctx, "test", 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, u.ID, msgs[0].UserID)
	assert.Equal(t, "alice@example.com", msgs[0].Email)

	// 队列里的令牌激活账号
	vres, err := svc.Verify(ctx, msgs[0].Token)
	require.NoError(t, err)
	require.True(t, vres.Status)
	assert.Equal(t, "Account successfully activated", vres.Message)

	u, err = store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, u.Status)

	// 重复验证被拒绝
	vres, err = svc.Verify(ctx, msgs[0].Token)
	require.NoError(t, err)
	assert.False(t, vres.Status)
	assert.Equal(t, "Account is already active", vres.Message)
}

func TestSignUpDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	seedUser(t, store, "alice", "secret123", model.StatusActive)

	res, err := svc.SignUp(ctx, SignUp{Username: "alice", Email: "new@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "username is taken", res.Message)

	res, err = svc.SignUp(ctx, SignUp{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, res.Status)
	assert.Equal(t, "email is taken", res.Message)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	u := seedUser(t, store, "alice", "secret123", model.StatusPassive)

	t.Run("garbage token", func(t *testing.T) {
		res, err := svc.Verify(ctx, "not-a-token")
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Account verification failed", res.Message)
	})

	t.Run("access token is not a verify token", func(t *testing.T) {
		token, err := GenerateAccessToken(testCfg, payloadFor(u))
		require.NoError(t, err)

		res, err := svc.Verify(ctx, token.Token)
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Account verification failed", res.Message)
	})

	t.Run("token for missing user", func(t *testing.T) {
		ghost := &model.User{ID: "usr-ghost", Username: "ghost", Email: "ghost@example.com"}
		token, err := GenerateVerifyToken(testCfg, payloadFor(ghost))
		require.NoError(t, err)

		res, err := svc.Verify(ctx, token.Token)
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "Account verification failed", res.Message)
	})
}

func TestSendVerification(t *testing.T) {
	ctx := context.Background()
	svc, store, mail := newTestService(t)
	seedUser(t, store, "pending", "secret123", model.StatusPassive)
	seedUser(t, store, "active", "secret123", model.StatusActive)

	t.Run("passive user gets a new email", func(t *testing.T) {
		res, err := svc.SendVerification(ctx, "pending@example.com")
		require.NoError(t, err)
		require.True(t, res.Status)
		assert.Equal(t, "Email sent to pending@example.com", res.Message)

		require.Eventually(t, func() bool {
			n, err := mail.GetMailQueueLength(ctx)
			return err == nil && n > 0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("active user is rejected", func(t *testing.T) {
		res, err := svc.SendVerification(ctx, "active@example.com")
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "User is already active", res.Message)
	})

	t.Run("unknown email is rejected", func(t *testing.T) {
		res, err := svc.SendVerification(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, res.Status)
		assert.Equal(t, "User not exists", res.Message)
	})
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates sys_admin when missing", func(t *testing.T) {
		store := memstore.NewStore()
		cfg := testCfg
		cfg.AdminEmail = "root@example.com"
		cfg.AdminPassword = "secret123"

		require.NoError(t, EnsureAdminUser(ctx, store, cfg))

		u, err := store.GetUserByEmail(ctx, "root@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, model.RoleSysAdmin, u.Role)
		assert.Equal(t, model.StatusActive, u.Status)

		// 重入无副作用
		require.NoError(t, EnsureAdminUser(ctx, store, cfg))
	})

	t.Run("upgrades existing user's role", func(t *testing.T) {
		store := memstore.NewStore()
		u := seedUser(t, store, "alice", "secret123", model.StatusActive)

		cfg := testCfg
		cfg.AdminEmail = u.Email
		cfg.AdminPassword = "secret123"
		require.NoError(t, EnsureAdminUser(ctx, store, cfg))

		got, err := store.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleSysAdmin, got.Role)
	})

	t.Run("no-op without configuration", func(t *testing.T) {
		store := memstore.NewStore()
		require.NoError(t, EnsureAdminUser(ctx, store, testCfg))

		n, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
