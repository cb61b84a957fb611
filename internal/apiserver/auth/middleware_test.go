package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/shared/identity"
	"blog-backend/internal/shared/model"
)

func TestIsPublicRoute(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected bool
	}{
		// 公开路由
		{"signup", "POST", "/api/v1/auth/signup", true},
		{"login", "POST", "/api/v1/auth/login", true},
		{"verify", "POST", "/api/v1/auth/verify", true},
		{"health", "GET", "/health", true},
		{"metrics", "GET", "/metrics", true},
		{"openapi", "GET", "/api/v1/openapi.yaml", true},
		{"list posts", "GET", "/api/v1/posts", true},
		{"get post", "GET", "/api/v1/posts/post-1", true},
		{"get image", "GET", "/api/v1/posts/images/posts/post-1/a.png", true},

		// 受保护路由
		{"create post", "POST", "/api/v1/posts", false},
		{"delete post", "DELETE", "/api/v1/posts/post-1", false},
		{"like post", "POST", "/api/v1/posts/post-1/like", false},
		{"list users", "GET", "/api/v1/users", false},
		{"update user", "PUT", "/api/v1/users/usr-1", false},
		{"purge user", "DELETE", "/api/v1/users/usr-1/purge", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isPublicRoute(tt.method, tt.path)
			if got != tt.expected {
				t.Errorf("isPublicRoute(%q, %q) = %v, want %v", tt.method, tt.path, got, tt.expected)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	payload := &model.TokenPayload{
		ID:       "usr-1",
		Status:   model.StatusActive,
		Username: "alice",
		Email:    "alice@example.com",
		Role:     model.RoleUser,
	}

	var seenActor *model.TokenPayload
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenActor = identity.ActorFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(testCfg)(next)

	t.Run("protected route without token is rejected", func(t *testing.T) {
		seenActor = nil
		r := httptest.NewRequest("GET", "/api/v1/users", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("protected route with access token passes and injects identity", func(t *testing.T) {
		seenActor = nil
		token, err := GenerateAccessToken(testCfg, payload)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/api/v1/users", nil)
		r.Header.Set("Authorization", "Bearer "+token.Token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seenActor)
		assert.Equal(t, "usr-1", seenActor.ID)
		assert.Equal(t, model.RoleUser, seenActor.Role)
	})

	t.Run("verify token cannot access protected routes", func(t *testing.T) {
		token, err := GenerateVerifyToken(testCfg, payload)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/api/v1/users", nil)
		r.Header.Set("Authorization", "Bearer "+token.Token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("public route passes anonymously", func(t *testing.T) {
		seenActor = nil
		r := httptest.NewRequest("GET", "/api/v1/posts", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, seenActor)
	})

	t.Run("public route still injects identity when token present", func(t *testing.T) {
		seenActor = nil
		token, err := GenerateAccessToken(testCfg, payload)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/api/v1/posts", nil)
		r.Header.Set("Authorization", "Bearer "+token.Token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seenActor)
		assert.Equal(t, "usr-1", seenActor.ID)
	})
}
