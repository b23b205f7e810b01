package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/compucar/backend/internal/application/identity"
	"github.com/compucar/backend/internal/domain/identity"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/infrastructure/auth"
	"github.com/compucar/backend/internal/infrastructure/config"
	"github.com/compucar/backend/internal/interfaces/http/middleware"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *memoryUserRepo) Save(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) FindByTelegramChatID(_ context.Context, chatID int64) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramChatID == chatID {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "compucar-test",
	})
	service := identityapp.NewAuthService(newMemoryUserRepo(), jwtService, zap.NewNop())
	h := NewAuthHandler(service)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	authed := r.Group("/", middleware.JWTAuthMiddleware(jwtService))
	authed.GET("/auth/me", h.Me)
	return r
}

func postJSON(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Flow(t *testing.T) {
	r := setupAuthRouter(t)

	register := `{"email":"driver@example.com","password":"stage1-remap","displayName":"Driver"}`

	t.Run("register issues tokens", func(t *testing.T) {
		w := postJSON(r, "/auth/register", register, "")
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				User struct {
					Email string `json:"email"`
					Role  string `json:"role"`
				} `json:"user"`
				Tokens struct {
					AccessToken  string `json:"access_token"`
					RefreshToken string `json:"refresh_token"`
				} `json:"tokens"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "driver@example.com", resp.Data.User.Email)
		assert.NotEmpty(t, resp.Data.Tokens.AccessToken)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := postJSON(r, "/auth/register", register, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "EMAIL_EXISTS")
	})

	t.Run("short password fails validation", func(t *testing.T) {
		w := postJSON(r, "/auth/register", `{"email":"b@example.com","password":"short","displayName":"B"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login then fetch profile", func(t *testing.T) {
		w := postJSON(r, "/auth/login", `{"email":"driver@example.com","password":"stage1-remap"}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Tokens struct {
					AccessToken string `json:"access_token"`
				} `json:"tokens"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+resp.Data.Tokens.AccessToken)
		me := httptest.NewRecorder()
		r.ServeHTTP(me, req)

		require.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "driver@example.com")
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := postJSON(r, "/auth/login", `{"email":"driver@example.com","password":"wrong-password"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
