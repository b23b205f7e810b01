package identity

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/identity"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/infrastructure/auth"
	"github.com/compucar/backend/internal/infrastructure/config"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]identity.User)}
}

func (r *fakeUserRepo) Save(ctx context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			copied := u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByTelegramChatID(ctx context.Context, chatID int64) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramChatID == chatID {
			copied := u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "compucar-test",
	})
	return NewAuthService(repo, jwtService, zap.NewNop()), repo
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer account and issues tokens", func(t *testing.T) {
		svc, _ := newTestAuthService()

		resp, err := svc.Register(ctx, RegisterRequest{
			Email:       "Driver@Example.com",
			Password:    "correct-horse-9",
			DisplayName: "Driver",
		})
		require.NoError(t, err)
		assert.Equal(t, "driver@example.com", resp.User.Email)
		assert.Equal(t, string(identity.RoleCustomer), resp.User.Role)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _ := newTestAuthService()

		_, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "correct-horse-9"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "other-password-2"})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, _ := newTestAuthService()

		_, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "short"})
		require.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "correct-horse-9"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Email: "driver@example.com", Password: "correct-horse-9"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		_, err1 := svc.Login(ctx, LoginRequest{Email: "driver@example.com", Password: "wrong"})
		_, err2 := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "wrong"})
		require.Error(t, err1)
		require.Error(t, err2)
		assert.Equal(t, err1.Error(), err2.Error())
	})

	t.Run("deactivated account cannot login", func(t *testing.T) {
		user, err := repo.FindByID(ctx, registered.User.ID)
		require.NoError(t, err)
		require.NoError(t, user.Deactivate())
		require.NoError(t, repo.Save(ctx, user))

		_, err = svc.Login(ctx, LoginRequest{Email: "driver@example.com", Password: "correct-horse-9"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "correct-horse-9"})
	require.NoError(t, err)

	t.Run("issues a fresh pair", func(t *testing.T) {
		resp, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: registered.Tokens.RefreshToken})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		user, err := repo.FindByID(ctx, registered.User.ID)
		require.NoError(t, err)
		require.NoError(t, user.Deactivate())
		require.NoError(t, repo.Save(ctx, user))

		_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: registered.Tokens.RefreshToken})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "correct-horse-9"})
	require.NoError(t, err)
	userID := registered.User.ID

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, userID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-password-1"})
		require.Error(t, err)
	})

	t.Run("rotates the password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, userID, ChangePasswordRequest{CurrentPassword: "correct-horse-9", NewPassword: "new-password-1"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, LoginRequest{Email: "driver@example.com", Password: "correct-horse-9"})
		require.Error(t, err)
		_, err = svc.Login(ctx, LoginRequest{Email: "driver@example.com", Password: "new-password-1"})
		require.NoError(t, err)
	})
}

func TestAuthService_LinkTelegram(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService()

	first, err := svc.Register(ctx, RegisterRequest{Email: "first@example.com", Password: "correct-horse-9"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterRequest{Email: "second@example.com", Password: "correct-horse-9"})
	require.NoError(t, err)

	require.NoError(t, svc.LinkTelegram(ctx, first.User.ID, 123456))

	linked, err := repo.FindByTelegramChatID(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, linked.ID)

	t.Run("chat already linked to another account", func(t *testing.T) {
		err := svc.LinkTelegram(ctx, second.User.ID, 123456)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CHAT_ALREADY_LINKED", domainErr.Code)
	})

	t.Run("relinking own chat is fine", func(t *testing.T) {
		require.NoError(t, svc.LinkTelegram(ctx, first.User.ID, 123456))
	})

	t.Run("zero chat id rejected", func(t *testing.T) {
		require.Error(t, svc.LinkTelegram(ctx, second.User.ID, 0))
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "driver@example.com", Password: "correct-horse-9", DisplayName: "Driver"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Driver", me.DisplayName)
	assert.False(t, me.TelegramLinked)

	_, err = svc.Me(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}
