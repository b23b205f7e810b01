package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compucar/backend/internal/domain/identity"
	"github.com/compucar/backend/internal/infrastructure/auth"
	"github.com/compucar/backend/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "compucar-test",
	})
}

func setupRouter(jwtService *auth.JWTService, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/")
	group.Use(JWTAuthMiddleware(jwtService))
	if adminOnly {
		group.Use(RequireAdmin())
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c)})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()
	r := setupRouter(jwtService, false)

	user, err := identity.NewUser("driver@example.com", "correct-horse-9")
	require.NoError(t, err)
	tokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		w := doRequest(r, "Bearer "+tokens.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doRequest(r, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(r, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("refresh token rejected on access endpoints", func(t *testing.T) {
		w := doRequest(r, "Bearer "+tokens.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	jwtService := newTestJWTService()
	r := setupRouter(jwtService, true)

	customer, err := identity.NewUser("driver@example.com", "correct-horse-9")
	require.NoError(t, err)
	admin, err := identity.NewAdmin("boss@example.com", "correct-horse-9")
	require.NoError(t, err)

	customerTokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: customer.ID, Email: customer.Email, Role: customer.Role,
	})
	require.NoError(t, err)
	adminTokens, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: admin.ID, Email: admin.Email, Role: admin.Role,
	})
	require.NoError(t, err)

	t.Run("customer is forbidden", func(t *testing.T) {
		w := doRequest(r, "Bearer "+customerTokens.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		w := doRequest(r, "Bearer "+adminTokens.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
