package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velux/backend/internal/infrastructure/auth"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/interfaces/http/dto"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func issue(t *testing.T, svc *auth.JWTService, staff bool) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   userID,
		Username: "jose",
		IsStaff:  staff,
	})
	require.NoError(t, err)
	return pair, userID
}

type failingBlacklist struct{}

func (failingBlacklist) AddToBlacklist(context.Context, string, time.Duration) error { return nil }
func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func authRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/me", func(c *gin.Context) {
		id, ok := GetUserUUID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "authenticated": ok, "staff": IsStaff(c)})
	})
	return router
}

func call(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set(AuthHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := issue(t, svc, false)
	router := authRouter(JWTAuthMiddleware(svc))

	t.Run("valid token", func(t *testing.T) {
		w := call(router, "Bearer "+pair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Bearer not-a-jwt", dto.ErrCodeTokenInvalid},
		{"refresh token as access", "Bearer " + pair.RefreshToken, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}

	t.Run("expired token", func(t *testing.T) {
		expired, _ := issue(t, newTestJWTService(-time.Minute), false)
		w := call(router, "Bearer "+expired.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, errorCode(t, w))
	})
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issue(t, svc, false)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("revoked token is rejected", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = blacklist
		w := call(authRouter(JWTAuthMiddlewareWithConfig(cfg)), "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w))
	})

	t.Run("blacklist outage fails open", func(t *testing.T) {
		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = failingBlacklist{}
		w := call(authRouter(JWTAuthMiddlewareWithConfig(cfg)), "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := issue(t, svc, true)
	router := authRouter(OptionalJWTAuthMiddleware(DefaultJWTConfig(svc)))

	t.Run("anonymous passes through", func(t *testing.T) {
		w := call(router, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token sets claims", func(t *testing.T) {
		w := call(router, "Bearer "+pair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"staff":true`)
	})

	t.Run("invalid token is rejected, not downgraded", func(t *testing.T) {
		w := call(router, "Bearer broken")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireStaff(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	customer, _ := issue(t, svc, false)
	staff, _ := issue(t, svc, true)
	router := authRouter(JWTAuthMiddleware(svc), RequireStaff())

	assert.Equal(t, http.StatusForbidden, call(router, "Bearer "+customer.AccessToken).Code)
	assert.Equal(t, http.StatusOK, call(router, "Bearer "+staff.AccessToken).Code)

	noAuth := authRouter(RequireStaff())
	assert.Equal(t, http.StatusUnauthorized, call(noAuth, "").Code)
}
