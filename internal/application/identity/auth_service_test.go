package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appidentity "github.com/velux/backend/internal/application/identity"
	"github.com/velux/backend/internal/domain/identity"
	"github.com/velux/backend/internal/infrastructure/auth"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/testutil"
	"gorm.io/gorm"
)

type stubGoogle struct {
	identity *auth.GoogleIdentity
	err      error
}

func (s *stubGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return s.identity, s.err
}

type fixture struct {
	db        *gorm.DB
	svc       *appidentity.AuthService
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	google    *stubGoogle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "velux-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	google := &stubGoogle{}
	cfg := appidentity.AuthServiceConfig{MaxLoginAttempts: 3, LockDuration: time.Minute}

	return &fixture{
		db:        db,
		svc:       appidentity.NewAuthService(persistence.NewGormUserRepository(db), jwtService, blacklist, google, cfg, nil),
		jwt:       jwtService,
		blacklist: blacklist,
		google:    google,
	}
}

func registerRequest(username, email string) appidentity.RegisterRequest {
	return appidentity.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "secret123",
		Password2: "secret123",
		FirstName: "Ana",
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest("Ana", "ana@example.com"))

	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ana", resp.User.Username)
	assert.Equal(t, "Ana", resp.User.FirstName)
	assert.NotNil(t, resp.User.LastLogin)

	claims, err := f.jwt.ValidateAccessToken(resp.Access)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.False(t, claims.IsStaff)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest("ana", "ana@example.com"))
	require.NoError(t, err)

	mismatch := registerRequest("bob", "bob@example.com")
	mismatch.Password2 = "different123"

	tests := []struct {
		name string
		req  appidentity.RegisterRequest
		want error
	}{
		{"passwords differ", mismatch, appidentity.ErrPasswordMismatch},
		{"username taken", registerRequest("ANA", "other@example.com"), appidentity.ErrUsernameTaken},
		{"email taken", registerRequest("carol", "Ana@Example.com"), appidentity.ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "dave", false)

	t.Run("by username", func(t *testing.T) {
		resp, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "Dave", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Access)
		assert.Equal(t, "dave", resp.User.Username)
	})

	t.Run("by email", func(t *testing.T) {
		resp, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "dave@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Refresh)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "nobody", Password: "password123"})
		assert.ErrorIs(t, err, appidentity.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "dave", Password: "wrong1234"})
		assert.ErrorIs(t, err, appidentity.ErrInvalidCredentials)
	})
}

func TestAuthService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "erin", false)

	bad := appidentity.LoginRequest{Identifier: "erin", Password: "wrong1234"}
	_, err := f.svc.Login(ctx, bad)
	assert.ErrorIs(t, err, appidentity.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, bad)
	assert.ErrorIs(t, err, appidentity.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, bad)
	assert.ErrorIs(t, err, appidentity.ErrAccountLocked)

	_, err = f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "erin", Password: "password123"})
	assert.ErrorIs(t, err, appidentity.ErrAccountLocked)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "frank", true)

	login, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "frank", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, appidentity.RefreshRequest{Refresh: login.Refresh})
	require.NoError(t, err)
	assert.NotEqual(t, login.Refresh, refreshed.Refresh)
	assert.Nil(t, refreshed.User)

	claims, err := f.jwt.ValidateAccessToken(refreshed.Access)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff)

	_, err = f.svc.Refresh(ctx, appidentity.RefreshRequest{Refresh: login.Refresh})
	assert.ErrorIs(t, err, appidentity.ErrTokenRevoked, "a rotated refresh token cannot be reused")

	_, err = f.svc.Refresh(ctx, appidentity.RefreshRequest{Refresh: refreshed.Refresh})
	assert.NoError(t, err)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), appidentity.RefreshRequest{Refresh: "garbage"})

	assert.ErrorIs(t, err, appidentity.ErrTokenInvalid)
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "gina", false)

	login, err := f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "gina", Password: "password123"})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(login.Access)
	require.NoError(t, err)

	t.Run("rejects another user's token", func(t *testing.T) {
		err := f.svc.Logout(ctx, appidentity.LogoutInput{UserID: uuid.New(), RefreshToken: login.Refresh})
		assert.ErrorIs(t, err, appidentity.ErrTokenInvalid)
	})

	err = f.svc.Logout(ctx, appidentity.LogoutInput{
		UserID:         user.ID,
		RefreshToken:   login.Refresh,
		AccessTokenJTI: access.ID,
		AccessTokenTTL: access.GetRemainingTTL(),
	})
	require.NoError(t, err)

	revoked, err := f.blacklist.IsBlacklisted(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.svc.Refresh(ctx, appidentity.RefreshRequest{Refresh: login.Refresh})
	assert.ErrorIs(t, err, appidentity.ErrTokenRevoked)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "hank", false)
	testutil.SeedUser(t, f.db, "ivy", false)

	first := "Hank"
	picture := "https://cdn.example.com/hank.png"
	resp, err := f.svc.UpdateProfile(ctx, user.ID, appidentity.UpdateProfileRequest{FirstName: &first, ProfilePicture: &picture})
	require.NoError(t, err)
	assert.Equal(t, "Hank", resp.FirstName)
	assert.Equal(t, picture, resp.ProfilePicture)
	assert.Equal(t, "hank@example.com", resp.Email)

	got, err := f.svc.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hank", got.FirstName)

	taken := "ivy@example.com"
	_, err = f.svc.UpdateProfile(ctx, user.ID, appidentity.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, appidentity.ErrEmailTaken)

	same := "HANK@example.com"
	_, err = f.svc.UpdateProfile(ctx, user.ID, appidentity.UpdateProfileRequest{Email: &same})
	assert.NoError(t, err)
}

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetCurrentUser(context.Background(), uuid.New())

	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestAuthService_CreateStaffUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.CreateStaffUser(ctx, "admin", "admin@example.com", "adminpass1")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)

	_, err = f.svc.CreateStaffUser(ctx, "admin", "root@example.com", "adminpass1")
	assert.ErrorIs(t, err, appidentity.ErrUsernameTaken)
}

func TestAuthService_GoogleLogin_CreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "jose.garcia", false)
	f.google.identity = &auth.GoogleIdentity{
		Subject:    "g-1",
		Email:      "Jose.Garcia@gmail.com",
		GivenName:  "José",
		FamilyName: "García",
		Picture:    "https://example.com/j.png",
	}

	resp, err := f.svc.GoogleLogin(ctx, appidentity.GoogleLoginRequest{Token: "id-token"})

	require.NoError(t, err)
	assert.Equal(t, "jose.garcia1", resp.User.Username)
	assert.Equal(t, "José", resp.User.FirstName)
	assert.True(t, resp.User.GoogleLinked)

	_, err = f.svc.Login(ctx, appidentity.LoginRequest{Identifier: "jose.garcia1", Password: ""})
	assert.ErrorIs(t, err, appidentity.ErrInvalidCredentials, "google accounts have no usable password")

	again, err := f.svc.GoogleLogin(ctx, appidentity.GoogleLoginRequest{Token: "id-token"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestAuthService_GoogleLogin_LinksExistingEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.db, "kim", false)
	f.google.identity = &auth.GoogleIdentity{
		Subject:   "g-kim",
		Email:     "kim@example.com",
		GivenName: "Kim",
	}

	resp, err := f.svc.GoogleLogin(ctx, appidentity.GoogleLoginRequest{Token: "id-token"})

	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.True(t, resp.User.GoogleLinked)
	assert.Equal(t, "Kim", resp.User.FirstName)
}

func TestAuthService_GoogleLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.google.err = errors.New("bad signature")
	_, err := f.svc.GoogleLogin(ctx, appidentity.GoogleLoginRequest{Token: "x"})
	assert.ErrorIs(t, err, appidentity.ErrInvalidGoogleToken)

	f.google.err = auth.ErrGoogleNotConfigured
	_, err = f.svc.GoogleLogin(ctx, appidentity.GoogleLoginRequest{Token: "x"})
	assert.ErrorIs(t, err, appidentity.ErrGoogleLoginDisabled)
}
