package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/identity"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication errors
var (
	ErrInvalidCredentials  = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountLocked       = shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Please try again later")
	ErrAccountInactive     = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	ErrPasswordMismatch    = shared.NewDomainError("INVALID_PASSWORD", "Passwords do not match")
	ErrUsernameTaken       = shared.NewDomainError("USERNAME_ALREADY_EXISTS", "A user with that username already exists")
	ErrEmailTaken          = shared.NewDomainError("EMAIL_ALREADY_EXISTS", "A user with that email already exists")
	ErrTokenExpired        = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid        = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked        = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh     = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	ErrInvalidGoogleToken  = shared.NewDomainError("INVALID_GOOGLE_TOKEN", "Invalid Google token")
	ErrGoogleLoginDisabled = shared.NewDomainError("GOOGLE_LOGIN_DISABLED", "Google sign-in is not configured")
)

// maxUsernameSuffix bounds the search for a free username during Google sign-up
const maxUsernameSuffix = 1000

// GoogleTokenVerifier verifies Google id_tokens
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.GoogleIdentity, error)
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles registration, sign-in and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	google     GoogleTokenVerifier
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	google GoogleTokenVerifier,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		google:     google,
		config:     config,
		logger:     logger,
	}
}

// Register creates a password account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if req.Password != req.Password2 {
		return nil, ErrPasswordMismatch
	}

	if err := s.checkUnique(ctx, req.Username, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetName(req.FirstName, req.LastName); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.signIn(ctx, user)
}

// CreateStaffUser creates an active staff account. It backs the management
// command and is not exposed over HTTP.
func (s *AuthService) CreateStaffUser(ctx context.Context, username, email, password string) (*UserResponse, error) {
	if err := s.checkUnique(ctx, username, email, uuid.Nil); err != nil {
		return nil, err
	}
	user, err := identity.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	user.PromoteToStaff()
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("Staff user created", zap.String("username", user.Username))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Login authenticates with a username or, when the identifier contains
// "@", an email address
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)

	var (
		user *identity.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("User not found during login", zap.String("identifier", identifier))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("username", user.Username))
			return nil, ErrAccountLocked
		}
		s.logger.Warn("Login attempt for inactive account", zap.String("username", user.Username))
		return nil, ErrAccountInactive
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", user.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, ErrAccountLocked
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("username", user.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, ErrInvalidCredentials
	}

	return s.signIn(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the current state of the account.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.Refresh)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, ErrAccountInactive
	}

	pair, old, err := s.jwtService.RefreshTokenPair(req.Refresh, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.blacklist.AddToBlacklist(ctx, old.ID, old.GetRemainingTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return toTokenResponse(pair, nil), nil
}

// Logout revokes the caller's refresh token and, when given, the access
// token used for the request
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return mapTokenError(err)
	}
	if claims.UserID != input.UserID.String() {
		return ErrTokenInvalid
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	if input.AccessTokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.AccessTokenJTI, input.AccessTokenTTL); err != nil {
			return err
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser returns the caller's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies a partial profile update
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil || req.LastName != nil {
		first, last := user.FirstName, user.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		if err := user.SetName(first, last); err != nil {
			return nil, err
		}
	}
	if req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), user.Email) {
		if err := s.checkUnique(ctx, "", *req.Email, user.ID); err != nil {
			return nil, err
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.ProfilePicture != nil {
		if err := user.SetProfilePicture(*req.ProfilePicture); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// GoogleLogin signs in with a Google id_token. The account is found by its
// Google id, then by email (linking it), and is created otherwise.
func (s *AuthService) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*TokenResponse, error) {
	if s.google == nil {
		return nil, ErrGoogleLoginDisabled
	}
	gid, err := s.google.Verify(ctx, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleNotConfigured) {
			return nil, ErrGoogleLoginDisabled
		}
		s.logger.Warn("Google token rejected", zap.Error(err))
		return nil, ErrInvalidGoogleToken
	}

	user, err := s.findOrCreateGoogleUser(ctx, gid)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrAccountInactive
	}
	return s.signIn(ctx, user)
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, gid *auth.GoogleIdentity) (*identity.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, gid.Subject)
	if err == nil {
		return user, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	user, err = s.userRepo.FindByEmail(ctx, gid.Email)
	if err == nil {
		if err := user.LinkGoogleAccount(gid.Subject, gid.GivenName, gid.FamilyName, gid.Picture); err != nil {
			return nil, err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("Google account linked", zap.String("user_id", user.ID.String()))
		return user, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	return s.createGoogleUser(ctx, gid)
}

// createGoogleUser derives a username from the email and appends a numeric
// suffix until it is free
func (s *AuthService) createGoogleUser(ctx context.Context, gid *auth.GoogleIdentity) (*identity.User, error) {
	base := identity.UsernameFromEmail(gid.Email)

	for n := 0; n < maxUsernameSuffix; n++ {
		candidate := identity.UsernameWithSuffix(base, n)
		taken, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		user, err := identity.NewFederatedUser(candidate, gid.Email, gid.Subject)
		if err != nil {
			return nil, err
		}
		if err := user.SetName(gid.GivenName, gid.FamilyName); err != nil {
			return nil, err
		}
		if err := user.SetProfilePicture(gid.Picture); err != nil {
			return nil, err
		}

		err = s.userRepo.Create(ctx, user)
		if errors.Is(err, shared.ErrAlreadyExists) {
			// lost a race for the username, or the google id was linked concurrently
			if existing, findErr := s.userRepo.FindByGoogleID(ctx, gid.Subject); findErr == nil {
				return existing, nil
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("User created from Google sign-in",
			zap.String("user_id", user.ID.String()),
			zap.String("username", user.Username))
		return user, nil
	}
	return nil, ErrUsernameTaken
}

func (s *AuthService) signIn(ctx context.Context, user *identity.User) (*TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// don't fail the login
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))
	return toTokenResponse(pair, user), nil
}

// checkUnique rejects a username or email already used by an account other
// than self. Empty values are skipped.
func (s *AuthService) checkUnique(ctx context.Context, username, email string, self uuid.UUID) error {
	if username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}
	}
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if self == uuid.Nil {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
		return nil
	}
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != self:
		return ErrEmailTaken
	case err != nil && !shared.IsNotFound(err):
		return err
	}
	return nil
}

func (s *AuthService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, jti string) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
