package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/identity"
	"github.com/velux/backend/internal/infrastructure/auth"
)

// RegisterRequest is the payload of a new account sign-up
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginRequest authenticates with a username or an email address
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=254"`
	Password   string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// GoogleLoginRequest carries a Google id_token obtained by the client
type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateProfileRequest partially updates the caller's profile. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" binding:"omitempty,max=150"`
	LastName       *string `json:"last_name" binding:"omitempty,max=150"`
	Email          *string `json:"email" binding:"omitempty,email,max=254"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=500"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID       uuid.UUID
	RefreshToken string
	// AccessTokenJTI and AccessTokenTTL revoke the access token used for the
	// logout call itself; both are optional.
	AccessTokenJTI string
	AccessTokenTTL time.Duration
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	ProfilePicture string     `json:"profile_picture"`
	IsStaff        bool       `json:"is_staff"`
	GoogleLinked   bool       `json:"google_linked"`
	DateJoined     time.Time  `json:"date_joined"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// TokenResponse is returned by every operation that signs a user in
type TokenResponse struct {
	Access           string        `json:"access"`
	Refresh          string        `json:"refresh"`
	AccessExpiresAt  time.Time     `json:"access_expires_at"`
	RefreshExpiresAt time.Time     `json:"refresh_expires_at"`
	TokenType        string        `json:"token_type"`
	User             *UserResponse `json:"user,omitempty"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		IsStaff:        u.IsStaff,
		GoogleLinked:   u.GoogleID != nil,
		DateJoined:     u.CreatedAt,
		LastLogin:      u.LastLoginAt,
	}
}

func toTokenResponse(pair *auth.TokenPair, u *identity.User) *TokenResponse {
	resp := &TokenResponse{
		Access:           pair.AccessToken,
		Refresh:          pair.RefreshToken,
		AccessExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:        pair.TokenType,
	}
	if u != nil {
		user := ToUserResponse(u)
		resp.User = &user
	}
	return resp
}
