package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/velux/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User represents a customer or staff account
// It is the aggregate root for identity operations
type User struct {
	shared.BaseEntity
	Username       string
	Email          string
	PasswordHash   string // Empty for accounts created through Google sign-in
	FirstName      string
	LastName       string
	ProfilePicture string
	GoogleID       *string
	IsStaff        bool
	IsActive       bool
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates a new active user with a password
func NewUser(username, email, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	user := &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     normalizeUsername(username),
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	return user, nil
}

// NewFederatedUser creates a user authenticated by an external identity
// provider. The account has no usable password.
func NewFederatedUser(username, email, googleID string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if googleID == "" {
		return nil, shared.NewDomainError("INVALID_GOOGLE_ID", "Google account ID cannot be empty")
	}

	user := &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   normalizeUsername(username),
		GoogleID:   &googleID,
		IsActive:   true,
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	return user, nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	u.Email = email
	u.UpdatedAt = time.Now()
	return nil
}

// SetName sets first and last name
func (u *User) SetName(firstName, lastName string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > 150 || len(lastName) > 150 {
		return shared.NewDomainError("INVALID_NAME", "Names cannot exceed 150 characters")
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = time.Now()
	return nil
}

// SetProfilePicture sets the avatar URL
func (u *User) SetProfilePicture(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_PROFILE_PICTURE", "Profile picture URL cannot exceed 500 characters")
	}
	u.ProfilePicture = strings.TrimSpace(url)
	u.UpdatedAt = time.Now()
	return nil
}

// LinkGoogleAccount links an external Google identity and fills in empty
// profile fields from it. Existing values are never overwritten.
func (u *User) LinkGoogleAccount(googleID, firstName, lastName, picture string) error {
	if googleID == "" {
		return shared.NewDomainError("INVALID_GOOGLE_ID", "Google account ID cannot be empty")
	}
	if u.GoogleID != nil && *u.GoogleID != googleID {
		return shared.NewDomainError("GOOGLE_ACCOUNT_MISMATCH", "Account is linked to a different Google identity")
	}
	u.GoogleID = &googleID
	if u.FirstName == "" {
		u.FirstName = strings.TrimSpace(firstName)
	}
	if u.LastName == "" {
		u.LastName = strings.TrimSpace(lastName)
	}
	if u.ProfilePicture == "" {
		u.ProfilePicture = strings.TrimSpace(picture)
	}
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword sets a new password
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

// HasUsablePassword reports whether the account can log in with a password
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if !u.HasUsablePassword() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// PromoteToStaff grants catalog administration rights
func (u *User) PromoteToStaff() {
	u.IsStaff = true
	u.UpdatedAt = time.Now()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
}

// RecordLoginFailure records a failed login attempt and locks the account
// once maxAttempts is reached. It returns true if the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

// IsLocked reports whether the account is temporarily locked
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsLocked()
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 150 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

// ValidatePassword exposes the password policy to the application layer
func ValidatePassword(password string) error {
	return validatePassword(password)
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ErrUserNotFound is returned when no account matches a lookup
var ErrUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "User not found")
