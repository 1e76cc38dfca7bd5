package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists accounts. Lookups by username and email ignore
// case; a miss is reported as shared.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByGoogleID resolves the account linked to a Google subject
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
