package favorite

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

// Favorite marks a product on a user's wish list
type Favorite struct {
	shared.BaseEntity
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// NewFavorite creates a favorite
func NewFavorite(userID, productID uuid.UUID) (*Favorite, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAVORITE", "User and product are required")
	}
	return &Favorite{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
	}, nil
}

// ErrFavoriteNotFound is returned when removing a product that is not a favorite
var ErrFavoriteNotFound = shared.NewDomainError("FAVORITE_NOT_FOUND", "Product is not in favorites")

// FavoriteRepository defines the interface for favorite persistence
type FavoriteRepository interface {
	// FindByUser lists a user's favorites, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Favorite, error)

	// Find finds a single favorite
	Find(ctx context.Context, userID, productID uuid.UUID) (*Favorite, error)

	// Create inserts a favorite; a duplicate is reported as shared.ErrAlreadyExists
	Create(ctx context.Context, favorite *Favorite) error

	// Delete removes a favorite
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}
