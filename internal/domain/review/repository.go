package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

// Recognised keys of shared.Filter.Filters for review listing
const (
	FilterProductID   = "product_id"
	FilterUserID      = "user_id"
	FilterRating      = "rating"
	FilterVisibleOnly = "visible_only"
)

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Review, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save creates or updates a review. A duplicate comment on the same
	// product by the same user is reported as shared.ErrAlreadyExists.
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
