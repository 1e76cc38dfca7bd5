package review

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

// Rating bounds
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// Review is a customer's rating and comment on a product
type Review struct {
	shared.BaseEntity
	ProductID uuid.UUID
	UserID    uuid.UUID
	Comment   string
	Rating    int
	Visible   bool
}

// NewReview creates a visible review. A zero rating means the default rating.
func NewReview(productID, userID uuid.UUID, comment string, rating int) (*Review, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if rating == 0 {
		rating = DefaultRating
	}
	r := &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		Visible:    true,
	}
	if err := r.Edit(comment, rating); err != nil {
		return nil, err
	}
	return r, nil
}

// Edit changes the comment and rating
func (r *Review) Edit(comment string, rating int) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return shared.NewDomainError("INVALID_COMMENT", "Comment cannot be empty")
	}
	if len(comment) > 2000 {
		return shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	r.Comment = comment
	r.Rating = rating
	r.UpdatedAt = time.Now()
	return nil
}

// SetVisible shows or hides the review
func (r *Review) SetVisible(visible bool) {
	r.Visible = visible
	r.UpdatedAt = time.Now()
}

// IsAuthor reports whether userID wrote the review
func (r *Review) IsAuthor(userID uuid.UUID) bool {
	return r.UserID == userID
}

// Review domain errors
var (
	ErrReviewNotFound  = shared.NewDomainError("REVIEW_NOT_FOUND", "Review not found")
	ErrDuplicateReview = shared.NewDomainError("REVIEW_ALREADY_EXISTS", "You already posted this comment on this product")
)
