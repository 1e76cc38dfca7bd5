package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/review"
	"github.com/velux/backend/internal/domain/shared"
)

// Viewer is the caller reading or changing reviews. The zero value is an
// anonymous caller.
type Viewer struct {
	UserID  uuid.UUID
	IsStaff bool
}

// CreateReviewRequest posts a review as the caller
type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Comment   string    `json:"comment" binding:"required,max=2000"`
	Rating    int       `json:"rating" binding:"omitempty,min=1,max=5"`
}

// UpdateReviewRequest partially updates a review. Only staff may change
// visibility.
type UpdateReviewRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Visible *bool   `json:"visible"`
}

// ReviewListFilter represents filter options for review list
type ReviewListFilter struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	Rating    int    `form:"rating" binding:"omitempty,min=1,max=5"`
	Ordering  string `form:"ordering" binding:"omitempty,oneof=created_at -created_at rating -rating"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the request filter into a repository filter
func (f ReviewListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter = filter.WithOrdering(f.Ordering)

	if id, err := uuid.Parse(f.ProductID); err == nil {
		filter.Filters[review.FilterProductID] = id
	}
	if id, err := uuid.Parse(f.UserID); err == nil {
		filter.Filters[review.FilterUserID] = id
	}
	if f.Rating > 0 {
		filter.Filters[review.FilterRating] = f.Rating
	}
	return filter.Normalize()
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}

// ToReviewResponse converts a domain Review to ReviewResponse
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		Visible:   r.Visible,
		CreatedAt: r.CreatedAt,
	}
}
