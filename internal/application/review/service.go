package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/review"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrNotAuthor is returned when a caller changes a review they did not write
var ErrNotAuthor = shared.NewDomainError("FORBIDDEN", "Only the author or staff may change this review")

// Service manages product reviews
type Service struct {
	reviews  review.ReviewRepository
	products catalog.ProductReader
}

// NewService creates a new review Service
func NewService(reviews review.ReviewRepository, products catalog.ProductReader) *Service {
	return &Service{reviews: reviews, products: products}
}

// List returns reviews matching the filter. Hidden reviews are listed for
// staff only.
func (s *Service) List(ctx context.Context, viewer Viewer, f ReviewListFilter) (*shared.Paginated[ReviewResponse], error) {
	filter := f.ToFilter()
	if !viewer.IsStaff {
		filter.Filters[review.FilterVisibleOnly] = true
	}

	reviews, err := s.reviews.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.reviews.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToReviewResponse(&reviews[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetByID returns a review. A hidden review is visible to its author and
// staff only.
func (s *Service) GetByID(ctx context.Context, viewer Viewer, id uuid.UUID) (*ReviewResponse, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Visible && !viewer.IsStaff && !r.IsAuthor(viewer.UserID) {
		return nil, review.ErrReviewNotFound
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Create posts a review authored by the caller
func (s *Service) Create(ctx context.Context, viewer Viewer, req CreateReviewRequest) (*ReviewResponse, error) {
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		if shared.IsNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}

	r, err := review.NewReview(req.ProductID, viewer.UserID, req.Comment, req.Rating)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Review created",
		zap.String("review_id", r.ID.String()),
		zap.String("product_id", r.ProductID.String()))
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Update edits a review. Only its author or staff may do so.
func (s *Service) Update(ctx context.Context, viewer Viewer, id uuid.UUID, req UpdateReviewRequest) (*ReviewResponse, error) {
	r, err := s.findEditable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Comment != nil || req.Rating != nil {
		comment, rating := r.Comment, r.Rating
		if req.Comment != nil {
			comment = *req.Comment
		}
		if req.Rating != nil {
			rating = *req.Rating
		}
		if err := r.Edit(comment, rating); err != nil {
			return nil, err
		}
	}
	if req.Visible != nil {
		if !viewer.IsStaff {
			return nil, ErrNotAuthor
		}
		r.SetVisible(*req.Visible)
	}

	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Delete removes a review. Only its author or staff may do so.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	if _, err := s.findEditable(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return review.ErrReviewNotFound
		}
		return err
	}
	logger.L(ctx).Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

func (s *Service) findEditable(ctx context.Context, viewer Viewer, id uuid.UUID) (*review.Review, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsStaff && !r.IsAuthor(viewer.UserID) {
		return nil, ErrNotAuthor
	}
	return r, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, review.ErrReviewNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) save(ctx context.Context, r *review.Review) error {
	if err := s.reviews.Save(ctx, r); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return review.ErrDuplicateReview
		}
		return err
	}
	return nil
}
