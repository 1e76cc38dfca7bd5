package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/review"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists reviews matching the filter, paginated
func (r *GormReviewRepository) FindAll(ctx context.Context, filter shared.Filter) ([]review.Review, error) {
	filter = filter.Normalize()

	orderBy := ValidateSortField(filter.OrderBy, ReviewSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var reviewModels []models.ReviewModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReviewModel{}), filter).
		Order(orderBy + " " + orderDir).Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&reviewModels).Error; err != nil {
		return nil, err
	}

	reviews := make([]review.Review, len(reviewModels))
	for i := range reviewModels {
		reviews[i] = *reviewModels[i].ToDomain()
	}
	return reviews, nil
}

// Count counts reviews matching the filter
func (r *GormReviewRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReviewModel{}), filter.Normalize()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	return translateError(r.db.WithContext(ctx).Save(models.ReviewModelFromDomain(rv)).Error)
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormReviewRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters[review.FilterProductID].(uuid.UUID); ok {
		query = query.Where("product_id = ?", v)
	}
	if v, ok := filter.Filters[review.FilterUserID].(uuid.UUID); ok {
		query = query.Where("user_id = ?", v)
	}
	if v, ok := filter.Filters[review.FilterRating].(int); ok {
		query = query.Where("rating = ?", v)
	}
	if v, ok := filter.Filters[review.FilterVisibleOnly].(bool); ok && v {
		query = query.Where("visible = ?", true)
	}
	return query
}

// Ensure GormReviewRepository implements review.ReviewRepository
var _ review.ReviewRepository = (*GormReviewRepository)(nil)
