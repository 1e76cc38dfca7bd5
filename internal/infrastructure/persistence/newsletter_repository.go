package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/newsletter"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements newsletter.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Create inserts a subscription. A duplicate address is skipped by the
// database and reported as shared.ErrAlreadyExists.
func (r *GormSubscriptionRepository) Create(ctx context.Context, s *newsletter.Subscription) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.SubscriptionModelFromDomain(s))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// FindByEmail finds the subscription of a normalized address
func (r *GormSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", newsletter.NormalizeEmail(email)).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists subscriptions newest first
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]newsletter.Subscription, error) {
	filter = filter.Normalize()

	var subModels []models.SubscriptionModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SubscriptionModel{}), filter).
		Order("created_at DESC").Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&subModels).Error; err != nil {
		return nil, err
	}
	subs := make([]newsletter.Subscription, len(subModels))
	for i := range subModels {
		subs[i] = *subModels[i].ToDomain()
	}
	return subs, nil
}

// Count counts subscriptions matching the filter
func (r *GormSubscriptionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SubscriptionModel{}), filter.Normalize()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSubscriptionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("email LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	return query
}

// Delete removes a subscription
func (r *GormSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SubscriptionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSubscriptionRepository implements newsletter.SubscriptionRepository
var _ newsletter.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
