package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/order"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders with their items
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	filter = filter.Normalize()

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var orderModels []models.OrderModel
	if err := r.applyFilter(r.withItems(ctx).Model(&models.OrderModel{}), filter).
		Order(orderBy + " " + orderDir).Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter.Normalize()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts an order and all of its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return translateError(r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error)
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters[order.FilterBuyerID].(uuid.UUID); ok {
		query = query.Where("buyer_id = ?", v)
	}
	return query
}

// Ensure GormOrderRepository implements order.OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
