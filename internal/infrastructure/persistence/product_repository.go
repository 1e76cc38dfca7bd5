package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CategoryLinks").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CategoryLinks").Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// FindAll finds products matching the filter, paginated
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	filter = filter.Normalize()

	var productModels []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir).Order("id ASC")

	if err := query.Preload("CategoryLinks").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// Count counts products matching the filter, ignoring pagination
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter.Normalize())
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product and replaces its category links
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ProductModelFromDomain(product)
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductCategoryModel{}).Error; err != nil {
			return err
		}
		if len(product.CategoryIDs) == 0 {
			return nil
		}
		links := make([]models.ProductCategoryModel, 0, len(product.CategoryIDs))
		for _, categoryID := range product.CategoryIDs {
			links = append(links, models.ProductCategoryModel{ProductID: product.ID, CategoryID: categoryID})
		}
		return tx.Create(&links).Error
	})
}

// Delete deletes a product with its category links
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductCategoryModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter criteria to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		prefix := escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", prefix, prefix)
	}

	if v, ok := filter.Filters[catalog.FilterCategoryID].(uuid.UUID); ok {
		query = query.Where("id IN (?)",
			r.db.Model(&models.ProductCategoryModel{}).Select("product_id").Where("category_id = ?", v))
	}
	if v, ok := filter.Filters[catalog.FilterAvailable].(bool); ok {
		query = query.Where("available = ?", v)
	}
	if v, ok := filter.Filters[catalog.FilterInStock].(bool); ok {
		query = query.Where("in_stock = ?", v)
	}
	if v, ok := filter.Filters[catalog.FilterOnSale].(bool); ok {
		query = query.Where("on_sale = ?", v)
	}
	if v, ok := filter.Filters[catalog.FilterMinPrice].(decimal.Decimal); ok {
		query = query.Where("price >= ?", v)
	}
	if v, ok := filter.Filters[catalog.FilterMaxPrice].(decimal.Decimal); ok {
		query = query.Where("price <= ?", v)
	}

	return query
}

func toDomainProducts(productModels []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
