package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPackRepository implements catalog.PackRepository using GORM
type GormPackRepository struct {
	db *gorm.DB
}

// NewGormPackRepository creates a new GormPackRepository
func NewGormPackRepository(db *gorm.DB) *GormPackRepository {
	return &GormPackRepository{db: db}
}

// FindByID finds a pack by its ID
func (r *GormPackRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Pack, error) {
	var model models.PackModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the packs matching filter ordered by name
func (r *GormPackRepository) FindAll(ctx context.Context, filter catalog.PackFilter) ([]catalog.Pack, error) {
	query := r.db.WithContext(ctx).Model(&models.PackModel{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	var packModels []models.PackModel
	if err := query.Order("name ASC, id ASC").Find(&packModels).Error; err != nil {
		return nil, err
	}
	packs := make([]catalog.Pack, len(packModels))
	for i := range packModels {
		packs[i] = *packModels[i].ToDomain()
	}
	return packs, nil
}

// Save creates or updates a pack
func (r *GormPackRepository) Save(ctx context.Context, pack *catalog.Pack) error {
	return translateError(r.db.WithContext(ctx).Save(models.PackModelFromDomain(pack)).Error)
}

// Delete deletes a pack
func (r *GormPackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PackModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPackRepository implements catalog.PackRepository
var _ catalog.PackRepository = (*GormPackRepository)(nil)
