package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/favorite"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFavoriteRepository implements favorite.FavoriteRepository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// FindByUser lists a user's favorites, newest first
func (r *GormFavoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]favorite.Favorite, error) {
	var favoriteModels []models.FavoriteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id ASC").
		Find(&favoriteModels).Error; err != nil {
		return nil, err
	}
	favorites := make([]favorite.Favorite, len(favoriteModels))
	for i := range favoriteModels {
		favorites[i] = *favoriteModels[i].ToDomain()
	}
	return favorites, nil
}

// Find finds a single favorite
func (r *GormFavoriteRepository) Find(ctx context.Context, userID, productID uuid.UUID) (*favorite.Favorite, error) {
	var model models.FavoriteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a favorite
func (r *GormFavoriteRepository) Create(ctx context.Context, f *favorite.Favorite) error {
	return translateError(r.db.WithContext(ctx).Create(models.FavoriteModelFromDomain(f)).Error)
}

// Delete removes a favorite
func (r *GormFavoriteRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.FavoriteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return favorite.ErrFavoriteNotFound
	}
	return nil
}

// Ensure GormFavoriteRepository implements favorite.FavoriteRepository
var _ favorite.FavoriteRepository = (*GormFavoriteRepository)(nil)
