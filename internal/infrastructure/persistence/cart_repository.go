package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// FindByID finds a cart by its ID
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserID finds the cart owned by userID, locking the cart row on
// postgres like FindAnonymousBySessionKey does
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	if err := r.forUpdate(r.withItems(ctx)).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAnonymousBySessionKey finds an ownerless cart with exactly this
// session key, locking the cart row on postgres. Items are preloaded after
// the lock is granted, so a merge always sees the committed lines.
func (r *GormCartRepository) FindAnonymousBySessionKey(ctx context.Context, sessionKey string) (*cart.Cart, error) {
	if sessionKey == "" || len(sessionKey) > cart.MaxSessionKeyLength {
		return nil, shared.ErrNotFound
	}
	var model models.CartModel
	if err := r.forUpdate(r.withItems(ctx)).
		Where("session_key = ? AND user_id IS NULL", sessionKey).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new cart row. A conflicting user_id or session_key is
// skipped by the database rather than raised, so an open transaction stays
// usable and the caller can re-read the winning row.
func (r *GormCartRepository) Create(ctx context.Context, c *cart.Cart) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(models.CartModelFromDomain(c))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// Save updates the cart row (owner, session key, timestamps), not its items
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"user_id":     c.UserID,
			"session_key": c.SessionKey,
			"updated_at":  c.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a cart and any remaining lines
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DeleteItems(ctx, id); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.CartModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindItemForUpdate finds the line for productID and locks it until the
// surrounding transaction ends.
func (r *GormCartRepository) FindItemForUpdate(ctx context.Context, cartID, productID uuid.UUID) (*cart.CartItem, error) {
	var model models.CartItemModel
	err := r.forUpdate(r.db.WithContext(ctx)).Where("cart_id = ? AND product_id = ?", cartID, productID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// forUpdate adds a row lock on postgres. sqlite serializes writers on its
// own and does not support FOR UPDATE.
func (r *GormCartRepository) forUpdate(query *gorm.DB) *gorm.DB {
	if query.Dialector.Name() == DialectPostgres {
		return query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return query
}

// CreateItem inserts a new line. A concurrent insert of the same
// (cart, product) pair is reported as shared.ErrAlreadyExists without
// aborting the transaction.
func (r *GormCartRepository) CreateItem(ctx context.Context, item *cart.CartItem) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.CartItemModelFromDomain(item))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// SaveItem updates quantity and cart reference of an existing line.
// The price snapshot is never written after creation.
func (r *GormCartRepository) SaveItem(ctx context.Context, item *cart.CartItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"cart_id":    item.CartID,
			"quantity":   item.Quantity,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// DeleteItem deletes a single line
func (r *GormCartRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// DeleteItems deletes every line of a cart
func (r *GormCartRepository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItemModel{}).Error
}

// Ensure GormCartRepository implements cart.CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)
