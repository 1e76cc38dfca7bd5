package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/cart"
)

// CartModel is the persistence model for the Cart aggregate.
// NULLs are distinct in both unique indexes, so any number of user carts
// may have no session key and any number of guest carts no user.
type CartModel struct {
	BaseModel
	UserID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_carts_user_id"`
	SessionKey *string         `gorm:"type:varchar(40);uniqueIndex:idx_carts_session_key"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the model and any loaded items to a domain Cart
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		SessionKey: m.SessionKey,
		Items:      make([]cart.CartItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		c.Items = append(c.Items, *m.Items[i].ToDomain())
	}
	return c
}

// CartModelFromDomain creates the cart row model. Items are persisted separately.
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{
		UserID:     c.UserID,
		SessionKey: c.SessionKey,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// CartItemModel is the persistence model for a cart line
type CartItemModel struct {
	BaseModel
	CartID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:2;index"`
	Quantity        int             `gorm:"not null"`
	PriceAtAddition decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the model to a domain CartItem
func (m *CartItemModel) ToDomain() *cart.CartItem {
	return &cart.CartItem{
		BaseEntity:      m.BaseModel.ToDomain(),
		CartID:          m.CartID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		PriceAtAddition: m.PriceAtAddition,
	}
}

// CartItemModelFromDomain creates a model from a domain CartItem
func CartItemModelFromDomain(i *cart.CartItem) *CartItemModel {
	m := &CartItemModel{
		CartID:          i.CartID,
		ProductID:       i.ProductID,
		Quantity:        i.Quantity,
		PriceAtAddition: i.PriceAtAddition,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}
