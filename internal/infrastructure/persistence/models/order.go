package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	BaseModel
	BuyerID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Sold       bool             `gorm:"not null;default:false"`
	TotalPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model and its items to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity: m.BaseModel.ToDomain(),
		BuyerID:    m.BuyerID,
		Sold:       m.Sold,
		TotalPrice: m.TotalPrice,
		Items:      make([]order.OrderItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
	return o
}

// OrderModelFromDomain creates a persistence model, items included
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		BuyerID:    o.BuyerID,
		Sold:       o.Sold,
		TotalPrice: o.TotalPrice,
		Items:      make([]OrderItemModel, 0, len(o.Items)),
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:        item.ID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
	return m
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}
