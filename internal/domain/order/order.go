package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/shared"
)

// OrderItem is a purchased line with the unit price charged
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// Subtotal is unit price x quantity
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a purchase placed by a user
// It is the aggregate root of the ordering context
type Order struct {
	shared.BaseEntity
	BuyerID    uuid.UUID
	Sold       bool
	TotalPrice decimal.Decimal
	Items      []OrderItem
}

// NewOrder creates an empty order for buyerID
func NewOrder(buyerID uuid.UUID) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		BuyerID:    buyerID,
		TotalPrice: decimal.Zero,
		Items:      make([]OrderItem, 0),
	}, nil
}

// AddItem appends a line. Adding a product that is already in the order
// increases its quantity and keeps the first unit price.
func (o *Order) AddItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Quantity += quantity
			o.recalculateTotal()
			return nil
		}
	}

	o.Items = append(o.Items, OrderItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: time.Now(),
	})
	o.recalculateTotal()
	return nil
}

// Validate checks the order can be placed
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	return nil
}

// MarkSold flags the order as sold
func (o *Order) MarkSold() {
	o.Sold = true
	o.UpdatedAt = time.Now()
}

// ItemCount is the sum of quantities
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// IsVisibleTo reports whether the order may be read by userID
func (o *Order) IsVisibleTo(userID uuid.UUID, isStaff bool) bool {
	return isStaff || o.BuyerID == userID
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalPrice = total
	o.UpdatedAt = time.Now()
}

// Order domain errors
var (
	ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	ErrEmptyOrder    = shared.NewDomainError("EMPTY_ORDER", "An order needs at least one item")
)
