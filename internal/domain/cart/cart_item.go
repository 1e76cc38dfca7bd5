package cart

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/shared"
)

// MaxQuantity is the largest quantity a single line may hold. It matches the
// range of the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

// CartItem is a line of a cart. PriceAtAddition is captured when the line is
// created and never changes afterwards.
type CartItem struct {
	shared.BaseEntity
	CartID          uuid.UUID
	ProductID       uuid.UUID
	Quantity        int
	PriceAtAddition decimal.Decimal
}

// NewCartItem creates a line snapshotting the product's current price
func NewCartItem(cartID, productID uuid.UUID, quantity int, price decimal.Decimal) (*CartItem, error) {
	if cartID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CART", "Cart ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &CartItem{
		BaseEntity:      shared.NewBaseEntity(),
		CartID:          cartID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtAddition: price,
	}, nil
}

// Increase adds quantity to the line. The sum may not exceed MaxQuantity.
func (i *CartItem) Increase(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if i.Quantity > MaxQuantity-quantity {
		return ErrQuantityLimit
	}
	i.Quantity += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// SetQuantity overwrites the line quantity. Zero is not accepted here; the
// caller removes the line instead.
func (i *CartItem) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// MoveTo reassigns the line to another cart, keeping quantity and price snapshot
func (i *CartItem) MoveTo(cartID uuid.UUID) {
	i.CartID = cartID
	i.UpdatedAt = time.Now()
}

// Subtotal is price_at_addition x quantity
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.PriceAtAddition.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// absorb adds a guest line's quantity, saturating at MaxQuantity so that a
// merge never fails on an oversized sum
func (i *CartItem) absorb(quantity int) {
	if quantity < 1 {
		return
	}
	if i.Quantity > MaxQuantity-quantity {
		i.Quantity = MaxQuantity
	} else {
		i.Quantity += quantity
	}
	i.UpdatedAt = time.Now()
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return ErrQuantityLimit
	}
	return nil
}
