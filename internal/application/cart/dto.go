package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/velux/backend/internal/application/catalog"
)

// AddItemRequest represents a request to add a product to the cart. The
// quantity bounds mirror cart.MaxQuantity.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"omitempty,min=1,max=2147483647"`
}

// UpdateItemRequest represents a request to overwrite a line quantity.
// A quantity of zero removes the line.
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"required,min=0,max=2147483647"`
}

// RemoveItemRequest represents a request to remove a product from the cart
type RemoveItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// CartItemResponse represents a cart line in API responses
type CartItemResponse struct {
	ID              uuid.UUID                  `json:"id"`
	Product         *appcatalog.ProductSummary `json:"product"`
	Quantity        int                        `json:"quantity"`
	PriceAtAddition decimal.Decimal            `json:"price_at_addition"`
	Subtotal        decimal.Decimal            `json:"subtotal"`
}

// CartResponse represents the current cart state in API responses
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	UserID     *uuid.UUID         `json:"user_id,omitempty"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Result is what every cart operation returns: the cart state and the
// session key the transport must hand back to an anonymous client.
type Result struct {
	Cart       CartResponse
	SessionKey string
}
