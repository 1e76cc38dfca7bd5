package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

// FilterBuyerID restricts order listings to one buyer
const FilterBuyerID = "buyer_id"

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders with their items
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts an order and all of its items
	Create(ctx context.Context, order *Order) error
}
