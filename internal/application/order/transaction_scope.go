package order

import (
	"context"

	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/order"
)

// TransactionScope runs order placement atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories used while placing an
// order. Checkout reads and empties the cart in the same transaction.
type TransactionalRepositories interface {
	Orders() order.OrderRepository
	Carts() cart.CartRepository
	Products() catalog.ProductReader
}
