package cart

import (
	"context"

	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/catalog"
)

// TransactionScope runs a unit of cart work atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a cart operation may
// touch. All of them share the same underlying transaction.
type TransactionalRepositories interface {
	Carts() cart.CartRepository
	Products() catalog.ProductReader
}
