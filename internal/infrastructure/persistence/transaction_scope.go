package persistence

import (
	"context"

	appcart "github.com/velux/backend/internal/application/cart"
	apporder "github.com/velux/backend/internal/application/order"
	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormCartTransactionScope runs cart resolution and ledger operations in a
// single database transaction.
type GormCartTransactionScope struct {
	db *gorm.DB
}

// NewGormCartTransactionScope creates a new GormCartTransactionScope
func NewGormCartTransactionScope(db *gorm.DB) *GormCartTransactionScope {
	return &GormCartTransactionScope{db: db}
}

// Execute runs fn within a transaction. A returned error rolls back every
// write made through repos; otherwise the transaction commits.
func (s *GormCartTransactionScope) Execute(ctx context.Context, fn func(repos appcart.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormOrderTransactionScope places orders (and empties the checked-out
// cart) in a single database transaction.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs fn within a transaction
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Carts returns the cart repository scoped to the current transaction
func (r *gormTransactionalRepositories) Carts() cart.CartRepository {
	return NewGormCartRepository(r.tx)
}

// Products returns the product reader scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductReader {
	return NewGormProductRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var (
	_ appcart.TransactionScope           = (*GormCartTransactionScope)(nil)
	_ apporder.TransactionScope          = (*GormOrderTransactionScope)(nil)
	_ appcart.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
