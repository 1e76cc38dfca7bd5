package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/identity"
	"github.com/velux/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ProductOption customizes a seeded product
type ProductOption func(p *catalog.Product)

// OnSale puts the seeded product on sale at price
func OnSale(price string) ProductOption {
	return func(p *catalog.Product) {
		if err := p.SetSale(true, decimal.RequireFromString(price)); err != nil {
			panic(err)
		}
	}
}

// Unavailable marks the seeded product as not available
func Unavailable() ProductOption {
	return func(p *catalog.Product) { p.SetAvailability(false, p.InStock) }
}

// OutOfStock marks the seeded product as out of stock
func OutOfStock() ProductOption {
	return func(p *catalog.Product) { p.SetAvailability(p.Available, false) }
}

// WithImage stores key in the first image slot
func WithImage(key string) ProductOption {
	return func(p *catalog.Product) { _, _ = p.SetImage(1, key) }
}

// SeedProduct inserts an available, in-stock product
func SeedProduct(t *testing.T, db *gorm.DB, name, price string, opts ...ProductOption) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(name, decimal.RequireFromString(price))
	require.NoError(t, err)
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(models.ProductModelFromDomain(p)).Error, "Failed to seed product")
	return p
}

// SeedCategory inserts a category
func SeedCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()

	c, err := catalog.NewCategory(name, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CategoryModelFromDomain(c)).Error, "Failed to seed category")
	return c
}

// SeedUser inserts an active user with password "password123"
func SeedUser(t *testing.T, db *gorm.DB, username string, staff bool) *identity.User {
	t.Helper()

	u, err := identity.NewUser(username, username+"@example.com", "password123")
	require.NoError(t, err)
	if staff {
		u.PromoteToStaff()
	}
	require.NoError(t, db.Create(models.UserModelFromDomain(u)).Error, "Failed to seed user")
	return u
}
