package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

// Recognised keys of shared.Filter.Filters for product listing
const (
	FilterCategoryID = "category_id"
	FilterAvailable  = "available"
	FilterInStock    = "in_stock"
	FilterOnSale     = "on_sale"
	FilterMinPrice   = "min_price"
	FilterMaxPrice   = "max_price"
)

// ProductReader is the read-only view of the catalog used by other contexts
type ProductReader interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	ProductReader

	// FindAll finds products matching the filter, paginated
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product together with its category links
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
