package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// FindAll returns every category ordered by name
	FindAll(ctx context.Context) ([]Category, error)
	// ExistsByName reports whether a category other than excludeID
	// already uses name
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	// Delete removes the category; its products become uncategorized
	Delete(ctx context.Context, id uuid.UUID) error
}
