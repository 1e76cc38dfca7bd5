package catalog

import (
	"context"

	"github.com/google/uuid"
)

// PackFilter narrows a pack listing. Nil fields do not filter.
type PackFilter struct {
	Kind      *PackKind
	Available *bool
}

// PackRepository persists packs
type PackRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pack, error)
	// FindAll returns the matching packs ordered by name
	FindAll(ctx context.Context, filter PackFilter) ([]Pack, error)
	Save(ctx context.Context, pack *Pack) error
	Delete(ctx context.Context, id uuid.UUID) error
}
