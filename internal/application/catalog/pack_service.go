package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PackService manages the service packs shown beside the product catalog
type PackService struct {
	packs   catalog.PackRepository
	images  ImageURLResolver
	storage ObjectStorage
}

// NewPackService creates a new PackService
func NewPackService(packs catalog.PackRepository, images ImageURLResolver, storage ObjectStorage) *PackService {
	return &PackService{
		packs:   packs,
		images:  images,
		storage: storage,
	}
}

// List returns the packs matching f ordered by name. Only staff may see
// hidden packs; for everyone else the available filter is forced on.
func (s *PackService) List(ctx context.Context, f PackListFilter, isStaff bool) ([]PackResponse, error) {
	filter, err := f.ToFilter()
	if err != nil {
		return nil, err
	}
	if !isStaff {
		visible := true
		filter.Available = &visible
	}
	packs, err := s.packs.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PackResponse, len(packs))
	for i := range packs {
		responses[i] = ToPackResponse(ctx, &packs[i], s.images)
	}
	return responses, nil
}

// GetByID returns a pack. Hidden packs are reported as missing to non-staff.
func (s *PackService) GetByID(ctx context.Context, id uuid.UUID, isStaff bool) (*PackResponse, error) {
	pack, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pack.Available && !isStaff {
		return nil, catalog.ErrPackNotFound
	}
	resp := ToPackResponse(ctx, pack, s.images)
	return &resp, nil
}

// Create creates a new pack
func (s *PackService) Create(ctx context.Context, req CreatePackRequest) (*PackResponse, error) {
	pack, err := catalog.NewPack(req.Name, catalog.PackKind(req.Kind), req.Price)
	if err != nil {
		return nil, err
	}
	if err := pack.Describe(req.Name, req.Audience, req.Duration, req.SessionLength, req.Details); err != nil {
		return nil, err
	}
	if req.OnSale || req.SalePrice != nil {
		salePrice := pack.SalePrice
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := pack.SetSale(req.OnSale, salePrice); err != nil {
			return nil, err
		}
	}
	if req.Available != nil {
		pack.SetAvailable(*req.Available)
	}
	pack.SetImage(req.ImageKey)

	if err := s.packs.Save(ctx, pack); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Pack created", zap.String("pack_id", pack.ID.String()), zap.String("kind", string(pack.Kind)))
	resp := ToPackResponse(ctx, pack, s.images)
	return &resp, nil
}

// Update applies a partial update to a pack
func (s *PackService) Update(ctx context.Context, id uuid.UUID, req UpdatePackRequest) (*PackResponse, error) {
	pack, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	name, audience, duration, session, details := pack.Name, pack.Audience, pack.Duration, pack.SessionLength, pack.Details
	if req.Name != nil {
		name = *req.Name
	}
	if req.Audience != nil {
		audience = *req.Audience
	}
	if req.Duration != nil {
		duration = *req.Duration
	}
	if req.SessionLength != nil {
		session = *req.SessionLength
	}
	if req.Details != nil {
		details = req.Details
	}
	if err := pack.Describe(name, audience, duration, session, details); err != nil {
		return nil, err
	}
	if req.Kind != nil {
		if err := pack.SetKind(catalog.PackKind(*req.Kind)); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := pack.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.OnSale != nil || req.SalePrice != nil {
		onSale, salePrice := pack.OnSale, pack.SalePrice
		if req.OnSale != nil {
			onSale = *req.OnSale
		}
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := pack.SetSale(onSale, salePrice); err != nil {
			return nil, err
		}
	}
	if req.Available != nil {
		pack.SetAvailable(*req.Available)
	}
	var replaced string
	if req.ImageKey != nil {
		replaced = pack.SetImage(*req.ImageKey)
	}

	if err := s.packs.Save(ctx, pack); err != nil {
		return nil, err
	}
	deleteObjects(ctx, s.storage, []string{replaced})

	resp := ToPackResponse(ctx, pack, s.images)
	return &resp, nil
}

// Delete deletes a pack and its cover image
func (s *PackService) Delete(ctx context.Context, id uuid.UUID) error {
	pack, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.packs.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return catalog.ErrPackNotFound
		}
		return err
	}
	deleteObjects(ctx, s.storage, []string{pack.ImageKey})
	return nil
}

func (s *PackService) find(ctx context.Context, id uuid.UUID) (*catalog.Pack, error) {
	pack, err := s.packs.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, catalog.ErrPackNotFound
		}
		return nil, err
	}
	return pack, nil
}
