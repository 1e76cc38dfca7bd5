package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/favorite"
	"github.com/velux/backend/internal/domain/shared"
)

// AddFavoriteRequest marks a product as favorite
type AddFavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// FavoriteResponse represents a favorite in API responses
type FavoriteResponse struct {
	ID        uuid.UUID                  `json:"id"`
	ProductID uuid.UUID                  `json:"product_id"`
	Product   *appcatalog.ProductSummary `json:"product,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Service manages a user's favorite products
type Service struct {
	favorites favorite.FavoriteRepository
	products  catalog.ProductReader
	images    appcatalog.ImageURLResolver
}

// NewService creates a new favorite Service
func NewService(favorites favorite.FavoriteRepository, products catalog.ProductReader, images appcatalog.ImageURLResolver) *Service {
	return &Service{favorites: favorites, products: products, images: images}
}

// List returns the user's favorites, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]FavoriteResponse, error) {
	favorites, err := s.favorites.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	out := make([]FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		out = append(out, s.toResponse(ctx, &favorites[i], byID[favorites[i].ProductID]))
	}
	return out, nil
}

// Add marks a product as favorite. Adding it again returns the existing
// favorite with created=false.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, req AddFavoriteRequest) (resp *FavoriteResponse, created bool, err error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, false, catalog.ErrProductNotFound
		}
		return nil, false, err
	}

	f, err := favorite.NewFavorite(userID, req.ProductID)
	if err != nil {
		return nil, false, err
	}
	err = s.favorites.Create(ctx, f)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, shared.ErrAlreadyExists):
		if f, err = s.favorites.Find(ctx, userID, req.ProductID); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, err
	}

	out := s.toResponse(ctx, f, product)
	return &out, created, nil
}

// Remove unmarks a product. A product that is not a favorite is reported
// as not found.
func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favorites.Delete(ctx, userID, productID)
}

func (s *Service) toResponse(ctx context.Context, f *favorite.Favorite, p *catalog.Product) FavoriteResponse {
	resp := FavoriteResponse{
		ID:        f.ID,
		ProductID: f.ProductID,
		CreatedAt: f.CreatedAt,
	}
	if p != nil {
		summary := appcatalog.NewProductSummary(ctx, p, s.images)
		resp.Product = &summary
	}
	return resp
}
