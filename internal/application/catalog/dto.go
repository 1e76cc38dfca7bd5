package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Features    []string         `json:"features" binding:"omitempty,max=50,dive,max=200"`
	CategoryIDs []uuid.UUID      `json:"category_ids"`
	ImageKeys   []string         `json:"image_keys" binding:"omitempty,max=3"`
	Price       decimal.Decimal  `json:"price" binding:"required"`
	OnSale      bool             `json:"on_sale"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Available   *bool            `json:"available"`
	InStock     *bool            `json:"in_stock"`
	Priority    int              `json:"priority"`
}

// UpdateProductRequest represents a partial product update. Nil fields are
// left unchanged. ImageKeys, when present, replaces all three slots.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Features    []string         `json:"features" binding:"omitempty,max=50,dive,max=200"`
	CategoryIDs []uuid.UUID      `json:"category_ids"`
	ImageKeys   []string         `json:"image_keys" binding:"omitempty,max=3"`
	Price       *decimal.Decimal `json:"price"`
	OnSale      *bool            `json:"on_sale"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Available   *bool            `json:"available"`
	InStock     *bool            `json:"in_stock"`
	Priority    *int             `json:"priority"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Available  *bool  `form:"available"`
	InStock    *bool  `form:"in_stock"`
	OnSale     *bool  `form:"on_sale"`
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`
	Ordering   string `form:"ordering" binding:"omitempty,oneof=name -name price -price created_at -created_at priority -priority"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ErrInvalidFilter is returned for a malformed list filter value
var ErrInvalidFilter = shared.NewDomainError("INVALID_FILTER", "Invalid filter value")

// ToFilter converts the request filter into a repository filter
func (f ProductListFilter) ToFilter() (shared.Filter, error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter = filter.WithOrdering(f.Ordering)

	if f.CategoryID != "" {
		id, err := uuid.Parse(f.CategoryID)
		if err != nil {
			return shared.Filter{}, ErrInvalidFilter
		}
		filter.Filters[catalog.FilterCategoryID] = id
	}
	if f.Available != nil {
		filter.Filters[catalog.FilterAvailable] = *f.Available
	}
	if f.InStock != nil {
		filter.Filters[catalog.FilterInStock] = *f.InStock
	}
	if f.OnSale != nil {
		filter.Filters[catalog.FilterOnSale] = *f.OnSale
	}
	for key, raw := range map[string]string{
		catalog.FilterMinPrice: f.MinPrice,
		catalog.FilterMaxPrice: f.MaxPrice,
	} {
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return shared.Filter{}, ErrInvalidFilter
		}
		filter.Filters[key] = price
	}
	return filter.Normalize(), nil
}

// ProductImage is one filled image slot
type ProductImage struct {
	Slot int    `json:"slot"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Features       []string        `json:"features"`
	CategoryIDs    []uuid.UUID     `json:"category_ids"`
	Images         []ProductImage  `json:"images"`
	Price          decimal.Decimal `json:"price"`
	OnSale         bool            `json:"on_sale"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Available      bool            `json:"available"`
	InStock        bool            `json:"in_stock"`
	Priority       int             `json:"priority"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductSummary is the compact product view embedded in carts and orders
type ProductSummary struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	OnSale         bool            `json:"on_sale"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Available      bool            `json:"available"`
	InStock        bool            `json:"in_stock"`
	ImageURL       string          `json:"image_url"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(ctx context.Context, p *catalog.Product, images ImageURLResolver) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Features:       p.Features,
		CategoryIDs:    p.CategoryIDs,
		Images:         make([]ProductImage, 0, catalog.MaxImages),
		Price:          p.Price,
		OnSale:         p.OnSale,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		Available:      p.Available,
		InStock:        p.InStock,
		Priority:       p.Priority,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.Features == nil {
		resp.Features = []string{}
	}
	if resp.CategoryIDs == nil {
		resp.CategoryIDs = []uuid.UUID{}
	}
	for i, key := range p.ImageKeys {
		if key == "" {
			continue
		}
		resp.Images = append(resp.Images, ProductImage{
			Slot: i + 1,
			Key:  key,
			URL:  resolveImage(ctx, images, key),
		})
	}
	return resp
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(ctx context.Context, products []catalog.Product, images ImageURLResolver) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(ctx, &products[i], images)
	}
	return responses
}

// NewProductSummary builds the compact view; the first filled image slot is
// used as the thumbnail.
func NewProductSummary(ctx context.Context, p *catalog.Product, images ImageURLResolver) ProductSummary {
	summary := ProductSummary{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		OnSale:         p.OnSale,
		EffectivePrice: p.EffectivePrice(),
		Available:      p.Available,
		InStock:        p.InStock,
	}
	if keys := p.ImageKeyList(); len(keys) > 0 {
		summary.ImageURL = resolveImage(ctx, images, keys[0])
	}
	return summary
}

// UploadURLRequest asks for a presigned upload URL for one image slot
type UploadURLRequest struct {
	Slot        int    `json:"slot" binding:"required,min=1,max=3"`
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadURLResponse carries the presigned URL and the key to store on the product
type UploadURLResponse struct {
	Slot      int       `json:"slot"`
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	ImageKey    string `json:"image_key" binding:"max=255"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ImageKey    *string `json:"image_key" binding:"omitempty,max=255"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(ctx context.Context, c *catalog.Category, images ImageURLResolver) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    resolveImage(ctx, images, c.ImageKey),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CreatePackRequest represents a request to create a service pack
type CreatePackRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=100"`
	Kind          string           `json:"kind" binding:"omitempty,oneof=meal_plan sport shakes food"`
	Audience      string           `json:"audience" binding:"max=300"`
	Details       []string         `json:"details" binding:"omitempty,max=50,dive,max=300"`
	ImageKey      string           `json:"image_key" binding:"max=255"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	OnSale        bool             `json:"on_sale"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Duration      string           `json:"duration" binding:"max=30"`
	SessionLength string           `json:"session_length" binding:"max=30"`
	Available     *bool            `json:"available"`
}

// UpdatePackRequest represents a partial pack update. Details, when
// present, replaces the whole list.
type UpdatePackRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Kind          *string          `json:"kind" binding:"omitempty,oneof=meal_plan sport shakes food"`
	Audience      *string          `json:"audience" binding:"omitempty,max=300"`
	Details       []string         `json:"details" binding:"omitempty,max=50,dive,max=300"`
	ImageKey      *string          `json:"image_key" binding:"omitempty,max=255"`
	Price         *decimal.Decimal `json:"price"`
	OnSale        *bool            `json:"on_sale"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Duration      *string          `json:"duration" binding:"omitempty,max=30"`
	SessionLength *string          `json:"session_length" binding:"omitempty,max=30"`
	Available     *bool            `json:"available"`
}

// PackListFilter represents filter options for the pack list
type PackListFilter struct {
	Kind      string `form:"kind" binding:"omitempty,oneof=meal_plan sport shakes food"`
	Available *bool  `form:"available"`
}

// ToFilter converts the request filter into a repository filter
func (f PackListFilter) ToFilter() (catalog.PackFilter, error) {
	var filter catalog.PackFilter
	if f.Kind != "" {
		kind := catalog.PackKind(f.Kind)
		if !kind.IsValid() {
			return filter, ErrInvalidFilter
		}
		filter.Kind = &kind
	}
	filter.Available = f.Available
	return filter, nil
}

// PackResponse represents a service pack in API responses
type PackResponse struct {
	ID             uuid.UUID       `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Audience       string          `json:"audience"`
	Details        []string        `json:"details"`
	ImageURL       string          `json:"image_url"`
	Price          decimal.Decimal `json:"price"`
	OnSale         bool            `json:"on_sale"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Duration       string          `json:"duration"`
	SessionLength  string          `json:"session_length"`
	Available      bool            `json:"available"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToPackResponse converts a domain Pack to PackResponse
func ToPackResponse(ctx context.Context, p *catalog.Pack, images ImageURLResolver) PackResponse {
	resp := PackResponse{
		ID:             p.ID,
		Kind:           string(p.Kind),
		Name:           p.Name,
		Audience:       p.Audience,
		Details:        p.Details,
		ImageURL:       resolveImage(ctx, images, p.ImageKey),
		Price:          p.Price,
		OnSale:         p.OnSale,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		Duration:       p.Duration,
		SessionLength:  p.SessionLength,
		Available:      p.Available,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.Details == nil {
		resp.Details = []string{}
	}
	return resp
}
