package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductServiceConfig holds configuration for image uploads
type ProductServiceConfig struct {
	// KeyPrefix is prepended to every generated storage key
	KeyPrefix string
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
}

// DefaultProductServiceConfig returns the default configuration
func DefaultProductServiceConfig() ProductServiceConfig {
	return ProductServiceConfig{
		KeyPrefix:       "media",
		UploadURLExpiry: 15 * time.Minute,
	}
}

// allowedImageTypes maps accepted upload content types to file extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Errors specific to product management
var (
	ErrInvalidCategory      = shared.NewDomainError("INVALID_CATEGORY", "Category not found")
	ErrInvalidContentType   = shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, WebP and GIF images can be uploaded")
	ErrStorageUnavailable   = shared.NewDomainError("STORAGE_UNAVAILABLE", "Object storage is not configured")
	ErrUploadURLUnavailable = shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
)

// ProductService handles product-related business operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	images     ImageURLResolver
	storage    ObjectStorage
	config     ProductServiceConfig
}

// NewProductService creates a new ProductService. storage may be nil when
// object storage is disabled; uploads then fail and cleanup is skipped.
func NewProductService(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	images ImageURLResolver,
	storage ObjectStorage,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		storage:    storage,
		config:     DefaultProductServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *ProductService) SetConfig(config ProductServiceConfig) {
	s.config = config
}

// List returns a page of products. Callers that are not staff only see
// available products unless they filter on availability explicitly.
func (s *ProductService) List(ctx context.Context, f ProductListFilter, isStaff bool) (*shared.Paginated[ProductResponse], error) {
	filter, err := f.ToFilter()
	if err != nil {
		return nil, err
	}
	if !isStaff && f.Available == nil {
		filter.Filters[catalog.FilterAvailable] = true
	}

	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToProductResponses(ctx, products, s.images), total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetByID returns a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(ctx, product, s.images)
	return &resp, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.Features); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}
	product.SetCategories(req.CategoryIDs)

	if req.OnSale || req.SalePrice != nil {
		salePrice := product.SalePrice
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := product.SetSale(req.OnSale, salePrice); err != nil {
			return nil, err
		}
	}

	available, inStock := true, true
	if req.Available != nil {
		available = *req.Available
	}
	if req.InStock != nil {
		inStock = *req.InStock
	}
	product.SetAvailability(available, inStock)
	product.SetPriority(req.Priority)

	if _, err := setImages(product, req.ImageKeys); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	resp := ToProductResponse(ctx, product, s.images)
	return &resp, nil
}

// Update applies a partial update. Image keys that were replaced are deleted
// from storage once the update has been saved.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, features := product.Name, product.Description, product.Features
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Features != nil {
		features = req.Features
	}
	if err := product.Update(name, description, features); err != nil {
		return nil, err
	}

	if req.CategoryIDs != nil {
		if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
			return nil, err
		}
		product.SetCategories(req.CategoryIDs)
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.OnSale != nil || req.SalePrice != nil {
		onSale, salePrice := product.OnSale, product.SalePrice
		if req.OnSale != nil {
			onSale = *req.OnSale
		}
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := product.SetSale(onSale, salePrice); err != nil {
			return nil, err
		}
	}
	if req.Available != nil || req.InStock != nil {
		available, inStock := product.Available, product.InStock
		if req.Available != nil {
			available = *req.Available
		}
		if req.InStock != nil {
			inStock = *req.InStock
		}
		product.SetAvailability(available, inStock)
	}
	if req.Priority != nil {
		product.SetPriority(*req.Priority)
	}

	var replaced []string
	if req.ImageKeys != nil {
		if replaced, err = setImages(product, req.ImageKeys); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	deleteObjects(ctx, s.storage, replaced)

	resp := ToProductResponse(ctx, product, s.images)
	return &resp, nil
}

// Delete deletes a product and afterwards removes its images from storage
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if shared.IsNotFound(err) {
			return catalog.ErrProductNotFound
		}
		return err
	}
	logger.L(ctx).Info("Product deleted", zap.String("product_id", id.String()))
	deleteObjects(ctx, s.storage, product.ImageKeyList())
	return nil
}

// CreateUploadURL returns a presigned URL for uploading an image into a
// slot of the product. The returned key is stored on the product by a
// subsequent update.
func (s *ProductService) CreateUploadURL(ctx context.Context, id uuid.UUID, req UploadURLRequest) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := allowedImageTypes[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, ErrInvalidContentType
	}
	if req.Slot < 1 || req.Slot > catalog.MaxImages {
		return nil, shared.NewDomainError("INVALID_IMAGE_SLOT", "Image slot must be between 1 and 3")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	key := path.Join(s.config.KeyPrefix, "products", id.String(), uuid.NewString()+ext)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, strings.ToLower(req.ContentType), s.config.UploadURLExpiry)
	if err != nil {
		logger.L(ctx).Error("Failed to generate upload URL",
			zap.String("storage_key", key),
			zap.Error(err))
		return nil, ErrUploadURLUnavailable
	}

	return &UploadURLResponse{
		Slot:      req.Slot,
		Key:       key,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) checkCategories(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			if shared.IsNotFound(err) {
				return shared.WrapDomainError(ErrInvalidCategory.Code,
					fmt.Sprintf("Category %s not found", id), err)
			}
			return err
		}
	}
	return nil
}

// setImages fills the slots in order and clears the rest. It returns the
// keys that are no longer referenced.
func setImages(product *catalog.Product, keys []string) ([]string, error) {
	if len(keys) > catalog.MaxImages {
		return nil, shared.NewDomainError("INVALID_IMAGE_SLOT", "A product has at most 3 images")
	}
	kept := make(map[string]bool, len(keys))
	for _, key := range keys {
		kept[strings.TrimSpace(key)] = true
	}

	var replaced []string
	for slot := 1; slot <= catalog.MaxImages; slot++ {
		key := ""
		if slot <= len(keys) {
			key = keys[slot-1]
		}
		previous, err := product.SetImage(slot, key)
		if err != nil {
			return nil, err
		}
		if previous != "" && !kept[previous] {
			replaced = append(replaced, previous)
		}
	}
	return replaced, nil
}
