package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/shared"
)

// MaxImages is the number of image slots a product has
const MaxImages = 3

// Product represents a sellable item in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseEntity
	Name        string
	Description string
	Features    []string
	CategoryIDs []uuid.UUID
	ImageKeys   [MaxImages]string // Object storage keys, empty when the slot is unused
	Price       decimal.Decimal
	OnSale      bool
	SalePrice   decimal.Decimal
	Available   bool
	InStock     bool
	Priority    int
}

// NewProduct creates a new available, in-stock product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Features:    make([]string, 0),
		CategoryIDs: make([]uuid.UUID, 0),
		Price:       price,
		SalePrice:   decimal.Zero,
		Available:   true,
		InStock:     true,
	}, nil
}

// Update updates the product's descriptive information
func (p *Product) Update(name, description string, features []string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	if features == nil {
		features = make([]string, 0)
	}
	p.Features = features
	p.touch()
	return nil
}

// SetPrice sets the regular price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price
	p.touch()
	return nil
}

// SetSale puts the product on sale at salePrice, or takes it off sale
func (p *Product) SetSale(onSale bool, salePrice decimal.Decimal) error {
	if err := validateSale(onSale, salePrice); err != nil {
		return err
	}
	p.OnSale = onSale
	p.SalePrice = salePrice
	p.touch()
	return nil
}

// SetAvailability sets the availability and stock flags
func (p *Product) SetAvailability(available, inStock bool) {
	p.Available = available
	p.InStock = inStock
	p.touch()
}

// SetPriority sets the display priority; higher comes first
func (p *Product) SetPriority(priority int) {
	p.Priority = priority
	p.touch()
}

// SetCategories replaces the product's categories
func (p *Product) SetCategories(categoryIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(categoryIDs))
	ids := make([]uuid.UUID, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	p.CategoryIDs = ids
	p.touch()
}

// SetImage stores key in the given 1-based slot and returns the key it
// replaced, if any. Passing an empty key clears the slot.
func (p *Product) SetImage(slot int, key string) (string, error) {
	if slot < 1 || slot > MaxImages {
		return "", shared.NewDomainError("INVALID_IMAGE_SLOT", "Image slot must be between 1 and 3")
	}
	previous := p.ImageKeys[slot-1]
	p.ImageKeys[slot-1] = strings.TrimSpace(key)
	p.touch()
	if previous == p.ImageKeys[slot-1] {
		return "", nil
	}
	return previous, nil
}

// ImageKeyList returns the non-empty image keys in slot order
func (p *Product) ImageKeyList() []string {
	keys := make([]string, 0, MaxImages)
	for _, key := range p.ImageKeys {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// EffectivePrice is the sale price while the product is on sale, else the regular price
func (p *Product) EffectivePrice() decimal.Decimal {
	return effectivePrice(p.Price, p.OnSale, p.SalePrice)
}

// IsPurchasable reports whether the product can be added to a cart or order
func (p *Product) IsPurchasable() bool {
	return p.Available && p.InStock
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}

func validateSale(onSale bool, salePrice decimal.Decimal) error {
	if err := validatePrice(salePrice); err != nil {
		return err
	}
	if onSale && salePrice.IsZero() {
		return shared.NewDomainError("INVALID_SALE_PRICE", "Sale price is required when on sale")
	}
	return nil
}

// effectivePrice applies a sale price only while it is positive
func effectivePrice(price decimal.Decimal, onSale bool, salePrice decimal.Decimal) decimal.Decimal {
	if onSale && salePrice.IsPositive() {
		return salePrice
	}
	return price
}
