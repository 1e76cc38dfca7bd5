package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/shared"
)

// PackKind is the line a service pack belongs to
type PackKind string

const (
	PackKindMealPlan PackKind = "meal_plan"
	PackKindSport    PackKind = "sport"
	PackKindShakes   PackKind = "shakes"
	PackKindFood     PackKind = "food"
)

// IsValid reports whether k is a known pack kind. The empty kind is allowed.
func (k PackKind) IsValid() bool {
	switch k {
	case "", PackKindMealPlan, PackKindSport, PackKindShakes, PackKindFood:
		return true
	}
	return false
}

// DefaultPackAudience is used when a pack does not name its audience
const DefaultPackAudience = "For everyone"

// Pack is a bundled service offer (meal plans, training blocks) shown next
// to the product catalog. It is not a cart item.
type Pack struct {
	shared.BaseEntity
	Kind          PackKind
	Name          string
	Audience      string
	Details       []string
	ImageKey      string
	Price         decimal.Decimal
	OnSale        bool
	SalePrice     decimal.Decimal
	Duration      string
	SessionLength string
	Available     bool
}

// NewPack creates an available pack
func NewPack(name string, kind PackKind, price decimal.Decimal) (*Pack, error) {
	if err := validatePackName(name); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, ErrInvalidPackKind
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	return &Pack{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Name:       strings.TrimSpace(name),
		Audience:   DefaultPackAudience,
		Details:    make([]string, 0),
		Price:      price,
		SalePrice:  decimal.Zero,
		Available:  true,
	}, nil
}

// Describe updates the descriptive fields. An empty audience falls back to
// DefaultPackAudience; details are trimmed and blank entries dropped.
func (p *Pack) Describe(name, audience, duration, sessionLength string, details []string) error {
	if err := validatePackName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Audience = strings.TrimSpace(audience)
	if p.Audience == "" {
		p.Audience = DefaultPackAudience
	}
	p.Duration = strings.TrimSpace(duration)
	p.SessionLength = strings.TrimSpace(sessionLength)
	p.Details = make([]string, 0, len(details))
	for _, d := range details {
		if d = strings.TrimSpace(d); d != "" {
			p.Details = append(p.Details, d)
		}
	}
	p.touch()
	return nil
}

// SetKind changes the pack line
func (p *Pack) SetKind(kind PackKind) error {
	if !kind.IsValid() {
		return ErrInvalidPackKind
	}
	p.Kind = kind
	p.touch()
	return nil
}

// SetPrice sets the regular price
func (p *Pack) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price
	p.touch()
	return nil
}

// SetSale puts the pack on sale at salePrice, or takes it off sale
func (p *Pack) SetSale(onSale bool, salePrice decimal.Decimal) error {
	if err := validateSale(onSale, salePrice); err != nil {
		return err
	}
	p.OnSale = onSale
	p.SalePrice = salePrice
	p.touch()
	return nil
}

// SetAvailable shows or hides the pack
func (p *Pack) SetAvailable(available bool) {
	p.Available = available
	p.touch()
}

// SetImage replaces the cover image and returns the previous key
func (p *Pack) SetImage(key string) string {
	previous := p.ImageKey
	p.ImageKey = strings.TrimSpace(key)
	p.touch()
	if previous == p.ImageKey {
		return ""
	}
	return previous
}

// EffectivePrice is the sale price while the pack is on sale, else the regular price
func (p *Pack) EffectivePrice() decimal.Decimal {
	return effectivePrice(p.Price, p.OnSale, p.SalePrice)
}

func (p *Pack) touch() {
	p.UpdatedAt = time.Now()
}

func validatePackName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Pack name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Pack name cannot exceed 100 characters")
	}
	return nil
}
