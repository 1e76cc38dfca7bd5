package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/shared"
)

// MaxSessionKeyLength bounds the opaque token that addresses an anonymous cart.
const MaxSessionKeyLength = 40

// Cart is the aggregate root of the shopping cart context.
// A cart is addressed either by its owning user or by a session key, never both.
type Cart struct {
	shared.BaseEntity
	UserID     *uuid.UUID
	SessionKey *string
	Items      []CartItem
}

// NewUserCart creates an empty cart owned by the given user
func NewUserCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CART_OWNER", "Cart owner cannot be empty")
	}
	return &Cart{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     &userID,
		Items:      make([]CartItem, 0),
	}, nil
}

// NewGuestCart creates an empty anonymous cart addressed by sessionKey
func NewGuestCart(sessionKey string) (*Cart, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}
	return &Cart{
		BaseEntity: shared.NewBaseEntity(),
		SessionKey: &sessionKey,
		Items:      make([]CartItem, 0),
	}, nil
}

// NewSessionKey mints a globally unique opaque token for an anonymous cart
func NewSessionKey() string {
	return uuid.NewString()
}

// IsAnonymous reports whether the cart has no owning user
func (c *Cart) IsAnonymous() bool {
	return c.UserID == nil
}

// IsOwnedBy reports whether the cart belongs to userID
func (c *Cart) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}

// SessionKeyValue returns the session key or an empty string
func (c *Cart) SessionKeyValue() string {
	if c.SessionKey == nil {
		return ""
	}
	return *c.SessionKey
}

// ClearSessionKey removes a lingering session key from a user-owned cart.
// It returns true when the cart changed.
func (c *Cart) ClearSessionKey() bool {
	if c.SessionKey == nil {
		return false
	}
	c.SessionKey = nil
	c.touch()
	return true
}

// RotateSessionKey replaces the session key of an anonymous cart
func (c *Cart) RotateSessionKey(sessionKey string) error {
	if !c.IsAnonymous() {
		return shared.NewDomainError("CART_NOT_ANONYMOUS", "Only anonymous carts are addressed by session key")
	}
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}
	c.SessionKey = &sessionKey
	c.touch()
	return nil
}

// FindItem returns the line for productID, or nil
func (c *Cart) FindItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// DropItem removes the line for productID from the loaded lines, if any
func (c *Cart) DropItem(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// TotalItems is the sum of quantities across all lines
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price_at_addition x quantity across all lines
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

func validateSessionKey(sessionKey string) error {
	if sessionKey == "" {
		return shared.NewDomainError("INVALID_SESSION_KEY", "Session key cannot be empty")
	}
	if len(sessionKey) > MaxSessionKeyLength {
		return shared.NewDomainError("INVALID_SESSION_KEY", "Session key cannot exceed 40 characters")
	}
	return nil
}
