// Package newsletter holds the mailing list sign-ups collected by the shop.
package newsletter

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Subscription is one address on the mailing list. Addresses are stored
// lower-cased, so each mailbox subscribes once.
type Subscription struct {
	shared.BaseEntity
	Email string
	Name  string
}

// NewSubscription creates a subscription for email
func NewSubscription(email, name string) (*Subscription, error) {
	email = NormalizeEmail(email)
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return &Subscription{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Name:       name,
	}, nil
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Newsletter errors
var (
	ErrInvalidEmail         = shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	ErrSubscriptionNotFound = shared.NewDomainError("SUBSCRIPTION_NOT_FOUND", "Subscription not found")
)

// SubscriptionRepository persists subscriptions
type SubscriptionRepository interface {
	// Create inserts a subscription; an address already on the list is
	// reported as shared.ErrAlreadyExists
	Create(ctx context.Context, s *Subscription) error
	FindByEmail(ctx context.Context, email string) (*Subscription, error)
	// FindAll lists subscriptions newest first. filter.Search matches the
	// address or name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscription, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
