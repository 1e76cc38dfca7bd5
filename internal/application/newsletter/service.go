package newsletter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/newsletter"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SubscribeRequest signs an address up for the newsletter
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
	Name  string `json:"name" binding:"max=100"`
}

// SubscriptionListFilter represents filter options for the subscriber list
type SubscriptionListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Service manages newsletter subscriptions
type Service struct {
	subscriptions newsletter.SubscriptionRepository
}

// NewService creates a new newsletter Service
func NewService(subscriptions newsletter.SubscriptionRepository) *Service {
	return &Service{subscriptions: subscriptions}
}

// Subscribe adds an address to the list. Subscribing an address that is
// already on the list returns the stored entry with created=false.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (resp *SubscriptionResponse, created bool, err error) {
	sub, err := newsletter.NewSubscription(req.Email, req.Name)
	if err != nil {
		return nil, false, err
	}

	err = s.subscriptions.Create(ctx, sub)
	switch {
	case err == nil:
		created = true
		logger.L(ctx).Info("Newsletter subscription added", zap.String("subscription_id", sub.ID.String()))
	case errors.Is(err, shared.ErrAlreadyExists):
		if sub, err = s.subscriptions.FindByEmail(ctx, sub.Email); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, err
	}

	out := toResponse(sub)
	return &out, created, nil
}

// List returns a page of subscriptions, newest first
func (s *Service) List(ctx context.Context, f SubscriptionListFilter) (*shared.Paginated[SubscriptionResponse], error) {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter = filter.Normalize()

	subs, err := s.subscriptions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.subscriptions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		items[i] = toResponse(&subs[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Delete removes a subscription
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.subscriptions.Delete(ctx, id)
	if shared.IsNotFound(err) {
		return newsletter.ErrSubscriptionNotFound
	}
	return err
}

func toResponse(s *newsletter.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:           s.ID,
		Email:        s.Email,
		Name:         s.Name,
		SubscribedAt: s.CreatedAt,
	}
}
