package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Resolution is the outcome of resolving a request to its cart.
type Resolution struct {
	Cart *cart.Cart
	// SessionKey is the token to send back to the client. It is set only
	// for anonymous carts and is always empty for authenticated callers.
	SessionKey string
	Created    bool
	Merged     *cart.MergeResult
}

// Resolver maps a caller and an optional session key to exactly one cart,
// creating it lazily and folding a guest cart into the user cart when both
// are presented. It must run inside a transaction.
type Resolver struct {
	metrics Metrics
}

// NewResolver creates a Resolver. A nil metrics sink is replaced by a no-op.
func NewResolver(metrics Metrics) *Resolver {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Resolver{metrics: metrics}
}

// Resolve returns the caller's cart. An unknown or malformed session key is
// never an error: it just yields a fresh anonymous cart.
func (r *Resolver) Resolve(ctx context.Context, repos TransactionalRepositories, p Principal, sessionKey string) (*Resolution, error) {
	if p.IsAuthenticated() {
		return r.resolveUser(ctx, repos.Carts(), p, sessionKey)
	}
	return r.resolveGuest(ctx, repos.Carts(), sessionKey)
}

// Find returns the caller's existing cart without creating or merging
// anything. Anonymous callers must present a session key.
func (r *Resolver) Find(ctx context.Context, repos TransactionalRepositories, p Principal, sessionKey string) (*cart.Cart, error) {
	carts := repos.Carts()

	var (
		c   *cart.Cart
		err error
	)
	if p.IsAuthenticated() {
		c, err = carts.FindByUserID(ctx, p.UserID)
	} else {
		if sessionKey == "" {
			return nil, cart.ErrSessionKeyRequired
		}
		c, err = carts.FindAnonymousBySessionKey(ctx, sessionKey)
	}
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *Resolver) resolveUser(ctx context.Context, carts cart.CartRepository, p Principal, sessionKey string) (*Resolution, error) {
	userCart, created, err := r.findOrCreateUserCart(ctx, carts, p)
	if err != nil {
		return nil, err
	}
	res := &Resolution{Cart: userCart, Created: created}

	if sessionKey != "" {
		guest, err := carts.FindAnonymousBySessionKey(ctx, sessionKey)
		switch {
		case err == nil && guest.ID != userCart.ID:
			merged, err := r.merge(ctx, carts, userCart, guest)
			if err != nil {
				return nil, err
			}
			res.Merged = merged
		case err != nil && !shared.IsNotFound(err):
			return nil, fmt.Errorf("find guest cart: %w", err)
		}
	}

	if userCart.ClearSessionKey() {
		if err := carts.Save(ctx, userCart); err != nil {
			return nil, fmt.Errorf("clear session key: %w", err)
		}
	}
	return res, nil
}

func (r *Resolver) findOrCreateUserCart(ctx context.Context, carts cart.CartRepository, p Principal) (*cart.Cart, bool, error) {
	existing, err := carts.FindByUserID(ctx, p.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !shared.IsNotFound(err) {
		return nil, false, fmt.Errorf("find user cart: %w", err)
	}

	c, err := cart.NewUserCart(p.UserID)
	if err != nil {
		return nil, false, err
	}
	if err := carts.Create(ctx, c); err != nil {
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, false, fmt.Errorf("create user cart: %w", err)
		}
		// a concurrent request created it first
		existing, err := carts.FindByUserID(ctx, p.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("reload user cart: %w", err)
		}
		return existing, false, nil
	}

	r.metrics.CartCreated(ctx, false)
	return c, true, nil
}

// merge folds guest into userCart and deletes guest. Lines of the user cart
// that the merge will increase are re-read under lock first, so a
// concurrent add on the user cart is not overwritten.
func (r *Resolver) merge(ctx context.Context, carts cart.CartRepository, userCart, guest *cart.Cart) (*cart.MergeResult, error) {
	for _, g := range guest.Items {
		locked, err := carts.FindItemForUpdate(ctx, userCart.ID, g.ProductID)
		if err != nil {
			if errors.Is(err, cart.ErrItemNotFound) {
				// deleted since the cart was loaded; the guest line moves over
				userCart.DropItem(g.ProductID)
				continue
			}
			return nil, fmt.Errorf("lock user cart line: %w", err)
		}
		if existing := userCart.FindItem(g.ProductID); existing != nil {
			*existing = *locked
		} else {
			userCart.Items = append(userCart.Items, *locked)
		}
	}

	result, err := userCart.Absorb(guest)
	if err != nil {
		return nil, err
	}

	for i := range result.Increased {
		if err := carts.SaveItem(ctx, &result.Increased[i]); err != nil {
			return nil, fmt.Errorf("merge line: %w", err)
		}
	}
	for i := range result.Moved {
		if err := carts.SaveItem(ctx, &result.Moved[i]); err != nil {
			return nil, fmt.Errorf("move line: %w", err)
		}
	}
	if err := carts.Delete(ctx, guest.ID); err != nil {
		return nil, fmt.Errorf("delete guest cart: %w", err)
	}

	logger.L(ctx).Info("Guest cart merged",
		zap.String("guest_cart_id", guest.ID.String()),
		zap.String("user_cart_id", userCart.ID.String()),
		zap.Int("increased", len(result.Increased)),
		zap.Int("moved", len(result.Moved)))
	r.metrics.CartMerged(ctx, len(result.Increased), len(result.Moved))
	return &result, nil
}

func (r *Resolver) resolveGuest(ctx context.Context, carts cart.CartRepository, sessionKey string) (*Resolution, error) {
	if sessionKey != "" {
		guest, err := carts.FindAnonymousBySessionKey(ctx, sessionKey)
		if err == nil {
			return &Resolution{Cart: guest, SessionKey: sessionKey}, nil
		}
		if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("find guest cart: %w", err)
		}
	}

	// A UUID collision is not a realistic outcome; retry once so that a
	// conflicting insert cannot surface as an error either.
	for attempt := 0; attempt < 2; attempt++ {
		key := cart.NewSessionKey()
		c, err := cart.NewGuestCart(key)
		if err != nil {
			return nil, err
		}
		err = carts.Create(ctx, c)
		if errors.Is(err, shared.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create guest cart: %w", err)
		}
		r.metrics.CartCreated(ctx, true)
		return &Resolution{Cart: c, SessionKey: key, Created: true}, nil
	}
	return nil, fmt.Errorf("create guest cart: session key collision")
}
