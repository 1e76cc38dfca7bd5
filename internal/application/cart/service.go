package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service is the cart item ledger. Every operation resolves the caller's
// cart, applies its change and re-reads the cart inside one transaction.
type Service struct {
	scope    TransactionScope
	resolver *Resolver
	images   appcatalog.ImageURLResolver
	metrics  Metrics
}

// NewService creates a new cart Service
func NewService(scope TransactionScope, resolver *Resolver, images appcatalog.ImageURLResolver, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if resolver == nil {
		resolver = NewResolver(metrics)
	}
	return &Service{
		scope:    scope,
		resolver: resolver,
		images:   images,
		metrics:  metrics,
	}
}

// Get returns the caller's cart, creating or merging it as needed
func (s *Service) Get(ctx context.Context, p Principal, sessionKey string) (*Result, error) {
	return s.run(ctx, p, sessionKey, nil)
}

// AddItem adds quantity of a product. A repeat add accumulates onto the
// existing line and keeps its price snapshot.
func (s *Service) AddItem(ctx context.Context, p Principal, sessionKey string, req AddItemRequest) (*Result, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}
	if quantity > cart.MaxQuantity {
		return nil, cart.ErrQuantityLimit
	}

	return s.run(ctx, p, sessionKey, func(ctx context.Context, repos TransactionalRepositories, c *cart.Cart) error {
		product, err := loadPurchasable(ctx, repos.Products(), req.ProductID)
		if err != nil {
			return err
		}
		if err := addLine(ctx, repos.Carts(), c, product, quantity); err != nil {
			return err
		}
		s.metrics.ItemAdded(ctx, quantity)
		return nil
	})
}

// addLine increments the product's line under lock, or creates it with the
// product's current list price as snapshot. Sale prices apply when an order
// is placed directly, not to cart lines.
func addLine(ctx context.Context, carts cart.CartRepository, c *cart.Cart, product *catalog.Product, quantity int) error {
	item, err := carts.FindItemForUpdate(ctx, c.ID, product.ID)
	switch {
	case err == nil:
		return increase(ctx, carts, item, quantity)
	case !errors.Is(err, cart.ErrItemNotFound):
		return err
	}

	line, err := cart.NewCartItem(c.ID, product.ID, quantity, product.Price)
	if err != nil {
		return err
	}
	err = carts.CreateItem(ctx, line)
	if !errors.Is(err, shared.ErrAlreadyExists) {
		return err
	}

	// lost the race to create the line; add onto the winner's row
	item, err = carts.FindItemForUpdate(ctx, c.ID, product.ID)
	if err != nil {
		return err
	}
	return increase(ctx, carts, item, quantity)
}

// UpdateItem overwrites the quantity of an existing line; zero removes it.
func (s *Service) UpdateItem(ctx context.Context, p Principal, sessionKey string, req UpdateItemRequest) (*Result, error) {
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}
	quantity := *req.Quantity

	return s.run(ctx, p, sessionKey, func(ctx context.Context, repos TransactionalRepositories, c *cart.Cart) error {
		carts := repos.Carts()
		item, err := carts.FindItemForUpdate(ctx, c.ID, req.ProductID)
		if err != nil {
			return err
		}
		if quantity == 0 {
			return carts.DeleteItem(ctx, item.ID)
		}
		if _, err := loadPurchasable(ctx, repos.Products(), req.ProductID); err != nil {
			return err
		}
		if err := item.SetQuantity(quantity); err != nil {
			return err
		}
		return carts.SaveItem(ctx, item)
	})
}

// RemoveItem deletes the line for a product
func (s *Service) RemoveItem(ctx context.Context, p Principal, sessionKey string, req RemoveItemRequest) (*Result, error) {
	return s.run(ctx, p, sessionKey, func(ctx context.Context, repos TransactionalRepositories, c *cart.Cart) error {
		carts := repos.Carts()
		item, err := carts.FindItemForUpdate(ctx, c.ID, req.ProductID)
		if err != nil {
			return err
		}
		return carts.DeleteItem(ctx, item.ID)
	})
}

// Clear empties the caller's existing cart. It never creates a cart. The
// session key of an anonymous cart is rotated, so the returned Result
// carries the new key and the old one stops resolving.
func (s *Service) Clear(ctx context.Context, p Principal, sessionKey string) (*Result, error) {
	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := s.resolver.Find(ctx, repos, p, sessionKey)
		if err != nil {
			return err
		}

		carts := repos.Carts()
		if err := carts.DeleteItems(ctx, c.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		c.Items = nil
		outgoing := ""
		if c.IsAnonymous() {
			outgoing = cart.NewSessionKey()
			if err := c.RotateSessionKey(outgoing); err != nil {
				return err
			}
			if err := carts.Save(ctx, c); err != nil {
				return fmt.Errorf("rotate session key: %w", err)
			}
		}

		result, err = s.snapshot(ctx, repos, c.ID, outgoing)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Cart cleared", zap.String("cart_id", result.Cart.ID.String()))
	return result, nil
}

type mutation func(ctx context.Context, repos TransactionalRepositories, c *cart.Cart) error

// run resolves the cart, applies mutate (if any) and returns the re-read
// cart. Resolution and mutation share one transaction, so a failed
// mutation also rolls back a cart created or merged by the resolution.
func (s *Service) run(ctx context.Context, p Principal, sessionKey string, mutate mutation) (*Result, error) {
	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		res, err := s.resolver.Resolve(ctx, repos, p, sessionKey)
		if err != nil {
			return err
		}
		ctx := logger.WithCartID(ctx, res.Cart.ID.String())

		if mutate != nil {
			if err := mutate(ctx, repos, res.Cart); err != nil {
				return err
			}
		}

		result, err = s.snapshot(ctx, repos, res.Cart.ID, res.SessionKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// snapshot re-reads the cart and maps it with the current product data
func (s *Service) snapshot(ctx context.Context, repos TransactionalRepositories, cartID uuid.UUID, sessionKey string) (*Result, error) {
	c, err := repos.Carts().FindByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}

	productIDs := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	return &Result{
		Cart:       toCartResponse(ctx, c, products, s.images),
		SessionKey: sessionKey,
	}, nil
}

func loadPurchasable(ctx context.Context, products catalog.ProductReader, productID uuid.UUID) (*catalog.Product, error) {
	product, err := products.FindByID(ctx, productID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, cart.ErrProductUnavailable
	}
	return product, nil
}

func increase(ctx context.Context, carts cart.CartRepository, item *cart.CartItem, quantity int) error {
	if err := item.Increase(quantity); err != nil {
		return err
	}
	return carts.SaveItem(ctx, item)
}

func toCartResponse(ctx context.Context, c *cart.Cart, products []catalog.Product, images appcatalog.ImageURLResolver) CartResponse {
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		item := &c.Items[i]
		line := CartItemResponse{
			ID:              item.ID,
			Quantity:        item.Quantity,
			PriceAtAddition: item.PriceAtAddition,
			Subtotal:        item.Subtotal(),
		}
		if p, ok := byID[item.ProductID]; ok {
			summary := appcatalog.NewProductSummary(ctx, p, images)
			line.Product = &summary
		}
		items = append(items, line)
	}

	return CartResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
