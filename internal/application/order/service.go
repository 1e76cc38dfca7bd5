package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/velux/backend/internal/application/cart"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/cart"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/order"
	"github.com/velux/backend/internal/domain/shared"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Metrics receives order events for instrumentation
type Metrics interface {
	OrderPlaced(ctx context.Context, fromCart bool, total decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) OrderPlaced(context.Context, bool, decimal.Decimal) {}

// Service places and reads orders
type Service struct {
	scope    TransactionScope
	orders   order.OrderRepository
	products catalog.ProductReader
	carts    *appcart.Resolver
	images   appcatalog.ImageURLResolver
	metrics  Metrics
}

// NewService creates a new order Service. carts resolves the buyer's cart at
// checkout; a nil resolver gets one without metrics.
func NewService(scope TransactionScope, orders order.OrderRepository, products catalog.ProductReader, carts *appcart.Resolver, images appcatalog.ImageURLResolver, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if carts == nil {
		carts = appcart.NewResolver(nil)
	}
	return &Service{
		scope:    scope,
		orders:   orders,
		products: products,
		carts:    carts,
		images:   images,
		metrics:  metrics,
	}
}

// Create places an order for explicit products at their current effective
// price. Every product must exist and be purchasable.
func (s *Service) Create(ctx context.Context, buyerID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	o, err := order.NewOrder(buyerID)
	if err != nil {
		return nil, err
	}

	var products []catalog.Product
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ids := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			ids = append(ids, item.ProductID)
		}
		products, err = repos.Products().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load order products: %w", err)
		}
		byID := make(map[uuid.UUID]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, item := range req.Items {
			p, ok := byID[item.ProductID]
			if !ok {
				return catalog.ErrProductNotFound
			}
			if !p.IsPurchasable() {
				return cart.ErrProductUnavailable
			}
			if err := o.AddItem(p.ID, item.Quantity, p.EffectivePrice()); err != nil {
				return err
			}
		}
		return s.place(ctx, repos, o)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(ctx, false, o.TotalPrice)
	resp := toOrderResponse(ctx, o, products, s.images)
	return &resp, nil
}

// Checkout turns the buyer's cart into an order at the prices captured when
// the lines were added, then empties the cart. A guest cart presented by
// sessionKey is merged first, the same way a cart read would merge it. Lines
// are locked before ordering, so a concurrent checkout of the same cart finds
// nothing left to order.
func (s *Service) Checkout(ctx context.Context, buyerID uuid.UUID, sessionKey string) (*OrderResponse, error) {
	o, err := order.NewOrder(buyerID)
	if err != nil {
		return nil, err
	}

	var products []catalog.Product
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		carts := repos.Carts()
		res, err := s.carts.Resolve(ctx, repos, appcart.Authenticated(buyerID), sessionKey)
		if err != nil {
			return fmt.Errorf("resolve cart: %w", err)
		}
		c := res.Cart

		lines := make([]*cart.CartItem, 0, len(c.Items))
		for _, item := range c.Items {
			locked, err := carts.FindItemForUpdate(ctx, c.ID, item.ProductID)
			if err != nil {
				if errors.Is(err, cart.ErrItemNotFound) {
					continue
				}
				return fmt.Errorf("lock cart line: %w", err)
			}
			lines = append(lines, locked)
		}
		if len(lines) == 0 {
			return order.ErrEmptyOrder
		}

		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		products, err = repos.Products().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load cart products: %w", err)
		}
		byID := make(map[uuid.UUID]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, line := range lines {
			p, ok := byID[line.ProductID]
			if !ok {
				return catalog.ErrProductNotFound
			}
			if !p.IsPurchasable() {
				return cart.ErrProductUnavailable
			}
			if err := o.AddItem(line.ProductID, line.Quantity, line.PriceAtAddition); err != nil {
				return err
			}
		}
		if err := s.place(ctx, repos, o); err != nil {
			return err
		}

		for _, line := range lines {
			if err := carts.DeleteItem(ctx, line.ID); err != nil {
				return fmt.Errorf("empty cart: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(ctx, true, o.TotalPrice)
	resp := toOrderResponse(ctx, o, products, s.images)
	return &resp, nil
}

func (s *Service) place(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := repos.Orders().Create(ctx, o); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	logger.L(ctx).Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("buyer_id", o.BuyerID.String()),
		zap.Int("items", o.ItemCount()),
		zap.String("total", o.TotalPrice.String()))
	return nil
}

// List returns the viewer's orders, or every order for staff
func (s *Service) List(ctx context.Context, viewer Viewer, f OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter = filter.Normalize()
	if !viewer.IsStaff {
		filter.Filters[order.FilterBuyerID] = viewer.UserID
	}

	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(ctx, &orders[i], nil, s.images))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetByID returns an order visible to the viewer. Orders of other buyers are
// reported as not found.
func (s *Service) GetByID(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(ctx, o, products, s.images)
	return &resp, nil
}

// Items returns the lines of an order visible to the viewer
func (s *Service) Items(ctx context.Context, viewer Viewer, id uuid.UUID) ([]OrderItemResponse, error) {
	o, err := s.find(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	return toOrderItemResponses(ctx, o.Items, products, s.images), nil
}

func (s *Service) find(ctx context.Context, viewer Viewer, id uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	if !o.IsVisibleTo(viewer.UserID, viewer.IsStaff) {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) loadProducts(ctx context.Context, items []order.OrderItem) ([]catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	return products, nil
}
