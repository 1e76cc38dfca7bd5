package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/domain/order"
)

// Viewer is the caller reading orders
type Viewer struct {
	UserID  uuid.UUID
	IsStaff bool
}

// CreateOrderItem is one requested line
type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// CreateOrderRequest places an order for explicit products
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" binding:"required,min=1,max=100,dive"`
}

// OrderListFilter represents pagination options for order list
type OrderListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID                  `json:"id"`
	ProductID uuid.UUID                  `json:"product_id"`
	Product   *appcatalog.ProductSummary `json:"product,omitempty"`
	Quantity  int                        `json:"quantity"`
	UnitPrice decimal.Decimal            `json:"unit_price"`
	Subtotal  decimal.Decimal            `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	BuyerID    uuid.UUID           `json:"buyer_id"`
	Sold       bool                `json:"sold"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	ItemCount  int                 `json:"item_count"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

// toOrderResponse maps an order; products may be nil, in which case the
// lines carry only product ids
func toOrderResponse(ctx context.Context, o *order.Order, products []catalog.Product, images appcatalog.ImageURLResolver) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		Sold:       o.Sold,
		TotalPrice: o.TotalPrice,
		ItemCount:  o.ItemCount(),
		Items:      toOrderItemResponses(ctx, o.Items, products, images),
		CreatedAt:  o.CreatedAt,
	}
}

func toOrderItemResponses(ctx context.Context, items []order.OrderItem, products []catalog.Product, images appcatalog.ImageURLResolver) []OrderItemResponse {
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	out := make([]OrderItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		line := OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if p, ok := byID[item.ProductID]; ok {
			summary := appcatalog.NewProductSummary(ctx, p, images)
			line.Product = &summary
		}
		out = append(out, line)
	}
	return out
}
