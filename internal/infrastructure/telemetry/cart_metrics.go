package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	appcart "github.com/velux/backend/internal/application/cart"
	apporder "github.com/velux/backend/internal/application/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	_ appcart.Metrics  = (*CartMetrics)(nil)
	_ apporder.Metrics = (*CartMetrics)(nil)
)

// Attribute keys shared by the shop metrics
var (
	AttrAnonymous = attribute.Key("cart.anonymous")
	AttrFromCart  = attribute.Key("order.from_cart")
)

// CartMetrics records cart and order activity
type CartMetrics struct {
	cartsCreated metric.Int64Counter
	cartsMerged  metric.Int64Counter
	linesMerged  metric.Int64Counter
	itemsAdded   metric.Int64Counter
	ordersPlaced metric.Int64Counter
	orderValue   metric.Float64Histogram
}

// NewCartMetrics creates the instruments on meter
func NewCartMetrics(meter metric.Meter) (*CartMetrics, error) {
	m := &CartMetrics{}
	var err error

	if m.cartsCreated, err = meter.Int64Counter("velux_cart_created_total",
		metric.WithDescription("Carts created, by anonymous or user owner"),
		metric.WithUnit("{carts}")); err != nil {
		return nil, instrumentErr("velux_cart_created_total", err)
	}
	if m.cartsMerged, err = meter.Int64Counter("velux_cart_merged_total",
		metric.WithDescription("Guest carts folded into a user cart"),
		metric.WithUnit("{carts}")); err != nil {
		return nil, instrumentErr("velux_cart_merged_total", err)
	}
	if m.linesMerged, err = meter.Int64Counter("velux_cart_merged_lines_total",
		metric.WithDescription("Cart lines increased or moved by merges"),
		metric.WithUnit("{lines}")); err != nil {
		return nil, instrumentErr("velux_cart_merged_lines_total", err)
	}
	if m.itemsAdded, err = meter.Int64Counter("velux_cart_items_added_total",
		metric.WithDescription("Units added to carts"),
		metric.WithUnit("{units}")); err != nil {
		return nil, instrumentErr("velux_cart_items_added_total", err)
	}
	if m.ordersPlaced, err = meter.Int64Counter("velux_order_placed_total",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{orders}")); err != nil {
		return nil, instrumentErr("velux_order_placed_total", err)
	}
	if m.orderValue, err = meter.Float64Histogram("velux_order_value",
		metric.WithDescription("Order total price"),
		metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000, 2500)); err != nil {
		return nil, instrumentErr("velux_order_value", err)
	}
	return m, nil
}

func instrumentErr(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// CartCreated counts a new cart
func (m *CartMetrics) CartCreated(ctx context.Context, anonymous bool) {
	m.cartsCreated.Add(ctx, 1, metric.WithAttributes(AttrAnonymous.Bool(anonymous)))
}

// CartMerged counts a merge and the lines it touched
func (m *CartMetrics) CartMerged(ctx context.Context, increased, moved int) {
	m.cartsMerged.Add(ctx, 1)
	m.linesMerged.Add(ctx, int64(increased), metric.WithAttributes(attribute.String("merge.kind", "increased")))
	m.linesMerged.Add(ctx, int64(moved), metric.WithAttributes(attribute.String("merge.kind", "moved")))
}

// ItemAdded counts units added through the ledger
func (m *CartMetrics) ItemAdded(ctx context.Context, quantity int) {
	m.itemsAdded.Add(ctx, int64(quantity))
}

// OrderPlaced counts an order and records its value
func (m *CartMetrics) OrderPlaced(ctx context.Context, fromCart bool, total decimal.Decimal) {
	attrs := metric.WithAttributes(AttrFromCart.Bool(fromCart))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderValue.Record(ctx, total.InexactFloat64(), attrs)
}
