package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*CartMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewCartMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCartMetrics_Counters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.CartCreated(ctx, true)
	m.CartCreated(ctx, true)
	m.CartCreated(ctx, false)
	m.CartMerged(ctx, 2, 1)
	m.ItemAdded(ctx, 3)
	m.ItemAdded(ctx, 1)

	got := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, got["velux_cart_created_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["velux_cart_merged_total"]))
	assert.Equal(t, int64(3), sumOf(t, got["velux_cart_merged_lines_total"]))
	assert.Equal(t, int64(4), sumOf(t, got["velux_cart_items_added_total"]))

	created := got["velux_cart_created_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, created.DataPoints, 2, "anonymous and user carts are separate series")
}

func TestCartMetrics_OrderPlaced(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.OrderPlaced(ctx, true, decimal.RequireFromString("120.50"))
	m.OrderPlaced(ctx, false, decimal.NewFromInt(30))

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["velux_order_placed_total"]))

	hist, ok := got["velux_order_value"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	var total float64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		total += dp.Sum
	}
	assert.Equal(t, uint64(2), count)
	assert.InDelta(t, 150.5, total, 0.001)
}
