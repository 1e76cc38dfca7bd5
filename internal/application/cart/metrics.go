package cart

import "context"

// Metrics receives cart events for instrumentation
type Metrics interface {
	CartCreated(ctx context.Context, anonymous bool)
	CartMerged(ctx context.Context, increased, moved int)
	ItemAdded(ctx context.Context, quantity int)
}

type noopMetrics struct{}

func (noopMetrics) CartCreated(context.Context, bool)    {}
func (noopMetrics) CartMerged(context.Context, int, int) {}
func (noopMetrics) ItemAdded(context.Context, int)       {}
