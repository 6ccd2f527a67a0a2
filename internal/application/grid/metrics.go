package grid

import (
	"context"
	"time"
)

// Metrics receives engine measurements
type Metrics interface {
	RecordFetch(ctx context.Context, table, outcome string, duration time.Duration)
	RecordAction(ctx context.Context, table, action, outcome string, rows int)
}

// NopMetrics discards measurements
type NopMetrics struct{}

func (NopMetrics) RecordFetch(context.Context, string, string, time.Duration) {}

func (NopMetrics) RecordAction(context.Context, string, string, string, int) {}
