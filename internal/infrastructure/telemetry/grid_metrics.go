package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GridMetrics records grid fetch and action measurements
type GridMetrics struct {
	meter         metric.Meter
	fetchTotal    *Counter
	fetchDuration *Histogram
	actionTotal   *Counter
	actionRows    *Counter
}

// NewGridMetrics creates the grid instruments on meter
func NewGridMetrics(meter metric.Meter) (*GridMetrics, error) {
	fetchTotal, err := NewCounter(meter, "grid_fetch_total", "Page fetches by outcome", "{fetch}")
	if err != nil {
		return nil, err
	}
	fetchDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "grid_fetch_duration_seconds",
		Description: "Page fetch duration",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	actionTotal, err := NewCounter(meter, "grid_action_total", "Row actions by outcome", "{action}")
	if err != nil {
		return nil, err
	}
	actionRows, err := NewCounter(meter, "grid_action_rows_total", "Rows touched by row actions", "{row}")
	if err != nil {
		return nil, err
	}
	return &GridMetrics{
		meter:         meter,
		fetchTotal:    fetchTotal,
		fetchDuration: fetchDuration,
		actionTotal:   actionTotal,
		actionRows:    actionRows,
	}, nil
}

func (m *GridMetrics) RecordFetch(ctx context.Context, table, outcome string, duration time.Duration) {
	m.fetchTotal.Inc(ctx, AttrGridTable.String(table), AttrGridOutcome.String(outcome))
	m.fetchDuration.RecordDuration(ctx, duration, AttrGridTable.String(table), AttrGridOutcome.String(outcome))
}

func (m *GridMetrics) RecordAction(ctx context.Context, table, action, outcome string, rows int) {
	attrs := []attribute.KeyValue{AttrGridTable.String(table), AttrGridAction.String(action), AttrGridOutcome.String(outcome)}
	m.actionTotal.Inc(ctx, attrs...)
	if rows > 0 {
		m.actionRows.Add(ctx, int64(rows), attrs...)
	}
}

// ObserveSessions reports the number of open grid sessions on each collection
func (m *GridMetrics) ObserveSessions(count func() int) error {
	gauge, err := m.meter.Int64ObservableGauge("grid_sessions_active",
		metric.WithDescription("Open grid sessions"),
		metric.WithUnit("{session}"))
	if err != nil {
		return err
	}
	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(count()))
		return nil
	}, gauge)
	return err
}
