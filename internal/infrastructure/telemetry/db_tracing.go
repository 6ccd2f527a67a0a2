package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracingConfig holds configuration for database instrumentation.
type DBTracingConfig struct {
	Enabled         bool          // register otelgorm spans
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // default 200ms

	// TracerProvider overrides the global provider for otelgorm spans
	TracerProvider trace.TracerProvider
}

// DBTracingConfigFrom maps the telemetry section onto DBTracingConfig.
func DBTracingConfigFrom(cfg config.TelemetryConfig) DBTracingConfig {
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
	}
}

// DBInstrumentation adds spans, query metrics and pool gauges to a gorm DB.
type DBInstrumentation struct {
	config DBTracingConfig
	logger *zap.Logger
	meter  metric.Meter

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
}

// NewDBInstrumentation creates the query instruments on meter.
func NewDBInstrumentation(meter metric.Meter, cfg DBTracingConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	queryTotal, err := NewCounter(meter, "db_query_total", "Total number of database queries", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}")
	if err != nil {
		return nil, err
	}

	return &DBInstrumentation{
		config:         cfg,
		logger:         logger,
		meter:          meter,
		queryTotal:     queryTotal,
		queryDuration:  queryDuration,
		slowQueryTotal: slowQueryTotal,
	}, nil
}

// Register installs otelgorm (when enabled) plus the timing callbacks.
func (d *DBInstrumentation) Register(db *gorm.DB) error {
	if d.config.Enabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !d.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if d.config.TracerProvider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(d.config.TracerProvider))
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("telemetry:before_create", d.before) },
		func() error {
			return cb.Create().After("gorm:create").Register("telemetry:after_create", d.after("insert"))
		},
		func() error { return cb.Query().Before("gorm:query").Register("telemetry:before_query", d.before) },
		func() error {
			return cb.Query().After("gorm:query").Register("telemetry:after_query", d.after("select"))
		},
		func() error { return cb.Update().Before("gorm:update").Register("telemetry:before_update", d.before) },
		func() error {
			return cb.Update().After("gorm:update").Register("telemetry:after_update", d.after("update"))
		},
		func() error { return cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", d.before) },
		func() error {
			return cb.Delete().After("gorm:delete").Register("telemetry:after_delete", d.after("delete"))
		},
		func() error { return cb.Row().Before("gorm:row").Register("telemetry:before_row", d.before) },
		func() error { return cb.Row().After("gorm:row").Register("telemetry:after_row", d.after("select")) },
		func() error { return cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", d.before) },
		func() error { return cb.Raw().After("gorm:raw").Register("telemetry:after_raw", d.after("raw")) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	d.logger.Info("Database instrumentation registered",
		zap.Bool("tracing", d.config.Enabled),
		zap.Duration("slow_query_threshold", d.config.SlowQueryThresh),
	)
	return nil
}

// ObservePool reports connection pool usage on every collection.
func (d *DBInstrumentation) ObservePool(sqlDB *sql.DB) error {
	connections, err := d.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := d.meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	_, err = d.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		return nil
	}, connections, maxOpen)
	return err
}

func (d *DBInstrumentation) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (d *DBInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(db.Statement.Table)}
		d.queryTotal.Inc(ctx, attrs...)

		span := trace.SpanFromContext(ctx)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && span.IsRecording() {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		value, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := value.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		d.queryDuration.RecordDuration(ctx, elapsed, attrs...)

		if elapsed > d.config.SlowQueryThresh {
			d.slowQueryTotal.Inc(ctx, attrs...)
			if span.IsRecording() {
				span.SetAttributes(attribute.Bool("db.slow_query", true))
				span.AddEvent("slow_query_warning", trace.WithAttributes(
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
					attribute.Int64("threshold_ms", d.config.SlowQueryThresh.Milliseconds()),
				))
			}
			d.logger.Warn("Slow query",
				zap.String("table", db.Statement.Table),
				zap.String("operation", operation),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}
