package router

import (
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineOptions configures the gin engine
type EngineOptions struct {
	HTTP           config.HTTPConfig
	Logger         *zap.Logger
	Meter          metric.Meter
	TracingEnabled bool
	ServiceName    string
}

// NewEngine builds a gin engine with the standard middleware chain:
// request id, recovery, tracing, metrics, request logging, security
// headers, CORS, body limit and, when enabled, rate limiting.
// The returned limiter is nil when rate limiting is off.
func NewEngine(opts EngineOptions) (*gin.Engine, *middleware.RateLimiter, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, nil, err
	}
	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: opts.ServiceName,
		Enabled:     opts.TracingEnabled,
	}))
	engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter, log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)))
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}

	var limiter *middleware.RateLimiter
	if opts.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", opts.HTTP.RateLimitRequests),
			zap.Duration("window", opts.HTTP.RateLimitWindow),
		)
	}
	return engine, limiter, nil
}
