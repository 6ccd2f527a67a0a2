package cache

import (
	"errors"
	"fmt"
	"time"

	appgrid "github.com/catalogsync/backend/internal/application/grid"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores groups the cache-backed collaborators of the grid service
type Stores struct {
	Layouts  grid.LayoutRepository
	Variants appgrid.VariantCache
	// Idempotency guards the bulk actions against client retries
	Idempotency shared.IdempotencyStore
	// Backend is "redis" or "memory"
	Backend string

	client     *redis.Client
	memory     *InMemoryVariantCache
	memoryKeys *InMemoryIdempotencyStore
}

// Close releases the redis client or stops the in-memory cleanup
func (s *Stores) Close() error {
	var errs []error
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}
	if s.memory != nil {
		errs = append(errs, s.memory.Close())
	}
	if s.memoryKeys != nil {
		errs = append(errs, s.memoryKeys.Close())
	}
	return errors.Join(errs...)
}

// Factory creates the grid stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	variantTTL            time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(config.RedisConfig) (*redis.Client, error)
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithVariantTTL sets how long distributor offers stay cached
func WithVariantTTL(ttl time.Duration) FactoryOption {
	return func(f *Factory) {
		f.variantTTL = ttl
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		variantTTL:            DefaultVariantTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect:               NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStores creates process-local stores. Layouts and cached
// offers are not shared between server instances.
func (f *Factory) CreateInMemoryStores() *Stores {
	variants := NewInMemoryVariantCache(f.variantTTL)
	keys := NewInMemoryIdempotencyStore()
	return &Stores{
		Layouts:     NewInMemoryLayoutStore(),
		Variants:    variants,
		Idempotency: keys,
		Backend:     "memory",
		memory:      variants,
		memoryKeys:  keys,
	}
}

// CreateStores tries redis first and falls back to in-memory stores when
// redis is unavailable and fallback is allowed.
func (f *Factory) CreateStores() (*Stores, error) {
	client, err := f.connect(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis grid stores", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Layouts:     NewRedisLayoutStore(client),
			Variants:    NewRedisVariantCache(client, f.variantTTL),
			Idempotency: NewRedisIdempotencyStore(client),
			Backend:     "redis",
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for grid stores but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory grid stores. "+
		"Column layouts will not survive a restart.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
