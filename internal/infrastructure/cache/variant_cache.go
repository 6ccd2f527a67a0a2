package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

// DefaultVariantTTL is used when no TTL is configured
const DefaultVariantTTL = 10 * time.Minute

// RedisVariantCache caches distributor offers per SKU with a TTL
type RedisVariantCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisVariantCache creates a variant cache on an existing client
func NewRedisVariantCache(client *redis.Client, ttl time.Duration) *RedisVariantCache {
	if ttl <= 0 {
		ttl = DefaultVariantTTL
	}
	return &RedisVariantCache{client: client, keyPrefix: variantKeyPrefix, ttl: ttl}
}

// Get returns the cached offers and whether the SKU had an entry. An
// empty offer list is a valid entry.
func (c *RedisVariantCache) Get(ctx context.Context, sku string) ([]catalog.Variant, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+sku).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read variant cache: %w", err)
	}

	var variants []catalog.Variant
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached variants: %w", err)
	}
	return variants, true, nil
}

// Set caches the offers for a SKU
func (c *RedisVariantCache) Set(ctx context.Context, sku string, variants []catalog.Variant) error {
	if variants == nil {
		variants = []catalog.Variant{}
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+sku, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write variant cache: %w", err)
	}
	return nil
}

type variantEntry struct {
	variants  []catalog.Variant
	expiresAt time.Time
}

// InMemoryVariantCache caches offers in process memory. A background
// goroutine drops expired entries until Close.
type InMemoryVariantCache struct {
	mu        sync.RWMutex
	entries   map[string]variantEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryVariantCache creates an in-memory variant cache
func NewInMemoryVariantCache(ttl time.Duration) *InMemoryVariantCache {
	if ttl <= 0 {
		ttl = DefaultVariantTTL
	}
	c := &InMemoryVariantCache{
		entries:  make(map[string]variantEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns a copy of the cached offers and whether they were present
func (c *InMemoryVariantCache) Get(_ context.Context, sku string) ([]catalog.Variant, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[sku]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return slices.Clone(e.variants), true, nil
}

// Set caches a copy of the offers
func (c *InMemoryVariantCache) Set(_ context.Context, sku string, variants []catalog.Variant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := slices.Clone(variants)
	if stored == nil {
		stored = []catalog.Variant{}
	}
	c.entries[sku] = variantEntry{variants: stored, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Size returns the number of entries, expired ones included
func (c *InMemoryVariantCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *InMemoryVariantCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryVariantCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryVariantCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for sku, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, sku)
		}
	}
}
