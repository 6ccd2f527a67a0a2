package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/redis/go-redis/v9"
)

// RedisLayoutStore keeps one column layout per table in redis, shared by
// every server instance. Layouts do not expire.
type RedisLayoutStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLayoutStore creates a layout store on an existing client
func NewRedisLayoutStore(client *redis.Client) *RedisLayoutStore {
	return &RedisLayoutStore{client: client, keyPrefix: layoutKeyPrefix}
}

// Load returns the stored layout or nil
func (s *RedisLayoutStore) Load(ctx context.Context, table string) (*grid.Layout, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+table).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}

	var layout grid.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	return &layout, nil
}

// Save stores the layout for a table
func (s *RedisLayoutStore) Save(ctx context.Context, table string, layout grid.Layout) error {
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+table, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// Delete forgets the layout for a table
func (s *RedisLayoutStore) Delete(ctx context.Context, table string) error {
	if err := s.client.Del(ctx, s.keyPrefix+table).Err(); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

var _ grid.LayoutRepository = (*RedisLayoutStore)(nil)

// InMemoryLayoutStore keeps layouts in process memory.
// WARNING: layouts are lost on restart and not shared across instances.
type InMemoryLayoutStore struct {
	mu      sync.RWMutex
	layouts map[string]grid.Layout
}

// NewInMemoryLayoutStore creates an empty layout store
func NewInMemoryLayoutStore() *InMemoryLayoutStore {
	return &InMemoryLayoutStore{layouts: make(map[string]grid.Layout)}
}

// Load returns a copy of the stored layout or nil
func (s *InMemoryLayoutStore) Load(_ context.Context, table string) (*grid.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[table]
	if !ok {
		return nil, nil
	}
	out := copyLayout(l)
	return &out, nil
}

// Save stores a copy of the layout
func (s *InMemoryLayoutStore) Save(_ context.Context, table string, layout grid.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[table] = copyLayout(layout)
	return nil
}

// Delete forgets the layout for a table
func (s *InMemoryLayoutStore) Delete(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, table)
	return nil
}

func copyLayout(l grid.Layout) grid.Layout {
	return grid.Layout{
		Order:  slices.Clone(l.Order),
		Widths: maps.Clone(l.Widths),
	}
}

var _ grid.LayoutRepository = (*InMemoryLayoutStore)(nil)
