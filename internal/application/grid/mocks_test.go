package grid

import (
	"context"
	"sync"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindPage(ctx context.Context, scope catalog.Scope, q shared.CursorQuery) (*shared.CursorPage[catalog.Product], error) {
	args := m.Called(ctx, scope, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.CursorPage[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateField(ctx context.Context, sku, field string, value any) (*catalog.Product, error) {
	args := m.Called(ctx, sku, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) BulkUpdateField(ctx context.Context, skus []string, field string, value any) (int64, error) {
	args := m.Called(ctx, skus, field, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) UnlockField(ctx context.Context, sku, field string) error {
	args := m.Called(ctx, sku, field)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteBySKUs(ctx context.Context, skus []string) (int64, error) {
	args := m.Called(ctx, skus)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockVariantRepository is a mock implementation of catalog.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) FindBySKU(ctx context.Context, sku string) ([]catalog.Variant, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

// MockPublisher is a mock implementation of catalog.StorefrontPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Push(ctx context.Context, products []catalog.Product) (*catalog.PushResult, error) {
	args := m.Called(ctx, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PushResult), args.Error(1)
}

// memoryLayouts is an in-memory grid.LayoutRepository
type memoryLayouts struct {
	mu    sync.Mutex
	items map[string]grid.Layout
}

func newMemoryLayouts() *memoryLayouts {
	return &memoryLayouts{items: make(map[string]grid.Layout)}
}

func (m *memoryLayouts) Load(_ context.Context, table string) (*grid.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[table]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *memoryLayouts) Save(_ context.Context, table string, l grid.Layout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[table] = l
	return nil
}

func (m *memoryLayouts) Delete(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, table)
	return nil
}

// memoryStorage is an in-memory ExportStorage
type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	return "https://files.test/" + key, time.Now().Add(ttl), nil
}

// memoryVariantCache is an in-memory VariantCache
type memoryVariantCache struct {
	items map[string][]catalog.Variant
}

func (m *memoryVariantCache) Get(_ context.Context, sku string) ([]catalog.Variant, bool, error) {
	v, ok := m.items[sku]
	return v, ok, nil
}

func (m *memoryVariantCache) Set(_ context.Context, sku string, v []catalog.Variant) error {
	m.items[sku] = v
	return nil
}

type pageResult struct {
	page *shared.CursorPage[grid.Row]
	err  error
}

// scriptedSource answers page requests from a fixed script
type scriptedSource struct {
	mu      sync.Mutex
	script  []pageResult
	queries []shared.CursorQuery
}

func (s *scriptedSource) FetchPage(_ context.Context, q shared.CursorQuery) (*shared.CursorPage[grid.Row], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.queries)
	s.queries = append(s.queries, q)
	if i >= len(s.script) {
		return &shared.CursorPage[grid.Row]{}, nil
	}
	return s.script[i].page, s.script[i].err
}

func (s *scriptedSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// gatedSource blocks every request until the test releases it. It
// ignores cancellation so that only the generation tag can drop a page.
type gatedSource struct {
	mu      sync.Mutex
	queries []shared.CursorQuery
	gates   []chan pageResult
	started chan int
}

func newGatedSource(n int) *gatedSource {
	s := &gatedSource{started: make(chan int, n)}
	for range n {
		s.gates = append(s.gates, make(chan pageResult, 1))
	}
	return s
}

func (s *gatedSource) FetchPage(_ context.Context, q shared.CursorQuery) (*shared.CursorPage[grid.Row], error) {
	s.mu.Lock()
	i := len(s.queries)
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	s.started <- i
	r := <-s.gates[i]
	return r.page, r.err
}

func rowsPage(next *string, keys ...string) *shared.CursorPage[grid.Row] {
	rows := make([]grid.Row, len(keys))
	for i, k := range keys {
		rows[i] = grid.Row{"sku": k, "title": "Product " + k}
	}
	return &shared.CursorPage[grid.Row]{Items: rows, NextCursor: next}
}

func cursor(s string) *string { return &s }
