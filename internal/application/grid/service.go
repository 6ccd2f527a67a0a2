package grid

import (
	"context"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportStorage stores exported files and hands out download links
type ExportStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// VariantCache caches distributor offers by SKU
type VariantCache interface {
	// Get returns the cached offers and whether there was an entry
	Get(ctx context.Context, sku string) ([]catalog.Variant, bool, error)
	Set(ctx context.Context, sku string, variants []catalog.Variant) error
}

// Config holds grid service settings
type Config struct {
	PageSize      int
	DragThreshold float64
	SessionTTL    time.Duration
	MaxLocalPages int
	ExportURLTTL  time.Duration
}

// Service opens grid sessions over the product store and runs the
// actions that write through to it.
type Service struct {
	sessions  *Sessions
	products  catalog.ProductRepository
	variants  catalog.VariantRepository
	publisher catalog.StorefrontPublisher
	layouts   grid.LayoutRepository
	storage   ExportStorage
	cache     VariantCache
	metrics   Metrics
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// ServiceOption configures optional collaborators
type ServiceOption func(*Service)

// WithLayoutRepository persists column layouts per table
func WithLayoutRepository(r grid.LayoutRepository) ServiceOption {
	return func(s *Service) { s.layouts = r }
}

// WithExportStorage enables CSV export
func WithExportStorage(st ExportStorage) ServiceOption {
	return func(s *Service) { s.storage = st }
}

// WithVariantCache caches distributor offers
func WithVariantCache(c VariantCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records engine and action measurements
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new grid Service
func NewService(
	sessions *Sessions,
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	publisher catalog.StorefrontPublisher,
	cfg Config,
	opts ...ServiceOption,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.ExportURLTTL <= 0 {
		cfg.ExportURLTTL = time.Hour
	}
	s := &Service{
		sessions:  sessions,
		products:  products,
		variants:  variants,
		publisher: publisher,
		cfg:       cfg,
		metrics:   NopMetrics{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the open sessions
func (s *Service) Sessions() *Sessions { return s.sessions }

// Open creates a session for a table, restores its saved layout and
// loads the first page.
func (s *Service) Open(ctx context.Context, table string) (*Snapshot, error) {
	scope, err := catalog.ParseScope(table)
	if err != nil {
		return nil, err
	}

	e := NewEngine(
		uuid.NewString(),
		EngineConfig{
			Table:         string(scope),
			Mode:          catalog.TableMode(scope),
			PageSize:      s.cfg.PageSize,
			DragThreshold: s.cfg.DragThreshold,
			MaxLocalPages: s.cfg.MaxLocalPages,
		},
		catalog.Columns(scope),
		NewProductRowSource(s.products, scope),
		s.metrics,
		s.logger,
	)

	if s.layouts != nil {
		layout, err := s.layouts.Load(ctx, string(scope))
		if err != nil {
			s.logger.Warn("failed to load column layout", zap.String("table", table), zap.Error(err))
		}
		e.RestoreLayout(layout)
	}

	s.sessions.Add(e)
	e.Refresh(ctx)

	s.logger.Info("grid session opened", zap.String("session_id", e.ID()), zap.String("table", table))
	return e.Snapshot(), nil
}

// Session returns an open session
func (s *Service) Session(id string) (*Engine, error) {
	return s.sessions.Get(id)
}

// Close ends a session
func (s *Service) Close(id string) error {
	if !s.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

// EvictIdle closes sessions idle for longer than the session TTL
func (s *Service) EvictIdle() []string {
	evicted := s.sessions.EvictIdle(s.now().Add(-s.cfg.SessionTTL))
	if len(evicted) > 0 {
		s.logger.Info("evicted idle grid sessions", zap.Strings("session_ids", evicted))
	}
	return evicted
}

// SaveLayout persists the session's column layout for its table
func (s *Service) SaveLayout(ctx context.Context, e *Engine) {
	if s.layouts == nil {
		return
	}
	if err := s.layouts.Save(ctx, e.Table(), e.Layout()); err != nil {
		s.logger.Warn("failed to save column layout", zap.String("table", e.Table()), zap.Error(err))
	}
}

// ResetColumns restores default order and widths and forgets the saved layout
func (s *Service) ResetColumns(ctx context.Context, e *Engine) {
	e.ResetColumns()
	if s.layouts == nil {
		return
	}
	if err := s.layouts.Delete(ctx, e.Table()); err != nil {
		s.logger.Warn("failed to clear column layout", zap.String("table", e.Table()), zap.Error(err))
	}
}
