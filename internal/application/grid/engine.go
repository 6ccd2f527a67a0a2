package grid

import (
	"context"
	"sync"
	"time"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EngineConfig configures one grid engine
type EngineConfig struct {
	Table         string
	Mode          grid.Mode
	PageSize      int
	DragThreshold float64
	// MaxLocalPages bounds how many pages a local table loads at once
	MaxLocalPages int
}

// Engine is one grid session. Its mutex serializes every mutation; remote
// fetches run outside the lock and re-enter it to merge their result.
type Engine struct {
	mu sync.Mutex

	id       string
	cfg      EngineConfig
	registry *grid.Registry
	store    *grid.Store
	gestures *grid.Controller
	source   grid.RowSource
	metrics  Metrics
	logger   *zap.Logger

	// cancel aborts the in-flight fetch
	cancel     context.CancelFunc
	lastActive time.Time
	now        func() time.Time
}

// NewEngine creates an engine over a column registry and a row source
func NewEngine(id string, cfg EngineConfig, registry *grid.Registry, source grid.RowSource, metrics Metrics, logger *zap.Logger) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = shared.DefaultPageSize
	}
	if cfg.Mode == "" {
		cfg.Mode = grid.ModeServer
	}
	if cfg.MaxLocalPages <= 0 {
		cfg.MaxLocalPages = 20
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		id:         id,
		cfg:        cfg,
		registry:   registry,
		store:      grid.NewStore(registry),
		gestures:   grid.NewController(cfg.DragThreshold),
		source:     source,
		metrics:    metrics,
		logger:     logger.With(zap.String("session_id", id), zap.String("table", cfg.Table)),
		lastActive: time.Now(),
		now:        time.Now,
	}
}

// ID returns the session id
func (e *Engine) ID() string { return e.id }

// Table returns the table the session shows
func (e *Engine) Table() string { return e.cfg.Table }

// Mode returns how the table pages
func (e *Engine) Mode() grid.Mode { return e.cfg.Mode }

// Registry returns the column registry
func (e *Engine) Registry() *grid.Registry { return e.registry }

// LastActive returns when the session was last used
func (e *Engine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

func (e *Engine) touch() {
	e.lastActive = e.now()
}

// Close aborts any in-flight fetch
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelInflight()
}

func (e *Engine) cancelInflight() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Snapshot is the full observable state of a session
type Snapshot struct {
	SessionID  string                      `json:"session_id"`
	Table      string                      `json:"table"`
	Mode       grid.Mode                   `json:"mode"`
	Order      []string                    `json:"order"`
	Widths     map[string]int              `json:"widths"`
	Filters    map[string]grid.FilterValue `json:"filters"`
	Selection  []string                    `json:"selection"`
	Page       grid.PageState              `json:"page"`
	Sort       *grid.Sort                  `json:"sort,omitempty"`
	Pagination grid.Pagination             `json:"pagination"`
	Notice     *grid.Notice                `json:"notice,omitempty"`
	Generation uint64                      `json:"generation"`
	Gesture    grid.GestureState           `json:"gesture"`
	Projection grid.Projection             `json:"projection"`
}

// Snapshot copies the state under the lock and projects it outside
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	state := e.store.Snapshot()
	selection := e.store.Selection()
	gesture := e.gestures.State()
	e.mu.Unlock()

	return &Snapshot{
		SessionID:  e.id,
		Table:      e.cfg.Table,
		Mode:       e.cfg.Mode,
		Order:      state.Order,
		Widths:     state.Widths,
		Filters:    state.Filters,
		Selection:  selection,
		Page:       state.Page,
		Sort:       state.Sort,
		Pagination: state.Pagination,
		Notice:     state.Notice,
		Generation: state.Generation,
		Gesture:    gesture,
		Projection: grid.Project(state, e.registry, e.cfg.Mode),
	}
}

// SetFilter changes one column filter. A change to the active set resets
// the window and fetches the first page of the new generation.
func (e *Engine) SetFilter(ctx context.Context, columnID string, v grid.FilterValue) error {
	e.mu.Lock()
	e.touch()
	changed, err := e.store.SetFilter(columnID, v)
	if changed {
		e.cancelInflight()
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		e.fill(ctx)
	}
	return nil
}

// ClearFilters removes every filter and refetches
func (e *Engine) ClearFilters(ctx context.Context) {
	e.mu.Lock()
	e.touch()
	changed := e.store.ClearFilters()
	if changed {
		e.cancelInflight()
	}
	e.mu.Unlock()

	if changed {
		e.fill(ctx)
	}
}

// Refresh discards the window and fetches it again
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	e.touch()
	e.cancelInflight()
	e.store.Reset()
	e.mu.Unlock()

	e.fill(ctx)
}

// LoadMore fetches the next page. It is a no-op while a fetch is in
// flight or once the sequence is exhausted.
func (e *Engine) LoadMore(ctx context.Context) {
	e.mu.Lock()
	e.touch()
	e.mu.Unlock()

	if e.cfg.Mode == grid.ModeLocal {
		e.fill(ctx)
		return
	}
	e.fetchNext(ctx)
}

// SetColumnOrder applies a full column order. A non-permutation is
// dropped and logged.
func (e *Engine) SetColumnOrder(order []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.store.SetColumnOrder(order) {
		e.logger.Debug("column order rejected",
			zap.String("kind", string(grid.KindInvalidReorder)),
			zap.Strings("order", order),
		)
		return false
	}
	return true
}

// MoveColumn moves one column onto another's position
func (e *Engine) MoveColumn(from, to string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.MoveColumn(from, to)
}

// SetColumnWidth resizes one column
func (e *Engine) SetColumnWidth(id string, width int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.SetColumnWidth(id, width)
}

// ResetColumns restores the default order and widths
func (e *Engine) ResetColumns() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.store.ResetColumnOrder()
	e.store.ResetColumnWidths()
}

// RestoreLayout applies a persisted layout
func (e *Engine) RestoreLayout(l *grid.Layout) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.RestoreLayout(l.Order, l.Widths)
}

// Layout returns the current column layout
func (e *Engine) Layout() grid.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return grid.Layout{Order: e.store.Order(), Widths: e.store.Widths()}
}

// HandlePointer feeds a pointer event to the reorder/resize controller.
// The second result reports whether the gesture finished.
func (e *Engine) HandlePointer(ev grid.PointerEvent) (grid.Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	out := e.gestures.Handle(ev, e.store)
	if out == grid.OutcomeInvalidReorder {
		e.logger.Debug("column move rejected", zap.String("kind", string(grid.KindInvalidReorder)))
	}
	return out, e.gestures.State().Phase == grid.PhaseIdle
}

// SetSort sets the local sort
func (e *Engine) SetSort(columnID string, desc bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.SetSort(columnID, desc)
}

// SetPage sets the local page index and, when positive, the page size
func (e *Engine) SetPage(index, size int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if size > 0 && size != e.store.Pagination().PageSize {
		e.store.SetPageSize(size)
	}
	return e.store.SetPageIndex(index)
}

// ToggleSelection flips one loaded row
func (e *Engine) ToggleSelection(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.ToggleSelection(key)
}

// SetSelection replaces the selection
func (e *Engine) SetSelection(keys []string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return e.store.SetSelection(keys)
}

// ClearSelection empties the selection
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.store.ClearSelection()
}

// SelectFiltered adds every loaded row that passes the active filters
func (e *Engine) SelectFiltered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	visible := grid.FilterRows(e.store.Rows(), e.store.Filters(), e.registry)
	keys := make([]string, len(visible))
	for i, r := range visible {
		keys[i] = r.Key()
	}
	return e.store.SelectKeys(keys)
}

// Selection returns the selected keys in load order
func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Selection()
}

// SelectedRows returns the selected rows in load order
func (e *Engine) SelectedRows() []grid.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := e.store.Selection()
	rows := make([]grid.Row, 0, len(keys))
	for _, k := range keys {
		if r, ok := e.store.Row(k); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// HasRow reports whether key is loaded
func (e *Engine) HasRow(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.store.Row(key)
	return ok
}

// ReplaceRow swaps in the stored version of an edited row
func (e *Engine) ReplaceRow(r grid.Row) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.ReplaceRow(r)
}

// RemoveRows drops deleted rows from the window
func (e *Engine) RemoveRows(keys []string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.RemoveRows(keys)
}

// Fail surfaces an error of the given kind
func (e *Engine) Fail(kind grid.ErrorKind, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetNotice(kind, message)
}

// Succeed clears a surfaced error of the given kind
func (e *Engine) Succeed(kind grid.ErrorKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.ClearNotice(kind)
}
