package grid

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLocalPageSize is the page size of locally paginated tables
const DefaultLocalPageSize = 50

// PageState tracks the server cursor. A nil cursor with HasMore set is
// the start of the sequence.
type PageState struct {
	Cursor    *string `json:"cursor"`
	HasMore   bool    `json:"has_more"`
	IsLoading bool    `json:"is_loading"`
}

// Sort orders locally driven tables
type Sort struct {
	ColumnID string `json:"column_id"`
	Desc     bool   `json:"desc"`
}

// Pagination pages locally driven tables
type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

// Store is the single source of truth for one grid session. It performs
// no I/O and no locking; callers serialize access.
type Store struct {
	registry *Registry

	rows  []Row
	index map[string]int

	order     []string
	widths    map[string]int
	filters   map[string]FilterValue
	selection map[string]struct{}

	page       PageState
	sort       *Sort
	pagination Pagination
	notice     *Notice
	generation uint64

	now func() time.Time
}

// NewStore creates an empty store over the registry's columns
func NewStore(registry *Registry) *Store {
	return &Store{
		registry:   registry,
		index:      make(map[string]int),
		order:      registry.DefaultOrder(),
		widths:     registry.DefaultWidths(),
		filters:    make(map[string]FilterValue),
		selection:  make(map[string]struct{}),
		page:       PageState{HasMore: true},
		pagination: Pagination{PageSize: DefaultLocalPageSize},
		now:        time.Now,
	}
}

// Registry returns the column registry
func (s *Store) Registry() *Registry { return s.registry }

// Generation returns the filter-set generation
func (s *Store) Generation() uint64 { return s.generation }

// SetFilter replaces the filter on one column, or removes it when v is
// a default value. Any change to the active set resets the loaded window.
func (s *Store) SetFilter(columnID string, v FilterValue) (bool, error) {
	col, ok := s.registry.Get(columnID)
	if !ok {
		return false, ErrUnknownColumn
	}
	if !col.Filterable {
		return false, ErrColumnNotFilterable
	}
	if v != nil && v.Kind() != col.FilterKind {
		return false, ErrFilterKindMismatch
	}

	current, active := s.filters[columnID]
	if IsDefault(v) {
		if !active {
			return false, nil
		}
		delete(s.filters, columnID)
	} else {
		if active && equalFilters(current, v) {
			return false, nil
		}
		s.filters[columnID] = v
	}
	s.Reset()
	return true, nil
}

// ClearFilters removes every active filter
func (s *Store) ClearFilters() bool {
	if len(s.filters) == 0 {
		return false
	}
	clear(s.filters)
	s.Reset()
	return true
}

// Reset discards rows, page state and selection and starts a new generation
func (s *Store) Reset() {
	s.rows = nil
	clear(s.index)
	clear(s.selection)
	s.page = PageState{HasMore: true}
	s.pagination.PageIndex = 0
	s.generation++
}

// SetColumnOrder applies order if it is a permutation of the column set
func (s *Store) SetColumnOrder(order []string) bool {
	if !s.registry.IsPermutation(order) {
		return false
	}
	s.order = slices.Clone(order)
	return true
}

// MoveColumn moves from to the position of to, shifting the columns in between
func (s *Store) MoveColumn(from, to string) bool {
	i := slices.Index(s.order, from)
	j := slices.Index(s.order, to)
	if i < 0 || j < 0 || i == j {
		return false
	}
	s.order = arrayMove(s.order, i, j)
	return true
}

func arrayMove(order []string, from, to int) []string {
	out := slices.Clone(order)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

// ResetColumnOrder restores the declaration order
func (s *Store) ResetColumnOrder() {
	s.order = s.registry.DefaultOrder()
}

// SetColumnWidth sets a resizable column's width, clamped to the allowed range
func (s *Store) SetColumnWidth(id string, width int) bool {
	col, ok := s.registry.Get(id)
	if !ok || !col.Resizable {
		return false
	}
	s.widths[id] = ClampWidth(width)
	return true
}

// ColumnWidth returns the current width of a resizable column
func (s *Store) ColumnWidth(id string) (int, bool) {
	col, ok := s.registry.Get(id)
	if !ok || !col.Resizable {
		return 0, false
	}
	return s.widths[id], true
}

// ResetColumnWidths restores declared widths
func (s *Store) ResetColumnWidths() {
	s.widths = s.registry.DefaultWidths()
}

// RestoreLayout applies a persisted layout; invalid parts are ignored
func (s *Store) RestoreLayout(order []string, widths map[string]int) {
	s.SetColumnOrder(order)
	for id, w := range widths {
		s.SetColumnWidth(id, w)
	}
}

// ToggleSelection flips a loaded row's selection
func (s *Store) ToggleSelection(key string) bool {
	if _, loaded := s.index[key]; !loaded {
		return false
	}
	if _, on := s.selection[key]; on {
		delete(s.selection, key)
	} else {
		s.selection[key] = struct{}{}
	}
	return true
}

// SetSelection replaces the selection with the loaded subset of keys
func (s *Store) SetSelection(keys []string) int {
	clear(s.selection)
	return s.SelectKeys(keys)
}

// SelectKeys adds the loaded subset of keys to the selection
func (s *Store) SelectKeys(keys []string) int {
	n := 0
	for _, k := range keys {
		if _, loaded := s.index[k]; loaded {
			s.selection[k] = struct{}{}
			n++
		}
	}
	return n
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	clear(s.selection)
}

// Selection returns the selected keys in load order
func (s *Store) Selection() []string {
	keys := make([]string, 0, len(s.selection))
	for _, r := range s.rows {
		if _, ok := s.selection[r.Key()]; ok {
			keys = append(keys, r.Key())
		}
	}
	return keys
}

// BeginLoad marks a fetch in flight
func (s *Store) BeginLoad() {
	s.page.IsLoading = true
}

// AppendRows merges a fetched page. A row keeps the position it was
// first seen at; later duplicates replace its value. Rows without a key
// are dropped.
func (s *Store) AppendRows(rows []Row, nextCursor *string) {
	for _, r := range rows {
		key := r.Key()
		if key == "" {
			continue
		}
		if i, ok := s.index[key]; ok {
			s.rows[i] = r
			continue
		}
		s.index[key] = len(s.rows)
		s.rows = append(s.rows, r)
	}
	s.page = PageState{
		Cursor:    nextCursor,
		HasMore:   nextCursor != nil,
		IsLoading: false,
	}
	s.ClearNotice(KindFetchFailure)
}

// FailLoad ends a fetch that failed. Rows and HasMore are left alone.
func (s *Store) FailLoad(message string) {
	s.page.IsLoading = false
	s.SetNotice(KindFetchFailure, message)
}

// ReplaceRow swaps in a new version of a loaded row
func (s *Store) ReplaceRow(r Row) bool {
	i, ok := s.index[r.Key()]
	if !ok {
		return false
	}
	s.rows[i] = r
	return true
}

// RemoveRows drops rows from the loaded window and the selection
func (s *Store) RemoveRows(keys []string) int {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := s.index[k]; ok {
			drop[k] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	kept := s.rows[:0]
	for _, r := range s.rows {
		if _, ok := drop[r.Key()]; ok {
			delete(s.selection, r.Key())
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	clear(s.index)
	for i, r := range s.rows {
		s.index[r.Key()] = i
	}
	return len(drop)
}

// Row returns a loaded row by key
func (s *Store) Row(key string) (Row, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.rows[i], true
}

// Rows returns the loaded rows in load order
func (s *Store) Rows() []Row { return slices.Clone(s.rows) }

// Order returns the current column order
func (s *Store) Order() []string { return slices.Clone(s.order) }

// Widths returns the current column widths
func (s *Store) Widths() map[string]int { return maps.Clone(s.widths) }

// Filters returns the active filter set
func (s *Store) Filters() map[string]FilterValue { return maps.Clone(s.filters) }

// Page returns the page state
func (s *Store) Page() PageState { return s.page }

// SetSort sets the local sort. An empty column id clears it.
func (s *Store) SetSort(columnID string, desc bool) error {
	if columnID == "" {
		s.sort = nil
		return nil
	}
	col, ok := s.registry.Get(columnID)
	if !ok {
		return ErrUnknownColumn
	}
	if !col.Sortable {
		return ErrColumnNotSortable
	}
	s.sort = &Sort{ColumnID: columnID, Desc: desc}
	s.pagination.PageIndex = 0
	return nil
}

// Sort returns the local sort, or nil
func (s *Store) Sort() *Sort {
	if s.sort == nil {
		return nil
	}
	cp := *s.sort
	return &cp
}

// SetPageIndex selects a local page. Projection clamps it to the page count.
func (s *Store) SetPageIndex(i int) bool {
	if i < 0 {
		return false
	}
	s.pagination.PageIndex = i
	return true
}

// SetPageSize changes the local page size and returns to the first page
func (s *Store) SetPageSize(n int) bool {
	if n <= 0 {
		return false
	}
	s.pagination = Pagination{PageSize: n}
	return true
}

// Pagination returns the local pagination
func (s *Store) Pagination() Pagination { return s.pagination }

// SetNotice records a surfaced error
func (s *Store) SetNotice(kind ErrorKind, message string) {
	s.notice = &Notice{Kind: kind, Message: message, At: s.now()}
}

// ClearNotice drops the notice if it is of the given kind
func (s *Store) ClearNotice(kind ErrorKind) {
	if s.notice != nil && s.notice.Kind == kind {
		s.notice = nil
	}
}

// Notice returns the last surfaced error, or nil
func (s *Store) Notice() *Notice {
	if s.notice == nil {
		return nil
	}
	cp := *s.notice
	return &cp
}

// State is an immutable copy of the store
type State struct {
	Rows       []Row
	Order      []string
	Widths     map[string]int
	Filters    map[string]FilterValue
	Selection  map[string]bool
	Page       PageState
	Sort       *Sort
	Pagination Pagination
	Notice     *Notice
	Generation uint64
}

// Snapshot copies the store for rendering outside the caller's lock
func (s *Store) Snapshot() State {
	sel := make(map[string]bool, len(s.selection))
	for k := range s.selection {
		sel[k] = true
	}
	return State{
		Rows:       s.Rows(),
		Order:      s.Order(),
		Widths:     s.Widths(),
		Filters:    s.Filters(),
		Selection:  sel,
		Page:       s.page,
		Sort:       s.Sort(),
		Pagination: s.pagination,
		Notice:     s.Notice(),
		Generation: s.generation,
	}
}

func equalFilters(a, b FilterValue) bool {
	switch x := a.(type) {
	case TextFilter:
		y, ok := b.(TextFilter)
		return ok && x == y
	case DropdownFilter:
		y, ok := b.(DropdownFilter)
		return ok && x == y
	case ImageFilter:
		y, ok := b.(ImageFilter)
		return ok && x == y
	case RangeFilter:
		y, ok := b.(RangeFilter)
		return ok && equalDecimal(x.Min, y.Min) && equalDecimal(x.Max, y.Max)
	case DateFilter:
		y, ok := b.(DateFilter)
		return ok && equalTime(x.From, y.From) && equalTime(x.To, y.To)
	}
	return false
}

func equalDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
