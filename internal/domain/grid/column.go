package grid

import (
	"fmt"
	"slices"
)

const (
	MinColumnWidth     = 40
	MaxColumnWidth     = 1200
	DefaultColumnWidth = 150
)

// ClampWidth bounds a width to [MinColumnWidth, MaxColumnWidth]
func ClampWidth(w int) int {
	return max(MinColumnWidth, min(w, MaxColumnWidth))
}

// ColumnDescriptor is the static description of one column
type ColumnDescriptor struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	FilterKind FilterKind `json:"filter_kind"`
	Width      int        `json:"width"`
	Sortable   bool       `json:"sortable"`
	Filterable bool       `json:"filterable"`
	Resizable  bool       `json:"resizable"`
	Editable   bool       `json:"editable"`
	Lockable   bool       `json:"lockable"`
	Options    []string   `json:"options,omitempty"`
	// FilterField is the row field the filter reads; defaults to ID
	FilterField string   `json:"filter_field,omitempty"`
	Renderer    Renderer `json:"renderer"`
}

// Field returns the row field this column's filter reads
func (c ColumnDescriptor) Field() string {
	if c.FilterField != "" {
		return c.FilterField
	}
	return c.ID
}

// Registry is the fixed, ordered set of column descriptors of a table
type Registry struct {
	columns []ColumnDescriptor
	index   map[string]int
}

// NewRegistry validates and indexes descriptors. The argument order is
// the default column order.
func NewRegistry(columns ...ColumnDescriptor) (*Registry, error) {
	r := &Registry{
		columns: make([]ColumnDescriptor, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if c.ID == "" {
			return nil, fmt.Errorf("column id is required")
		}
		if _, dup := r.index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate column id %q", c.ID)
		}
		if c.FilterKind == "" {
			c.FilterKind = FilterNone
		}
		if !c.FilterKind.IsValid() {
			return nil, fmt.Errorf("column %q: unknown filter kind %q", c.ID, c.FilterKind)
		}
		if c.FilterKind == FilterNone {
			c.Filterable = false
		}
		if c.Width == 0 {
			c.Width = DefaultColumnWidth
		}
		c.Width = ClampWidth(c.Width)
		if c.Renderer == "" {
			c.Renderer = RenderText
		}
		r.index[c.ID] = len(r.columns)
		r.columns = append(r.columns, c)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on invalid input
func MustRegistry(columns ...ColumnDescriptor) *Registry {
	r, err := NewRegistry(columns...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the descriptor for id
func (r *Registry) Get(id string) (ColumnDescriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return r.columns[i], true
}

// Has reports whether id is a known column
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the number of columns
func (r *Registry) Len() int { return len(r.columns) }

// Columns returns the descriptors in default order
func (r *Registry) Columns() []ColumnDescriptor {
	return slices.Clone(r.columns)
}

// DefaultOrder returns the column ids in declaration order
func (r *Registry) DefaultOrder() []string {
	ids := make([]string, len(r.columns))
	for i, c := range r.columns {
		ids[i] = c.ID
	}
	return ids
}

// DefaultWidths returns each column's declared width
func (r *Registry) DefaultWidths() map[string]int {
	w := make(map[string]int, len(r.columns))
	for _, c := range r.columns {
		w[c.ID] = c.Width
	}
	return w
}

// IsPermutation reports whether order contains every column id exactly once
func (r *Registry) IsPermutation(order []string) bool {
	if len(order) != len(r.columns) {
		return false
	}
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if !r.Has(id) {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
