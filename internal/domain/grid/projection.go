package grid

import (
	"cmp"
	"slices"
	"strings"
)

// Mode says who pages and sorts a table
type Mode string

const (
	// ModeServer tables grow by cursor pages in server order
	ModeServer Mode = "server"
	// ModeLocal tables sort and paginate the loaded rows themselves
	ModeLocal Mode = "local"
)

// HeaderCell is one rendered header
type HeaderCell struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Width     int    `json:"width"`
	Sortable  bool   `json:"sortable"`
	Resizable bool   `json:"resizable"`
	SortDir   string `json:"sort_dir,omitempty"`
	Filtered  bool   `json:"filtered"`
}

// FilterCell is one cell of the filter row
type FilterCell struct {
	ID         string      `json:"id"`
	Kind       FilterKind  `json:"kind"`
	Filterable bool        `json:"filterable"`
	Value      FilterValue `json:"value,omitempty"`
	Options    []string    `json:"options,omitempty"`
}

// Cell is one rendered body cell
type Cell struct {
	ColumnID string `json:"column_id"`
	Value    any    `json:"value"`
	Text     string `json:"text"`
	Editable bool   `json:"editable,omitempty"`
	Locked   bool   `json:"locked,omitempty"`
}

// ProjectedRow is one rendered body row
type ProjectedRow struct {
	Key      string `json:"key"`
	Selected bool   `json:"selected"`
	Cells    []Cell `json:"cells"`
}

// Projection is the render-ready view of a grid state
type Projection struct {
	Headers       []HeaderCell   `json:"headers"`
	FilterRow     []FilterCell   `json:"filter_row"`
	Rows          []ProjectedRow `json:"rows"`
	LoadedCount   int            `json:"loaded_count"`
	MatchedCount  int            `json:"matched_count"`
	SelectedCount int            `json:"selected_count"`
	PageIndex     int            `json:"page_index"`
	PageCount     int            `json:"page_count"`
}

// Project renders a state. It is pure: the same state always yields the
// same projection.
func Project(s State, registry *Registry, mode Mode) Projection {
	visible := FilterRows(s.Rows, s.Filters, registry)

	p := Projection{
		LoadedCount:   len(s.Rows),
		MatchedCount:  len(visible),
		SelectedCount: len(s.Selection),
		PageCount:     1,
	}

	if mode == ModeLocal {
		visible = sortRows(visible, s.Sort, registry)
		visible, p.PageIndex, p.PageCount = paginate(visible, s.Pagination)
	}

	columns := make([]ColumnDescriptor, 0, len(s.Order))
	for _, id := range s.Order {
		if col, ok := registry.Get(id); ok {
			columns = append(columns, col)
		}
	}

	for _, col := range columns {
		h := HeaderCell{
			ID:        col.ID,
			Label:     col.Label,
			Width:     cmp.Or(s.Widths[col.ID], col.Width),
			Sortable:  col.Sortable,
			Resizable: col.Resizable,
		}
		if _, ok := s.Filters[col.ID]; ok {
			h.Filtered = true
		}
		if mode == ModeLocal && s.Sort != nil && s.Sort.ColumnID == col.ID {
			h.SortDir = "asc"
			if s.Sort.Desc {
				h.SortDir = "desc"
			}
		}
		p.Headers = append(p.Headers, h)
		p.FilterRow = append(p.FilterRow, FilterCell{
			ID:         col.ID,
			Kind:       col.FilterKind,
			Filterable: col.Filterable,
			Value:      s.Filters[col.ID],
			Options:    col.Options,
		})
	}

	p.Rows = make([]ProjectedRow, 0, len(visible))
	for _, r := range visible {
		pr := ProjectedRow{
			Key:      r.Key(),
			Selected: s.Selection[r.Key()],
			Cells:    make([]Cell, 0, len(columns)),
		}
		for _, col := range columns {
			v := r[col.ID]
			pr.Cells = append(pr.Cells, Cell{
				ColumnID: col.ID,
				Value:    v,
				Text:     Render(col.Renderer, v),
				Editable: col.Editable,
				Locked:   col.Lockable && truthy(r[col.ID+"_locked"]),
			})
		}
		p.Rows = append(p.Rows, pr)
	}
	return p
}

// FilterRows keeps the rows that satisfy every active filter. Applying it
// to its own output changes nothing.
func FilterRows(rows []Row, filters map[string]FilterValue, registry *Registry) []Row {
	if len(filters) == 0 {
		return slices.Clone(rows)
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if rowMatches(r, filters, registry) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r Row, filters map[string]FilterValue, registry *Registry) bool {
	for id, v := range filters {
		col, ok := registry.Get(id)
		if !ok {
			continue
		}
		if !Matches(r[col.Field()], v) {
			return false
		}
	}
	return true
}

func sortRows(rows []Row, sort *Sort, registry *Registry) []Row {
	if sort == nil || !registry.Has(sort.ColumnID) {
		return rows
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compareCells(a[sort.ColumnID], b[sort.ColumnID])
		if sort.Desc {
			return -c
		}
		return c
	})
	return rows
}

// compareCells orders numbers numerically, dates chronologically and
// everything else by folded text. Empty cells sort first.
func compareCells(a, b any) int {
	as, bs := CellString(a), CellString(b)
	if as == "" || bs == "" {
		return cmp.Compare(boolInt(as != ""), boolInt(bs != ""))
	}
	if x, ok := CellDecimal(a); ok {
		if y, ok := CellDecimal(b); ok {
			return x.Cmp(y)
		}
	}
	if x, ok := CellTime(a); ok {
		if y, ok := CellTime(b); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fold(as), fold(bs))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func paginate(rows []Row, p Pagination) ([]Row, int, int) {
	size := p.PageSize
	if size <= 0 {
		size = DefaultLocalPageSize
	}
	pages := max(1, (len(rows)+size-1)/size)
	index := min(max(p.PageIndex, 0), pages-1)
	start := index * size
	end := min(start+size, len(rows))
	if start >= len(rows) {
		return nil, index, pages
	}
	return rows[start:end], index, pages
}
