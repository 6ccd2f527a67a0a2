package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		ColumnDescriptor{ID: "select", Width: 40, Renderer: RenderSelect},
		ColumnDescriptor{ID: "sku", Label: "SKU", FilterKind: FilterText, Filterable: true, Sortable: true, Resizable: true, Width: 120},
		ColumnDescriptor{ID: "title", Label: "Title", FilterKind: FilterText, Filterable: true, Sortable: true, Resizable: true, Editable: true, Lockable: true, Width: 200},
		ColumnDescriptor{ID: "price", Label: "Price", FilterKind: FilterRange, Filterable: true, Sortable: true, Resizable: true, Renderer: RenderMoney, Width: 100},
		ColumnDescriptor{ID: "blocked", Label: "Blocked", FilterKind: FilterDropdown, Filterable: true, Options: []string{"All", "Blocked", "Unblocked"}, Width: 80},
		ColumnDescriptor{ID: "imageUrl", Label: "Image", FilterKind: FilterImage, Filterable: true, FilterField: "imageCount", Renderer: RenderImage, Width: 100},
	)
	require.NoError(t, err)
	return reg
}

func row(sku string, kv ...any) Row {
	r := Row{"sku": sku}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func ptr(s string) *string { return &s }

func TestNewRegistry(t *testing.T) {
	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := NewRegistry(ColumnDescriptor{ID: "a"}, ColumnDescriptor{ID: "a"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown filter kind", func(t *testing.T) {
		_, err := NewRegistry(ColumnDescriptor{ID: "a", FilterKind: "fuzzy"})
		assert.Error(t, err)
	})

	t.Run("none kind is never filterable", func(t *testing.T) {
		reg, err := NewRegistry(ColumnDescriptor{ID: "a", Filterable: true})
		require.NoError(t, err)
		col, _ := reg.Get("a")
		assert.False(t, col.Filterable)
		assert.Equal(t, DefaultColumnWidth, col.Width)
	})
}

func TestStore_SetFilter(t *testing.T) {
	t.Run("default values are never stored", func(t *testing.T) {
		s := NewStore(testRegistry(t))
		changed, err := s.SetFilter("title", TextFilter{Value: "  ", Mode: TextContains})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, s.Filters())

		_, err = s.SetFilter("title", TextFilter{Value: "ab", Mode: TextContains})
		require.NoError(t, err)
		changed, err = s.SetFilter("title", TextFilter{Value: "", Mode: TextContains})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Empty(t, s.Filters())

		for _, v := range s.Filters() {
			assert.False(t, IsDefault(v))
		}
	})

	t.Run("change resets rows, cursor and selection", func(t *testing.T) {
		s := NewStore(testRegistry(t))
		s.AppendRows([]Row{row("A"), row("B")}, ptr("c1"))
		s.ToggleSelection("A")
		gen := s.Generation()

		changed, err := s.SetFilter("price", RangeFilter{Min: dec("10")})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Empty(t, s.Rows())
		assert.Empty(t, s.Selection())
		assert.Equal(t, PageState{HasMore: true}, s.Page())
		assert.Equal(t, gen+1, s.Generation())
	})

	t.Run("same value is not a change", func(t *testing.T) {
		s := NewStore(testRegistry(t))
		_, err := s.SetFilter("price", RangeFilter{Min: dec("10")})
		require.NoError(t, err)
		s.AppendRows([]Row{row("A")}, nil)
		gen := s.Generation()

		changed, err := s.SetFilter("price", RangeFilter{Min: dec("10.0")})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, s.Rows(), 1)
		assert.Equal(t, gen, s.Generation())
	})

	t.Run("rejects unknown, unfilterable and mismatched", func(t *testing.T) {
		s := NewStore(testRegistry(t))
		_, err := s.SetFilter("nope", TextFilter{Value: "x"})
		assert.ErrorIs(t, err, ErrUnknownColumn)
		_, err = s.SetFilter("select", TextFilter{Value: "x"})
		assert.ErrorIs(t, err, ErrColumnNotFilterable)
		_, err = s.SetFilter("price", TextFilter{Value: "x"})
		assert.ErrorIs(t, err, ErrFilterKindMismatch)
		assert.Empty(t, s.Filters())
	})

	t.Run("clear filters", func(t *testing.T) {
		s := NewStore(testRegistry(t))
		assert.False(t, s.ClearFilters())
		_, _ = s.SetFilter("blocked", DropdownFilter{Selected: "Blocked"})
		assert.True(t, s.ClearFilters())
		assert.Empty(t, s.Filters())
	})
}

func TestStore_ColumnOrder(t *testing.T) {
	s := NewStore(testRegistry(t))
	defaults := s.Order()

	t.Run("rejects non-permutations", func(t *testing.T) {
		assert.False(t, s.SetColumnOrder([]string{"sku", "title"}))
		assert.False(t, s.SetColumnOrder([]string{"select", "sku", "sku", "price", "blocked", "imageUrl"}))
		assert.False(t, s.SetColumnOrder([]string{"select", "sku", "nope", "price", "blocked", "imageUrl"}))
		assert.Equal(t, defaults, s.Order())
	})

	t.Run("accepts a permutation", func(t *testing.T) {
		order := []string{"imageUrl", "blocked", "price", "title", "sku", "select"}
		assert.True(t, s.SetColumnOrder(order))
		assert.Equal(t, order, s.Order())
		assert.ElementsMatch(t, defaults, s.Order())
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		s.ResetColumnOrder()
		assert.Equal(t, defaults, s.Order())
	})
}

func TestStore_MoveColumn(t *testing.T) {
	reg := MustRegistry(ColumnDescriptor{ID: "a"}, ColumnDescriptor{ID: "b"}, ColumnDescriptor{ID: "c"})

	tests := []struct {
		from, to string
		want     []string
	}{
		{"a", "c", []string{"b", "c", "a"}},
		{"c", "a", []string{"c", "a", "b"}},
		{"a", "b", []string{"b", "a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.from+" onto "+tt.to, func(t *testing.T) {
			s := NewStore(reg)
			assert.True(t, s.MoveColumn(tt.from, tt.to))
			assert.Equal(t, tt.want, s.Order())
		})
	}

	t.Run("self and unknown are no-ops", func(t *testing.T) {
		s := NewStore(reg)
		assert.False(t, s.MoveColumn("a", "a"))
		assert.False(t, s.MoveColumn("a", "z"))
		assert.Equal(t, []string{"a", "b", "c"}, s.Order())
	})
}

func TestStore_Widths(t *testing.T) {
	s := NewStore(testRegistry(t))

	assert.True(t, s.SetColumnWidth("title", 10))
	assert.Equal(t, MinColumnWidth, s.Widths()["title"])
	assert.True(t, s.SetColumnWidth("title", 5000))
	assert.Equal(t, MaxColumnWidth, s.Widths()["title"])
	assert.False(t, s.SetColumnWidth("select", 90), "select is not resizable")
	assert.False(t, s.SetColumnWidth("nope", 90))

	s.ResetColumnWidths()
	assert.Equal(t, 200, s.Widths()["title"])
}

func TestStore_AppendRows(t *testing.T) {
	s := NewStore(testRegistry(t))

	s.AppendRows([]Row{row("A", "title", "one"), row("B")}, ptr("c1"))
	s.AppendRows([]Row{row("B", "title", "two"), row("C"), {"title": "keyless"}}, nil)

	rows := s.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{rows[0].Key(), rows[1].Key(), rows[2].Key()})
	assert.Equal(t, "two", rows[1]["title"], "later duplicate replaces value in place")
	assert.Equal(t, PageState{Cursor: nil, HasMore: false}, s.Page())
}

func TestStore_FailLoad(t *testing.T) {
	s := NewStore(testRegistry(t))
	s.AppendRows([]Row{row("A")}, ptr("c1"))
	s.BeginLoad()

	s.FailLoad("boom")

	assert.Len(t, s.Rows(), 1)
	assert.Equal(t, PageState{Cursor: ptr("c1"), HasMore: true, IsLoading: false}, s.Page())
	require.NotNil(t, s.Notice())
	assert.Equal(t, KindFetchFailure, s.Notice().Kind)

	s.AppendRows(nil, nil)
	assert.Nil(t, s.Notice(), "a successful fetch clears the fetch notice")
}

func TestStore_Selection(t *testing.T) {
	s := NewStore(testRegistry(t))
	s.AppendRows([]Row{row("A"), row("B"), row("C")}, nil)

	t.Run("only loaded keys are selectable", func(t *testing.T) {
		assert.False(t, s.ToggleSelection("Z"))
		assert.Equal(t, 2, s.SetSelection([]string{"A", "C", "Z"}))
		assert.Equal(t, []string{"A", "C"}, s.Selection())
	})

	t.Run("toggle", func(t *testing.T) {
		assert.True(t, s.ToggleSelection("A"))
		assert.Equal(t, []string{"C"}, s.Selection())
		assert.True(t, s.ToggleSelection("A"))
		assert.Equal(t, []string{"A", "C"}, s.Selection())
	})

	t.Run("survives reorder and resize", func(t *testing.T) {
		s.MoveColumn("sku", "price")
		s.SetColumnWidth("title", 300)
		assert.Equal(t, []string{"A", "C"}, s.Selection())
	})

	t.Run("remove rows drops their selection", func(t *testing.T) {
		assert.Equal(t, 1, s.RemoveRows([]string{"A", "Z"}))
		assert.Equal(t, []string{"C"}, s.Selection())
		_, ok := s.Row("A")
		assert.False(t, ok)
		r, ok := s.Row("C")
		require.True(t, ok)
		assert.Equal(t, "C", r.Key())
	})

	t.Run("clear", func(t *testing.T) {
		s.ClearSelection()
		assert.Empty(t, s.Selection())
	})
}

func TestStore_ReplaceRow(t *testing.T) {
	s := NewStore(testRegistry(t))
	s.AppendRows([]Row{row("A", "title", "old")}, nil)

	assert.True(t, s.ReplaceRow(row("A", "title", "new")))
	assert.False(t, s.ReplaceRow(row("Z")))
	r, _ := s.Row("A")
	assert.Equal(t, "new", r["title"])
}

func TestStore_Sort(t *testing.T) {
	s := NewStore(testRegistry(t))
	assert.ErrorIs(t, s.SetSort("blocked", true), ErrColumnNotSortable)
	assert.ErrorIs(t, s.SetSort("nope", true), ErrUnknownColumn)
	require.NoError(t, s.SetSort("price", true))
	assert.Equal(t, &Sort{ColumnID: "price", Desc: true}, s.Sort())
	require.NoError(t, s.SetSort("", false))
	assert.Nil(t, s.Sort())
}
