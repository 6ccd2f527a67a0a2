package grid

// KeyField is the column every row is identified by
const KeyField = "sku"

// Row is a flat record keyed by column id. Rows are treated as immutable
// once handed to the store; an edit replaces the whole row.
type Row map[string]any

// Key returns the row identity, or "" when the row has none
func (r Row) Key() string {
	k, _ := r[KeyField].(string)
	return k
}

// Clone returns a shallow copy
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
