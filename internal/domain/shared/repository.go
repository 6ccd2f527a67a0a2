package shared

// Op is a comparison operator a remote store understands.
type Op string

const (
	OpEq       Op = "eq"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpContains Op = "contains" // case-insensitive substring
)

// Predicate is a single server-side constraint on a field.
type Predicate struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// CursorQuery requests one page of a keyset-ordered sequence.
// A nil Cursor means the start of the sequence.
type CursorQuery struct {
	Cursor     *string
	PageSize   int
	Predicates []Predicate
}

// DefaultPageSize is used when a query does not specify a page size
const DefaultPageSize = 50

// MaxPageSize bounds the size of one page
const MaxPageSize = 500

// Normalize clamps the page size into [1, MaxPageSize].
func (q CursorQuery) Normalize() CursorQuery {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// CursorPage is one page of a cursor-paginated sequence.
// NextCursor is nil when the sequence is exhausted.
type CursorPage[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	TotalCount *int64  `json:"total_count,omitempty"`
}

// HasMore reports whether another page follows
func (p *CursorPage[T]) HasMore() bool {
	return p != nil && p.NextCursor != nil
}
