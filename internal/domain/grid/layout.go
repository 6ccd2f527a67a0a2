package grid

import "context"

// Layout is the persisted column arrangement of a table
type Layout struct {
	Order  []string       `json:"order"`
	Widths map[string]int `json:"widths"`
}

// LayoutRepository persists one layout per table
type LayoutRepository interface {
	// Load returns the stored layout, or nil when there is none
	Load(ctx context.Context, table string) (*Layout, error)
	Save(ctx context.Context, table string, layout Layout) error
	Delete(ctx context.Context, table string) error
}
