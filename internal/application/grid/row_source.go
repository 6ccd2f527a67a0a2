package grid

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
)

// productRowSource pages one product scope as grid rows
type productRowSource struct {
	repo  catalog.ProductRepository
	scope catalog.Scope
}

// NewProductRowSource adapts a product repository to a grid row source
func NewProductRowSource(repo catalog.ProductRepository, scope catalog.Scope) grid.RowSource {
	return &productRowSource{repo: repo, scope: scope}
}

func (s *productRowSource) FetchPage(ctx context.Context, q shared.CursorQuery) (*shared.CursorPage[grid.Row], error) {
	page, err := s.repo.FindPage(ctx, s.scope, q)
	if err != nil {
		return nil, err
	}
	rows := make([]grid.Row, len(page.Items))
	for i := range page.Items {
		rows[i] = page.Items[i].ToRow()
	}
	return &shared.CursorPage[grid.Row]{
		Items:      rows,
		NextCursor: page.NextCursor,
		TotalCount: page.TotalCount,
	}, nil
}
