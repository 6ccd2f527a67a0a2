package grid

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// RowSource is the remote store a grid pages through. Pages arrive in
// server order; NextCursor is nil once the sequence is exhausted.
type RowSource interface {
	FetchPage(ctx context.Context, q shared.CursorQuery) (*shared.CursorPage[Row], error)
}
