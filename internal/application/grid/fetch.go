package grid

import (
	"context"
	"errors"
	"time"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// fetchOutcome is the result of one page request
type fetchOutcome string

const (
	fetchSkipped fetchOutcome = "skipped"
	fetchSuccess fetchOutcome = "success"
	fetchFailure fetchOutcome = "failure"
	fetchStale   fetchOutcome = "stale"
)

// fetchNext requests the page after the current cursor. At most one
// request runs per generation; a response whose generation is no longer
// current is dropped.
func (e *Engine) fetchNext(ctx context.Context) fetchOutcome {
	e.mu.Lock()
	page := e.store.Page()
	if page.IsLoading || !page.HasMore {
		e.mu.Unlock()
		return fetchSkipped
	}
	generation := e.store.Generation()
	q := shared.CursorQuery{
		Cursor:     page.Cursor,
		PageSize:   e.cfg.PageSize,
		Predicates: grid.ServerPredicates(e.store.Filters(), e.registry),
	}
	e.store.BeginLoad()
	fetchCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	start := time.Now()
	result, err := e.source.FetchPage(fetchCtx, q)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()
	cancel()

	if e.store.Generation() != generation {
		e.logger.Debug("dropping stale page",
			zap.Uint64("generation", generation),
			zap.Uint64("current_generation", e.store.Generation()),
		)
		e.metrics.RecordFetch(ctx, e.cfg.Table, string(fetchStale), elapsed)
		return fetchStale
	}
	e.cancel = nil

	if err != nil {
		e.store.FailLoad(fetchErrorMessage(err))
		e.logger.Warn("page fetch failed", zap.Error(err), zap.Duration("duration", elapsed))
		e.metrics.RecordFetch(ctx, e.cfg.Table, string(fetchFailure), elapsed)
		return fetchFailure
	}

	e.store.AppendRows(result.Items, result.NextCursor)
	e.metrics.RecordFetch(ctx, e.cfg.Table, string(fetchSuccess), elapsed)
	e.logger.Debug("page fetched",
		zap.Int("rows", len(result.Items)),
		zap.Bool("has_more", result.NextCursor != nil),
		zap.Duration("duration", elapsed),
	)
	return fetchSuccess
}

// fill fetches the first page of a server table, or keeps fetching a
// local table until it is exhausted.
func (e *Engine) fill(ctx context.Context) {
	if e.cfg.Mode != grid.ModeLocal {
		e.fetchNext(ctx)
		return
	}
	for range e.cfg.MaxLocalPages {
		if e.fetchNext(ctx) != fetchSuccess {
			return
		}
	}
}

func fetchErrorMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Loading products timed out"
	}
	return "Failed to load products"
}
