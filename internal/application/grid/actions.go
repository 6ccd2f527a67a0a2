package grid

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNothingSelected   = shared.NewDomainError("NOTHING_SELECTED", "No rows selected")
	ErrExportUnavailable = shared.NewDomainError("EXPORT_UNAVAILABLE", "Export storage is not configured")
)

const (
	actionEdit    = "edit"
	actionApprove = "approve"
	actionPush    = "push"
	actionDelete  = "delete"
	actionExport  = "export"
	actionUnlock  = "unlock"
)

// EditField writes one field of a loaded row. The row changes only after
// the store confirms; a failed write leaves it as it was and surfaces a
// write failure.
func (s *Service) EditField(ctx context.Context, e *Engine, sku, field string, value any) error {
	if !e.HasRow(sku) {
		return grid.ErrRowNotLoaded
	}
	col, ok := e.Registry().Get(field)
	if !ok || !col.Editable {
		return catalog.ErrFieldNotEditable
	}
	normalized, err := catalog.NormalizeEdit(field, value)
	if err != nil {
		return err
	}

	product, err := s.products.UpdateField(ctx, sku, field, normalized)
	if err != nil {
		s.writeFailed(ctx, e, actionEdit, err, 1)
		return err
	}

	e.ReplaceRow(product.ToRow())
	e.Succeed(grid.KindWriteFailure)
	s.metrics.RecordAction(ctx, e.Table(), actionEdit, "success", 1)
	s.logger.Info("field updated",
		zap.String("session_id", e.ID()),
		zap.String("sku", sku),
		zap.String("field", field),
	)
	return nil
}

// Approve sends the selected products to the synced table and reloads
// the window, which also clears the selection.
func (s *Service) Approve(ctx context.Context, e *Engine) (int64, error) {
	skus := e.Selection()
	if len(skus) == 0 {
		return 0, ErrNothingSelected
	}

	n, err := s.products.BulkUpdateField(ctx, skus, "approved_for_sync", true)
	if err != nil {
		s.writeFailed(ctx, e, actionApprove, err, len(skus))
		return 0, err
	}

	e.Succeed(grid.KindWriteFailure)
	s.metrics.RecordAction(ctx, e.Table(), actionApprove, "success", len(skus))
	e.Refresh(ctx)
	return n, nil
}

// Push sends the selected products to the storefront. The batch succeeds
// or fails as a whole; on success the products are marked synced.
func (s *Service) Push(ctx context.Context, e *Engine) (*catalog.PushResult, error) {
	skus := e.Selection()
	if len(skus) == 0 {
		e.Fail(grid.KindWriteFailure, catalog.ErrNothingToPush.Message)
		s.metrics.RecordAction(ctx, e.Table(), actionPush, "failure", 0)
		return nil, catalog.ErrNothingToPush
	}

	products, err := s.products.FindBySKUs(ctx, skus)
	if err != nil {
		s.writeFailed(ctx, e, actionPush, err, len(skus))
		return nil, err
	}

	result, err := s.publisher.Push(ctx, products)
	if err != nil {
		s.writeFailed(ctx, e, actionPush, err, len(skus))
		return nil, err
	}

	if _, err := s.products.BulkUpdateField(ctx, skus, "synced_to_shopify", true); err != nil {
		s.writeFailed(ctx, e, actionPush, err, len(skus))
		return nil, fmt.Errorf("pushed but failed to mark products synced: %w", err)
	}
	s.reloadRows(ctx, skus)

	e.Succeed(grid.KindWriteFailure)
	s.metrics.RecordAction(ctx, e.Table(), actionPush, "success", len(skus))
	s.logger.Info("products pushed to storefront",
		zap.String("session_id", e.ID()),
		zap.Int("count", len(skus)),
	)
	return result, nil
}

// Delete removes the selected products
func (s *Service) Delete(ctx context.Context, e *Engine) (int64, error) {
	skus := e.Selection()
	if len(skus) == 0 {
		return 0, ErrNothingSelected
	}

	n, err := s.products.DeleteBySKUs(ctx, skus)
	if err != nil {
		s.writeFailed(ctx, e, actionDelete, err, len(skus))
		return 0, err
	}

	for _, other := range s.sessions.All() {
		other.RemoveRows(skus)
	}
	e.Succeed(grid.KindWriteFailure)
	s.metrics.RecordAction(ctx, e.Table(), actionDelete, "success", len(skus))
	return n, nil
}

// ExportResult locates an exported file
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}

// Export writes the selected rows as CSV in the current column order
func (s *Service) Export(ctx context.Context, e *Engine) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportUnavailable
	}
	rows := e.SelectedRows()
	if len(rows) == 0 {
		return nil, ErrNothingSelected
	}

	data, err := encodeCSV(e.Layout().Order, e.Registry(), rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s/%s.csv", e.Table(), s.now().UTC().Format("2006-01-02"), uuid.NewString())
	if err := s.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		s.metrics.RecordAction(ctx, e.Table(), actionExport, "failure", len(rows))
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.cfg.ExportURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}

	s.metrics.RecordAction(ctx, e.Table(), actionExport, "success", len(rows))
	return &ExportResult{Key: key, URL: url, ExpiresAt: expiresAt, Rows: len(rows)}, nil
}

func encodeCSV(order []string, registry *grid.Registry, rows []grid.Row) ([]byte, error) {
	var columns []grid.ColumnDescriptor
	for _, id := range order {
		col, ok := registry.Get(id)
		if !ok || col.Renderer == grid.RenderSelect {
			continue
		}
		columns = append(columns, col)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Label
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = grid.CellString(r[col.ID])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// UnlockField lets distributor syncs overwrite a manually edited field
// again. Open sessions that have the product loaded see the change.
func (s *Service) UnlockField(ctx context.Context, sku, field string) error {
	if sku == "" || field == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Missing sku or field")
	}
	if !catalog.IsLockable(field) {
		return catalog.ErrFieldNotLockable
	}
	if err := s.products.UnlockField(ctx, sku, field); err != nil {
		s.metrics.RecordAction(ctx, "", actionUnlock, "failure", 1)
		return err
	}
	s.reloadRows(ctx, []string{sku})
	s.metrics.RecordAction(ctx, "", actionUnlock, "success", 1)
	return nil
}

// Variants returns the distributor offers for a SKU, cheapest first
func (s *Service) Variants(ctx context.Context, sku string) ([]catalog.Variant, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, sku)
		if err != nil {
			s.logger.Warn("variant cache read failed", zap.String("sku", sku), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	variants, err := s.variants.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sku, variants); err != nil {
			s.logger.Warn("variant cache write failed", zap.String("sku", sku), zap.Error(err))
		}
	}
	return variants, nil
}

// reloadRows refreshes the given products in every session that has them loaded
func (s *Service) reloadRows(ctx context.Context, skus []string) {
	products, err := s.products.FindBySKUs(ctx, skus)
	if err != nil {
		s.logger.Warn("failed to reload rows", zap.Strings("skus", skus), zap.Error(err))
		return
	}
	for _, e := range s.sessions.All() {
		for i := range products {
			e.ReplaceRow(products[i].ToRow())
		}
	}
}

func (s *Service) writeFailed(ctx context.Context, e *Engine, action string, err error, rows int) {
	msg := "Failed to save changes"
	var de *shared.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	e.Fail(grid.KindWriteFailure, msg)
	s.metrics.RecordAction(ctx, e.Table(), action, "failure", rows)
	s.logger.Warn("grid write failed",
		zap.String("session_id", e.ID()),
		zap.String("action", action),
		zap.Error(err),
	)
}
