package storage

import (
	"context"
	"fmt"
	"time"

	appgrid "github.com/catalogsync/backend/internal/application/grid"
	infraconfig "github.com/catalogsync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewExportStorage builds the configured backend. For s3 the bucket is
// created when missing; the memory backend serves links under localBaseURL.
func NewExportStorage(ctx context.Context, cfg *infraconfig.StorageConfig, localBaseURL string, logger *zap.Logger) (appgrid.ExportStorage, error) {
	switch cfg.Backend {
	case infraconfig.StorageBackendS3:
		s, err := NewS3ExportStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 export storage", zap.String("bucket", s.Bucket()))
		return s, nil
	case infraconfig.StorageBackendStub, "":
		logger.Warn("Using in-memory export storage; exports are lost on restart")
		return NewMemoryExportStorage(localBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
