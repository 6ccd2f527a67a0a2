package handler

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
)

// ExportReader returns stored exports by key
type ExportReader interface {
	Get(storageKey string) (storage.Object, error)
}

// ExportHandler serves exports kept by the in-memory storage backend.
// With S3 the download links point at the bucket instead.
type ExportHandler struct {
	BaseHandler
	exports ExportReader
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exports ExportReader) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary      Download an exported CSV
// @Tags         exports
// @Router       /exports/{key} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	obj, err := h.exports.Get(key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		h.NotFound(c, "Export not found")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
