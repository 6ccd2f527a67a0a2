package grid

import (
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// ErrorKind classifies a failure surfaced to the user
type ErrorKind string

const (
	// KindFetchFailure is retryable: the loaded window is kept
	KindFetchFailure ErrorKind = "FETCH_FAILURE"
	// KindInvalidReorder is logged at debug level and never surfaced
	KindInvalidReorder ErrorKind = "INVALID_REORDER"
	// KindWriteFailure is surfaced; the edit is not applied locally
	KindWriteFailure ErrorKind = "WRITE_FAILURE"
)

// Notice is the last error surfaced by the engine
type Notice struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Store mutation rejections
var (
	ErrUnknownColumn       = shared.NewDomainError("UNKNOWN_COLUMN", "Unknown column")
	ErrColumnNotFilterable = shared.NewDomainError("COLUMN_NOT_FILTERABLE", "Column is not filterable")
	ErrColumnNotSortable   = shared.NewDomainError("COLUMN_NOT_SORTABLE", "Column is not sortable")
	ErrFilterKindMismatch  = shared.NewDomainError("FILTER_KIND_MISMATCH", "Filter value does not match the column's filter kind")
	ErrRowNotLoaded        = shared.NewDomainError("ROW_NOT_LOADED", "Row is not loaded")
)
