package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Resource and state error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Grid and
// catalog domain codes are passed through unchanged and listed here too.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// grid sessions
	"SESSION_NOT_FOUND":     http.StatusNotFound,
	"UNKNOWN_TABLE":         http.StatusBadRequest,
	"UNKNOWN_COLUMN":        http.StatusNotFound,
	"COLUMN_NOT_FILTERABLE": http.StatusBadRequest,
	"COLUMN_NOT_SORTABLE":   http.StatusBadRequest,
	"FILTER_KIND_MISMATCH":  http.StatusBadRequest,
	"INVALID_FILTER":        http.StatusBadRequest,
	"ROW_NOT_LOADED":        http.StatusConflict,
	"NOTHING_SELECTED":      http.StatusUnprocessableEntity,
	"EXPORT_UNAVAILABLE":    http.StatusServiceUnavailable,

	// catalog
	"INVALID_SKU":        http.StatusBadRequest,
	"INVALID_VALUE":      http.StatusBadRequest,
	"FIELD_NOT_EDITABLE": http.StatusUnprocessableEntity,
	"FIELD_NOT_LOCKABLE": http.StatusUnprocessableEntity,
	"FIELD_NOT_FLAG":     http.StatusUnprocessableEntity,

	// storefront
	"NOTHING_TO_PUSH":             http.StatusUnprocessableEntity,
	"STOREFRONT_UNAVAILABLE":      http.StatusServiceUnavailable,
	"STOREFRONT_AUTH_FAILED":      http.StatusBadGateway,
	"STOREFRONT_RATE_LIMITED":     http.StatusTooManyRequests,
	"STOREFRONT_REJECTED":         http.StatusUnprocessableEntity,
	"STOREFRONT_INVALID_RESPONSE": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the shared domain codes to the ERR_ form
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"ALREADY_EXISTS":      ErrCodeConflict,
	"SERVICE_UNAVAILABLE": ErrCodeUnavailable,
	"VALIDATION_ERROR":    ErrCodeValidation,
	"BAD_REQUEST":         ErrCodeBadRequest,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"REQUEST_TOO_LARGE":   ErrCodeTooLarge,
	"RATE_LIMIT_EXCEEDED": ErrCodeRateLimited,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
