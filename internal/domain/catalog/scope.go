package catalog

import "github.com/catalogsync/backend/internal/domain/shared"

// Scope is the subset of products a table shows
type Scope string

const (
	// ScopeCatalog is every normalized product
	ScopeCatalog Scope = "catalog"
	// ScopeSynced is the products ready for the storefront
	ScopeSynced Scope = "synced"
)

// ErrUnknownTable is returned for a table name that is not a scope
var ErrUnknownTable = shared.NewDomainError("UNKNOWN_TABLE", "Unknown table")

// ParseScope validates a table name
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeCatalog, ScopeSynced:
		return Scope(s), nil
	}
	return "", ErrUnknownTable
}
