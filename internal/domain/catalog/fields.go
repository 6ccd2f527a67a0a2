package catalog

import (
	"slices"
	"strings"

	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FieldType is the value type of an editable field
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
)

// maxTextLength bounds a manually edited text value
const maxTextLength = 10000

// editableFields are the fields a user may edit in the grid. Every one of
// them is lockable: a manual edit pins it against distributor syncs.
var editableFields = map[string]FieldType{
	"title":            FieldText,
	"description":      FieldText,
	"brand":            FieldText,
	"vendor":           FieldText,
	"product_type":     FieldText,
	"tags":             FieldText,
	"meta_title":       FieldText,
	"meta_description": FieldText,
	"upc":              FieldText,
	"shippingCost":     FieldNumber,
}

// flagFields can be set in bulk
var flagFields = map[string]bool{
	"approved_for_sync":    true,
	"approved_for_shopify": true,
	"synced_to_shopify":    true,
	"blocked":              true,
}

var (
	ErrFieldNotEditable = shared.NewDomainError("FIELD_NOT_EDITABLE", "Field cannot be edited")
	ErrFieldNotLockable = shared.NewDomainError("FIELD_NOT_LOCKABLE", "Field cannot be locked")
	ErrFieldNotFlag     = shared.NewDomainError("FIELD_NOT_FLAG", "Field cannot be updated in bulk")
	ErrInvalidValue     = shared.NewDomainError("INVALID_VALUE", "Invalid value for field")
)

// LockableFields lists the lockable fields in a stable order
func LockableFields() []string {
	fields := make([]string, 0, len(editableFields))
	for f := range editableFields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// IsLockable reports whether field carries a lock flag
func IsLockable(field string) bool {
	_, ok := editableFields[field]
	return ok
}

// IsFlagField reports whether field is a bulk-updatable flag
func IsFlagField(field string) bool {
	return flagFields[field]
}

// NormalizeEdit validates a manual edit and converts the value to the
// field's type: text is trimmed, numbers become non-negative decimals.
func NormalizeEdit(field string, value any) (any, error) {
	typ, ok := editableFields[field]
	if !ok {
		return nil, ErrFieldNotEditable
	}

	switch typ {
	case FieldNumber:
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return decimal.Zero, nil
		}
		d, ok := grid.CellDecimal(value)
		if !ok || d.IsNegative() {
			return nil, shared.NewDomainError(ErrInvalidValue.Code, field+" must be a non-negative number")
		}
		return d, nil
	default:
		var s string
		switch v := value.(type) {
		case nil:
		case string:
			s = v
		default:
			return nil, shared.NewDomainError(ErrInvalidValue.Code, field+" must be text")
		}
		s = strings.TrimSpace(s)
		if len(s) > maxTextLength {
			return nil, shared.NewDomainError(ErrInvalidValue.Code, field+" is too long")
		}
		return s, nil
	}
}
