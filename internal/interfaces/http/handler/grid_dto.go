package handler

import (
	"github.com/catalogsync/backend/internal/domain/grid"
)

// OpenSessionRequest opens a grid session on a table
type OpenSessionRequest struct {
	Table string `json:"table" binding:"required,oneof=catalog synced"`
}

// SetFilterRequest carries a filter in wire form. Kind is optional; when
// present it must match the column's filter kind.
type SetFilterRequest struct {
	Kind string `json:"kind" binding:"omitempty,filterkind"`
	grid.RawFilter
}

// ColumnOrderRequest is a full column order
type ColumnOrderRequest struct {
	Order []string `json:"order" binding:"required,min=1"`
}

// ColumnWidthRequest sets one column width
type ColumnWidthRequest struct {
	Width int `json:"width" binding:"required,gt=0"`
}

// PointerRequest is one pointer event of a header gesture
type PointerRequest struct {
	Type   string  `json:"type" binding:"required,pointertype"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Column string  `json:"column"`
	Region string  `json:"region" binding:"omitempty,oneof=header filter button resize outside"`
}

func (r PointerRequest) event() grid.PointerEvent {
	return grid.PointerEvent{
		Type:   grid.PointerType(r.Type),
		X:      r.X,
		Y:      r.Y,
		Column: r.Column,
		Region: grid.Region(r.Region),
	}
}

// PointerResponse reports what a pointer event finished, if anything
type PointerResponse struct {
	Outcome  grid.Outcome `json:"outcome"`
	Finished bool         `json:"finished"`
	Snapshot any          `json:"snapshot"`
}

// SortRequest sorts the local table by a column
type SortRequest struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// PageRequest moves the local table to a page
type PageRequest struct {
	Index int `json:"index" binding:"gte=0"`
	Size  int `json:"size" binding:"omitempty,min=1,max=500"`
}

// ToggleSelectionRequest flips one row in the selection
type ToggleSelectionRequest struct {
	SKU string `json:"sku" binding:"required"`
}

// SetSelectionRequest replaces the selection
type SetSelectionRequest struct {
	SKUs []string `json:"skus"`
}

// SelectionResponse is the selection after a change
type SelectionResponse struct {
	Selected []string `json:"selected"`
	Count    int      `json:"count"`
}

// EditFieldRequest writes one field of a row. Value is a string for text
// fields and a number or numeric string for money fields.
type EditFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// CountResponse reports how many rows an action touched
type CountResponse struct {
	Count int64 `json:"count"`
}

// UnlockFieldRequest releases a manual edit lock
type UnlockFieldRequest struct {
	SKU   string `json:"sku"`
	Field string `json:"field"`
}
