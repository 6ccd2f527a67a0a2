package handler

import (
	appgrid "github.com/catalogsync/backend/internal/application/grid"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// GridHandler exposes grid sessions over HTTP. Every session route
// answers with the session snapshot after the change.
type GridHandler struct {
	BaseHandler
	service *appgrid.Service
}

// NewGridHandler creates a new GridHandler
func NewGridHandler(service *appgrid.Service) *GridHandler {
	return &GridHandler{service: service}
}

// session resolves :id or answers 404 and returns nil. Logs written for the
// rest of the request carry the session id.
func (h *GridHandler) session(c *gin.Context) *appgrid.Engine {
	e, err := h.service.Session(c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return nil
	}
	c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), e.ID()))
	return e
}

// Open godoc
// @Summary      Open a grid session
// @Tags         grid
// @Router       /grid/sessions [post]
func (h *GridHandler) Open(c *gin.Context) {
	var req OpenSessionRequest
	if !h.bind(c, &req) {
		return
	}
	snap, err := h.service.Open(c.Request.Context(), req.Table)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, snap)
}

// Get godoc
// @Summary      Get a session snapshot
// @Tags         grid
// @Router       /grid/sessions/{id} [get]
func (h *GridHandler) Get(c *gin.Context) {
	if e := h.session(c); e != nil {
		h.Success(c, e.Snapshot())
	}
}

// Close godoc
// @Summary      Close a grid session
// @Tags         grid
// @Router       /grid/sessions/{id} [delete]
func (h *GridHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetFilter godoc
// @Summary      Set one column filter
// @Tags         grid
// @Router       /grid/sessions/{id}/filters/{column} [put]
func (h *GridHandler) SetFilter(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req SetFilterRequest
	if !h.bind(c, &req) {
		return
	}

	col, ok := e.Registry().Get(c.Param("column"))
	if !ok {
		h.HandleError(c, grid.ErrUnknownColumn)
		return
	}
	if req.Kind != "" && grid.FilterKind(req.Kind) != col.FilterKind {
		h.HandleError(c, grid.ErrFilterKindMismatch)
		return
	}
	value, err := grid.DecodeFilter(col.FilterKind, req.RawFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := e.SetFilter(c.Request.Context(), col.ID, value); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e.Snapshot())
}

// ClearFilters godoc
// @Summary      Clear all filters
// @Tags         grid
// @Router       /grid/sessions/{id}/filters [delete]
func (h *GridHandler) ClearFilters(c *gin.Context) {
	if e := h.session(c); e != nil {
		e.ClearFilters(c.Request.Context())
		h.Success(c, e.Snapshot())
	}
}

// LoadMore godoc
// @Summary      Fetch the next page
// @Tags         grid
// @Router       /grid/sessions/{id}/load-more [post]
func (h *GridHandler) LoadMore(c *gin.Context) {
	if e := h.session(c); e != nil {
		e.LoadMore(c.Request.Context())
		h.Success(c, e.Snapshot())
	}
}

// SetColumnOrder godoc
// @Summary      Reorder columns
// @Tags         grid
// @Router       /grid/sessions/{id}/columns/order [put]
func (h *GridHandler) SetColumnOrder(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req ColumnOrderRequest
	if !h.bind(c, &req) {
		return
	}
	// a non-permutation leaves the order as it was
	if e.SetColumnOrder(req.Order) {
		h.service.SaveLayout(c.Request.Context(), e)
	}
	h.Success(c, e.Snapshot())
}

// ResetColumns godoc
// @Summary      Restore default column order and widths
// @Tags         grid
// @Router       /grid/sessions/{id}/columns/reset [post]
func (h *GridHandler) ResetColumns(c *gin.Context) {
	if e := h.session(c); e != nil {
		h.service.ResetColumns(c.Request.Context(), e)
		h.Success(c, e.Snapshot())
	}
}

// SetColumnWidth godoc
// @Summary      Resize a column
// @Tags         grid
// @Router       /grid/sessions/{id}/columns/{column}/width [put]
func (h *GridHandler) SetColumnWidth(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req ColumnWidthRequest
	if !h.bind(c, &req) {
		return
	}
	if !e.Registry().Has(c.Param("column")) {
		h.HandleError(c, grid.ErrUnknownColumn)
		return
	}
	if e.SetColumnWidth(c.Param("column"), req.Width) {
		h.service.SaveLayout(c.Request.Context(), e)
	}
	h.Success(c, e.Snapshot())
}

// Pointer godoc
// @Summary      Feed a header pointer event
// @Tags         grid
// @Router       /grid/sessions/{id}/pointer [post]
func (h *GridHandler) Pointer(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req PointerRequest
	if !h.bind(c, &req) {
		return
	}
	outcome, finished := e.HandlePointer(req.event())
	// resize moves stream widths; only the finished gesture is persisted
	if finished && (outcome == grid.OutcomeMoved || outcome == grid.OutcomeResized) {
		h.service.SaveLayout(c.Request.Context(), e)
	}
	h.Success(c, PointerResponse{Outcome: outcome, Finished: finished, Snapshot: e.Snapshot()})
}

// SetSort godoc
// @Summary      Sort the local table
// @Tags         grid
// @Router       /grid/sessions/{id}/sort [put]
func (h *GridHandler) SetSort(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req SortRequest
	if !h.bind(c, &req) {
		return
	}
	if err := e.SetSort(req.Column, req.Desc); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e.Snapshot())
}

// SetPage godoc
// @Summary      Move the local table to a page
// @Tags         grid
// @Router       /grid/sessions/{id}/page [put]
func (h *GridHandler) SetPage(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req PageRequest
	if !h.bind(c, &req) {
		return
	}
	e.SetPage(req.Index, req.Size)
	h.Success(c, e.Snapshot())
}

// ToggleSelection godoc
// @Summary      Toggle one row in the selection
// @Tags         grid
// @Router       /grid/sessions/{id}/selection/toggle [post]
func (h *GridHandler) ToggleSelection(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req ToggleSelectionRequest
	if !h.bind(c, &req) {
		return
	}
	if !e.HasRow(req.SKU) {
		h.HandleError(c, grid.ErrRowNotLoaded)
		return
	}
	e.ToggleSelection(req.SKU)
	h.selection(c, e)
}

// SetSelection godoc
// @Summary      Replace the selection
// @Tags         grid
// @Router       /grid/sessions/{id}/selection [put]
func (h *GridHandler) SetSelection(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req SetSelectionRequest
	if !h.bind(c, &req) {
		return
	}
	e.SetSelection(req.SKUs)
	h.selection(c, e)
}

// ClearSelection godoc
// @Summary      Empty the selection
// @Tags         grid
// @Router       /grid/sessions/{id}/selection [delete]
func (h *GridHandler) ClearSelection(c *gin.Context) {
	if e := h.session(c); e != nil {
		e.ClearSelection()
		h.selection(c, e)
	}
}

// SelectFiltered godoc
// @Summary      Select every loaded row passing the filters
// @Tags         grid
// @Router       /grid/sessions/{id}/selection/filtered [post]
func (h *GridHandler) SelectFiltered(c *gin.Context) {
	if e := h.session(c); e != nil {
		e.SelectFiltered()
		h.selection(c, e)
	}
}

func (h *GridHandler) selection(c *gin.Context, e *appgrid.Engine) {
	keys := e.Selection()
	h.Success(c, SelectionResponse{Selected: keys, Count: len(keys)})
}

// EditField godoc
// @Summary      Edit one field of a loaded row
// @Tags         grid
// @Router       /grid/sessions/{id}/rows/{sku} [patch]
func (h *GridHandler) EditField(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	var req EditFieldRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.EditField(c.Request.Context(), e, c.Param("sku"), req.Field, req.Value); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e.Snapshot())
}

// Approve godoc
// @Summary      Send the selection to the synced table
// @Tags         grid
// @Router       /grid/sessions/{id}/actions/approve [post]
func (h *GridHandler) Approve(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	n, err := h.service.Approve(c.Request.Context(), e)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountResponse{Count: n})
}

// Push godoc
// @Summary      Push the selection to the storefront
// @Tags         grid
// @Router       /grid/sessions/{id}/actions/push [post]
func (h *GridHandler) Push(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	result, err := h.service.Push(c.Request.Context(), e)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete the selected products
// @Tags         grid
// @Router       /grid/sessions/{id}/actions/delete [post]
func (h *GridHandler) Delete(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	n, err := h.service.Delete(c.Request.Context(), e)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountResponse{Count: n})
}

// Export godoc
// @Summary      Export the selection as CSV
// @Tags         grid
// @Router       /grid/sessions/{id}/actions/export [post]
func (h *GridHandler) Export(c *gin.Context) {
	e := h.session(c)
	if e == nil {
		return
	}
	result, err := h.service.Export(c.Request.Context(), e)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
