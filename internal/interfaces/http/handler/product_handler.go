package handler

import (
	"strings"

	appgrid "github.com/catalogsync/backend/internal/application/grid"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler serves product operations that live outside a session
type ProductHandler struct {
	BaseHandler
	service *appgrid.Service
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service *appgrid.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// UnlockField godoc
// @Summary      Let distributor syncs overwrite a field again
// @Tags         products
// @Router       /products/unlock-field [post]
func (h *ProductHandler) UnlockField(c *gin.Context) {
	var req UnlockFieldRequest
	if !h.bind(c, &req) {
		return
	}
	req.SKU = strings.TrimSpace(req.SKU)
	req.Field = strings.TrimSpace(req.Field)
	if req.SKU == "" || req.Field == "" {
		h.BadRequest(c, "Missing sku or field")
		return
	}
	if err := h.service.UnlockField(c.Request.Context(), req.SKU, req.Field); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"sku": req.SKU, "field": req.Field, "locked": false})
}

// VariantsResponse lists the offers for a SKU
type VariantsResponse struct {
	SKU      string            `json:"sku"`
	Variants []catalog.Variant `json:"variants"`
}

// Variants godoc
// @Summary      List the distributors a SKU is available from
// @Tags         products
// @Router       /products/{sku}/variants [get]
func (h *ProductHandler) Variants(c *gin.Context) {
	sku := c.Param("sku")
	variants, err := h.service.Variants(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if variants == nil {
		variants = []catalog.Variant{}
	}
	h.Success(c, VariantsResponse{SKU: sku, Variants: variants})
}
