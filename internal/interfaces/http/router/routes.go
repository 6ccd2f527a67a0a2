package router

import (
	"github.com/catalogsync/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// GridRoutes mounts the session routes under /grid/sessions. actionMiddleware
// wraps the bulk actions only.
func GridRoutes(h *handler.GridHandler, actionMiddleware ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("grid", "/grid/sessions")
	g.POST("", h.Open)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Close)

	g.PUT("/:id/filters/:column", h.SetFilter)
	g.DELETE("/:id/filters", h.ClearFilters)
	g.POST("/:id/load-more", h.LoadMore)

	g.PUT("/:id/columns/order", h.SetColumnOrder)
	g.POST("/:id/columns/reset", h.ResetColumns)
	g.PUT("/:id/columns/:column/width", h.SetColumnWidth)
	g.POST("/:id/pointer", h.Pointer)

	g.PUT("/:id/sort", h.SetSort)
	g.PUT("/:id/page", h.SetPage)

	g.POST("/:id/selection/toggle", h.ToggleSelection)
	g.PUT("/:id/selection", h.SetSelection)
	g.DELETE("/:id/selection", h.ClearSelection)
	g.POST("/:id/selection/filtered", h.SelectFiltered)

	g.PATCH("/:id/rows/:sku", h.EditField)

	actions := g.Group("actions", "/:id/actions").Use(actionMiddleware...)
	actions.POST("/approve", h.Approve)
	actions.POST("/push", h.Push)
	actions.POST("/delete", h.Delete)
	actions.POST("/export", h.Export)
	return g
}

// ProductRoutes mounts product operations outside a session
func ProductRoutes(h *handler.ProductHandler) *DomainGroup {
	g := NewDomainGroup("products", "/products")
	g.POST("/unlock-field", h.UnlockField)
	g.GET("/:sku/variants", h.Variants)
	return g
}

// ExportRoutes serves exports held by the in-memory storage backend
func ExportRoutes(h *handler.ExportHandler) *DomainGroup {
	g := NewDomainGroup("exports", "/exports")
	g.GET("/*key", h.Download)
	return g
}

// SystemRoutes mounts health and info
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/health", h.Health)
	g.GET("/system/info", h.GetSystemInfo)
	return g
}
