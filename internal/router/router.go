// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/handler"
	"github.com/easybill/easybill/internal/license"
	"github.com/easybill/easybill/internal/middleware"
)

// RegisterRoutes registers the always-available endpoints: the health
// check, the discovery banner and the activation relay. These never go
// behind the license gate, otherwise an expired install could not
// reactivate itself.
func RegisterRoutes(e *echo.Echo, b *handler.BridgeHandler, l *handler.LicenseHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/", b.Banner)
	e.GET("/auth/callback", b.AuthCallback)
	e.GET("/v1/license/status", l.Status)
	e.POST("/v1/license/activate", l.Activate)
}

// RegisterAPI registers the licensed application surface under /v1 plus
// the mobile bridge. Everything here runs through the license gate.
func RegisterAPI(e *echo.Echo, v *license.Validator,
	orders *handler.OrdersHandler,
	tables *handler.TablesHandler,
	menu *handler.MenuHandler,
	settings *handler.SettingsHandler,
	reports *handler.ReportsHandler,
	prints *handler.PrintHandler,
) {
	g := e.Group("/v1", middleware.LicenseGate(v))

	// Order lifecycle.
	g.POST("/orders", orders.Create)
	g.POST("/orders/save", orders.Save)
	g.POST("/orders/close", orders.Close)
	g.GET("/orders/open", orders.Open)
	g.GET("/orders/pending", orders.Pending)
	g.DELETE("/orders/:id", orders.Delete)

	// Floor plan.
	g.GET("/tables", tables.List)
	g.POST("/tables", tables.Create)
	g.DELETE("/tables/:id", tables.Delete)

	// Menu management.
	g.GET("/categories", menu.ListCategories)
	g.POST("/categories", menu.CreateCategory)
	g.DELETE("/categories/:id", menu.DeleteCategory)
	g.GET("/menu-items", menu.ListItems)
	g.POST("/menu-items", menu.CreateItem)
	g.DELETE("/menu-items/:id", menu.DeleteItem)

	// Settings.
	g.GET("/settings", settings.Get)
	g.POST("/settings", settings.Save)

	// Reports over closed orders.
	g.GET("/reports/sales", reports.Summary)
	g.GET("/reports/items", reports.ByItem)
	g.GET("/reports/daily", reports.ByDay)
	g.GET("/reports/payment-methods", reports.ByPaymentMethod)
	g.GET("/reports/categories", reports.ByCategory)
	g.GET("/reports/export", reports.Export)

	// Printing.
	g.GET("/printers", prints.Printers)
	g.POST("/print/bill", prints.ReprintBill)

	// Companion app bridge: the phone posts carts through the same save
	// flow the desktop uses.
	e.POST("/mobile/order", orders.Save, middleware.LicenseGate(v))
}
