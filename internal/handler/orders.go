package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/printing"
	"github.com/easybill/easybill/internal/repository"
	"github.com/easybill/easybill/internal/service"
)

// OrdersHandler exposes the order lifecycle to the UI and the mobile
// bridge. Order state changes go through the order service; printing
// happens here, strictly after the service transaction has committed, so
// a printer problem can never unwind a saved or closed order.
type OrdersHandler struct {
	Service    *service.OrderService
	Tables     *repository.TableRepo
	Menu       *repository.MenuRepo
	Categories *repository.CategoryRepo
	Settings   *repository.SettingsRepo
	Spooler    *printing.Spooler
}

// NewOrdersHandler constructs an OrdersHandler. All dependencies must be
// non-nil.
func NewOrdersHandler(svc *service.OrderService, tables *repository.TableRepo, menu *repository.MenuRepo, categories *repository.CategoryRepo, settings *repository.SettingsRepo, spooler *printing.Spooler) *OrdersHandler {
	if svc == nil || tables == nil || menu == nil || categories == nil || settings == nil || spooler == nil {
		panic("nil dependency passed to NewOrdersHandler")
	}
	return &OrdersHandler{Service: svc, Tables: tables, Menu: menu, Categories: categories, Settings: settings, Spooler: spooler}
}

// Create handles POST /v1/orders: opens an order, optionally bound to a
// table. The assigned token number comes back in the order.
func (h *OrdersHandler) Create(c echo.Context) error {
	var body struct {
		TableID *int64 `json:"table_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	order, err := h.Service.CreateOrder(c.Request().Context(), body.TableID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// Save handles POST /v1/orders/save: the KOT flow. The response carries
// the persisted order plus the outcome of firing the kitchen tickets
// for the newly added lines.
func (h *OrdersHandler) Save(c echo.Context) error {
	var req service.SaveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Service.SaveOrder(c.Request().Context(), req)
	if err != nil {
		return orderError(c, err)
	}

	printResult := h.fireKOT(c.Request().Context(), result.Order, result.KOTItems)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"order":   result.Order,
		"merged":  result.Merged,
		"print":   printResult,
	})
}

// Close handles POST /v1/orders/close: finalizes the order, then renders
// and spools the customer bill from the committed snapshot.
func (h *OrdersHandler) Close(c echo.Context) error {
	var req service.CloseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Service.CloseOrder(c.Request().Context(), req)
	if err != nil {
		return orderError(c, err)
	}

	printResult := h.printBill(c.Request().Context(), result.Order)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"order":       result.Order,
		"bill_number": result.BillNumber,
		"print":       printResult,
	})
}

// Open handles GET /v1/orders/open?table_id=N. A table with no open
// order answers null, not an error: the caller is usually racing a
// close from another view.
func (h *OrdersHandler) Open(c echo.Context) error {
	tableID, err := strconv.ParseInt(c.QueryParam("table_id"), 10, 64)
	if err != nil || tableID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	order, err := h.Service.GetOpenOrder(c.Request().Context(), tableID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, order)
}

// Pending handles GET /v1/orders/pending: all open orders, most recently
// touched first.
func (h *OrdersHandler) Pending(c echo.Context) error {
	orders, err := h.Service.ListPendingOrders(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orders)
}

// Delete handles DELETE /v1/orders/:id. Idempotent by design.
func (h *OrdersHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	if err := h.Service.DeleteOrder(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// orderError translates service and repository errors into responses.
func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	case errors.Is(err, service.ErrInvalidCartLine):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart line"})
	case errors.Is(err, repository.ErrTableNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table does not exist"})
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// tableName resolves a table's display name; empty for takeaway or when
// the table has since been deleted.
func (h *OrdersHandler) tableName(ctx context.Context, tableID *int64) string {
	if tableID == nil {
		return ""
	}
	t, err := h.Tables.GetByID(ctx, *tableID)
	if err != nil {
		return ""
	}
	return t.Name
}

// fireKOT renders and spools kitchen tickets for the given delta lines,
// one job per target printer. Best-effort: the outcome is reported, the
// order is already committed.
func (h *OrdersHandler) fireKOT(ctx context.Context, order *model.Order, lines []model.CartItem) printing.Result {
	if len(lines) == 0 {
		return printing.Result{Success: true, Message: "nothing new to fire"}
	}
	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return printing.Result{Success: false, Message: "could not load settings: " + err.Error()}
	}
	menu, err := h.Menu.List(ctx)
	if err != nil {
		return printing.Result{Success: false, Message: "could not load menu: " + err.Error()}
	}
	categories, err := h.Categories.List(ctx)
	if err != nil {
		return printing.Result{Success: false, Message: "could not load categories: " + err.Error()}
	}

	defaultPrinter := settings.String(model.SettingPrinterName, "default")
	routed := printing.RouteKOT(lines, menu, categories, defaultPrinter)
	tableName := h.tableName(ctx, order.TableID)

	result := printing.Result{Success: true}
	for printer, printerLines := range routed {
		html, err := printing.RenderKOT(printing.KOTData{
			TokenNumber: order.TokenNumber,
			TableName:   tableName,
			PrintedAt:   time.Now().Format(model.TimeLayout),
			Items:       printerLines,
		})
		if err != nil {
			result.Success = false
			result.Message = err.Error()
			continue
		}
		job, err := h.Spooler.Submit(printer, "kot", order.ID, html)
		if err != nil {
			result.Success = false
			result.Message = err.Error()
			continue
		}
		result.Jobs = append(result.Jobs, job)
	}
	return result
}

// printBill renders and spools the customer receipt for a closed order.
func (h *OrdersHandler) printBill(ctx context.Context, order *model.Order) printing.Result {
	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return printing.Result{Success: false, Message: "could not load settings: " + err.Error()}
	}

	billNumber := 0
	if order.BillNumber != nil {
		billNumber = *order.BillNumber
	}
	payment := model.DefaultPaymentMethod
	if order.PaymentMethod != nil {
		payment = *order.PaymentMethod
	}
	html, err := printing.RenderBill(printing.BillData{
		HotelName:    settings.String(model.SettingHotelName, "Easy Bill"),
		HotelAddress: settings.String(model.SettingHotelAddress, ""),
		Footer:       settings.String(model.SettingBillFooter, ""),
		TokenNumber:  order.TokenNumber,
		BillNumber:   billNumber,
		TableName:    h.tableName(ctx, order.TableID),
		CreatedAt:    order.CreatedAt,
		Items:        order.Items,
		Total:        order.TotalAmount,
		Payment:      payment,
	})
	if err != nil {
		return printing.Result{Success: false, Message: err.Error()}
	}
	printer := settings.String(model.SettingPrinterName, "default")
	job, err := h.Spooler.Submit(printer, "bill", order.ID, html)
	if err != nil {
		return printing.Result{Success: false, Message: err.Error()}
	}
	return printing.Result{Success: true, Jobs: []printing.Job{job}}
}
