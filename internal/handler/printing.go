package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/printing"
	"github.com/easybill/easybill/internal/repository"
)

// PrintHandler serves the printer inventory and operator-initiated
// reprints. A reprint renders from the stored order snapshot, so it is
// safe to retry any number of times after a paper jam.
type PrintHandler struct {
	Orders     *repository.OrderRepo
	Tables     *repository.TableRepo
	Categories *repository.CategoryRepo
	Settings   *repository.SettingsRepo
	Spooler    *printing.Spooler
}

// NewPrintHandler constructs a PrintHandler. All dependencies must be
// non-nil.
func NewPrintHandler(orders *repository.OrderRepo, tables *repository.TableRepo, categories *repository.CategoryRepo, settings *repository.SettingsRepo, spooler *printing.Spooler) *PrintHandler {
	if orders == nil || tables == nil || categories == nil || settings == nil || spooler == nil {
		panic("nil dependency passed to NewPrintHandler")
	}
	return &PrintHandler{Orders: orders, Tables: tables, Categories: categories, Settings: settings, Spooler: spooler}
}

// Printers handles GET /v1/printers: the distinct printer names known to
// the system, from the default receipt printer setting plus every
// category route.
func (h *PrintHandler) Printers(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	categories, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seen := map[string]bool{settings.String(model.SettingPrinterName, "default"): true}
	for _, cat := range categories {
		if cat.PrinterName != nil && *cat.PrinterName != "" {
			seen[*cat.PrinterName] = true
		}
	}
	printers := make([]string, 0, len(seen))
	for name := range seen {
		printers = append(printers, name)
	}
	sort.Strings(printers)
	return c.JSON(http.StatusOK, printers)
}

// ReprintBill handles POST /v1/print/bill: renders the receipt for an
// already-closed order again and spools it.
func (h *PrintHandler) ReprintBill(c echo.Context) error {
	var body struct {
		OrderID int64 `json:"order_id"`
	}
	if err := c.Bind(&body); err != nil || body.OrderID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()

	order, err := h.Orders.GetByID(ctx, body.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if order.Status != model.OrderClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order is not closed"})
	}

	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tableName := ""
	if order.TableID != nil {
		if t, err := h.Tables.GetByID(ctx, *order.TableID); err == nil {
			tableName = t.Name
		}
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
		TableName:    tableName,
		CreatedAt:    order.CreatedAt,
		Items:        order.Items,
		Total:        order.TotalAmount,
		Payment:      payment,
	})
	if err != nil {
		return c.JSON(http.StatusOK, printing.Result{Success: false, Message: err.Error()})
	}
	printer := settings.String(model.SettingPrinterName, "default")
	job, err := h.Spooler.Submit(printer, "bill", order.ID, html)
	if err != nil {
		return c.JSON(http.StatusOK, printing.Result{Success: false, Message: err.Error()})
	}
	return c.JSON(http.StatusOK, printing.Result{Success: true, Jobs: []printing.Job{job}})
}
