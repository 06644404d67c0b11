package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// ReportsHandler serves the sales report endpoints. All of them take an
// inclusive start_date/end_date pair of calendar days and default to
// today when the range is omitted.
type ReportsHandler struct {
	Reports *repository.ReportRepo
}

// NewReportsHandler constructs a ReportsHandler. Reports must be non-nil.
func NewReportsHandler(reports *repository.ReportRepo) *ReportsHandler {
	if reports == nil {
		panic("nil ReportRepo passed to NewReportsHandler")
	}
	return &ReportsHandler{Reports: reports}
}

// dateRange parses and validates the start_date/end_date query params.
func dateRange(c echo.Context) (string, string, error) {
	today := time.Now().Format(model.DateLayout)
	start := c.QueryParam("start_date")
	end := c.QueryParam("end_date")
	if start == "" {
		start = today
	}
	if end == "" {
		end = today
	}
	if _, err := time.Parse(model.DateLayout, start); err != nil {
		return "", "", err
	}
	if _, err := time.Parse(model.DateLayout, end); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// Summary handles GET /v1/reports/sales.
func (h *ReportsHandler) Summary(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	summary, err := h.Reports.Summary(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, summary)
}

// ByItem handles GET /v1/reports/items.
func (h *ReportsHandler) ByItem(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	rows, err := h.Reports.ByItem(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// ByDay handles GET /v1/reports/daily.
func (h *ReportsHandler) ByDay(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	rows, err := h.Reports.ByDay(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// ByPaymentMethod handles GET /v1/reports/payment-methods.
func (h *ReportsHandler) ByPaymentMethod(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	rows, err := h.Reports.ByPaymentMethod(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// ByCategory handles GET /v1/reports/categories.
func (h *ReportsHandler) ByCategory(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	rows, err := h.Reports.ByCategory(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Export handles GET /v1/reports/export: flat line-item rows suitable for
// a spreadsheet.
func (h *ReportsHandler) Export(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	rows, err := h.Reports.Export(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rows)
}
