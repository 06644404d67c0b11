package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// TablesHandler serves table CRUD. Table status is read-only here: it is
// derived state owned by the order service.
type TablesHandler struct {
	Tables *repository.TableRepo
}

// NewTablesHandler constructs a TablesHandler. The repository must be
// non-nil.
func NewTablesHandler(tables *repository.TableRepo) *TablesHandler {
	if tables == nil {
		panic("nil repository passed to NewTablesHandler")
	}
	return &TablesHandler{Tables: tables}
}

// List handles GET /v1/tables.
func (h *TablesHandler) List(c echo.Context) error {
	tables, err := h.Tables.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, tables)
}

// Create handles POST /v1/tables. The body must contain a non-empty
// name; capacity is optional.
func (h *TablesHandler) Create(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t := model.Table{Name: body.Name, Capacity: body.Capacity}
	if err := h.Tables.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, t)
}

// Delete handles DELETE /v1/tables/:id.
func (h *TablesHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
