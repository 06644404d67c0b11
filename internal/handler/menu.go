package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// MenuHandler serves the menu catalogue: categories and items.
type MenuHandler struct {
	Categories *repository.CategoryRepo
	Menu       *repository.MenuRepo
}

// NewMenuHandler constructs a MenuHandler. Both repositories must be
// non-nil.
func NewMenuHandler(categories *repository.CategoryRepo, menu *repository.MenuRepo) *MenuHandler {
	if categories == nil || menu == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{Categories: categories, Menu: menu}
}

// ListCategories handles GET /v1/categories.
func (h *MenuHandler) ListCategories(c echo.Context) error {
	cats, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, cats)
}

// CreateCategory handles POST /v1/categories. printer_name optionally
// routes this category's kitchen tickets to a dedicated printer.
func (h *MenuHandler) CreateCategory(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		PrinterName *string `json:"printer_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cat := model.Category{Name: body.Name, PrinterName: body.PrinterName}
	if err := h.Categories.Create(c.Request().Context(), &cat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, cat)
}

// DeleteCategory handles DELETE /v1/categories/:id.
func (h *MenuHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListItems handles GET /v1/menu-items.
func (h *MenuHandler) ListItems(c echo.Context) error {
	items, err := h.Menu.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem handles POST /v1/menu-items. Price must be non-negative.
func (h *MenuHandler) CreateItem(c echo.Context) error {
	var body struct {
		CategoryID *int64          `json:"category_id"`
		Name       string          `json:"name"`
		Price      decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	item := model.MenuItem{CategoryID: body.CategoryID, Name: body.Name, Price: body.Price}
	if err := h.Menu.Create(c.Request().Context(), &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, item)
}

// DeleteItem handles DELETE /v1/menu-items/:id. Closed orders keep their
// name/price snapshots regardless.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	if err := h.Menu.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
