package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// SettingsHandler serves the flat settings map.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(settings *repository.SettingsRepo) *SettingsHandler {
	if settings == nil {
		panic("nil repository passed to NewSettingsHandler")
	}
	return &SettingsHandler{Settings: settings}
}

// Get handles GET /v1/settings.
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.Settings.GetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, settings)
}

// Save handles POST /v1/settings. Only the submitted keys are written;
// the upsert runs in one transaction.
func (h *SettingsHandler) Save(c echo.Context) error {
	var body model.Settings
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Settings.Save(c.Request().Context(), body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
