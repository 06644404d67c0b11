package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/license"
)

// LicenseHandler serves the activation status and accepts activation
// tokens relayed from the vendor backend.
type LicenseHandler struct {
	Validator *license.Validator
}

// NewLicenseHandler constructs a LicenseHandler. Validator must be
// non-nil.
func NewLicenseHandler(v *license.Validator) *LicenseHandler {
	if v == nil {
		panic("nil Validator passed to NewLicenseHandler")
	}
	return &LicenseHandler{Validator: v}
}

// Status handles GET /v1/license/status.
func (h *LicenseHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": h.Validator.Status()})
}

// Activate handles POST /v1/license/activate with a license key and the
// signed token obtained from the vendor.
func (h *LicenseHandler) Activate(c echo.Context) error {
	var body struct {
		Key   string `json:"key"`
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || body.Key == "" || body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status, err := h.Validator.Activate(body.Key, body.Token)
	if err != nil {
		if errors.Is(err, license.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid activation token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store activation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}
