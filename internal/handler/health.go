package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple liveness endpoint the desktop shell and the mobile
// companion use to find a running server. It returns "ok" with 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
