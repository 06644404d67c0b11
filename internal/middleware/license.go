// Package middleware contains reusable HTTP middleware. The only gate
// this application needs is the license check: there are no user
// accounts, the bridge is trusted local traffic.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/license"
)

// LicenseGate returns an Echo middleware that rejects requests while the
// license is expired. Active and grace-period states pass through; the
// grace state is surfaced in a response header so the UI can warn the
// operator without a second round trip.
func LicenseGate(v *license.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch status := v.Status(); status {
			case license.StatusExpired:
				return c.JSON(http.StatusForbidden, echo.Map{"error": "license expired"})
			case license.StatusGracePeriod:
				c.Response().Header().Set("X-License-Status", string(status))
			}
			return next(c)
		}
	}
}
