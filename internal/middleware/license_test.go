package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/license"
)

// writeLicense stores a license file with the given check age so the
// validator derives a known status.
func writeLicense(t *testing.T, path, status string, checkedAt time.Time) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"key":               "LICENSE-KEY-1",
		"machine_id":        "test-machine",
		"last_online_check": checkedAt.Unix(),
		"status":            status,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func gateRequest(t *testing.T, v *license.Validator) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/v1/tables", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, LicenseGate(v))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/tables", nil)
	e.ServeHTTP(rec, req)
	return rec
}

func TestLicenseGateBlocksExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "license.json")
	writeLicense(t, path, "active", time.Now().Add(-8*24*time.Hour))
	v := license.NewValidator(path, "key")

	rec := gateRequest(t, v)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d body=%s, want 403", rec.Code, rec.Body.String())
	}
}

func TestLicenseGatePassesActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "license.json")
	writeLicense(t, path, "active", time.Now())
	v := license.NewValidator(path, "key")

	rec := gateRequest(t, v)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s, want 200", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-License-Status") != "" {
		t.Fatalf("active license must not set the grace header")
	}
}

func TestLicenseGateWarnsDuringGrace(t *testing.T) {
	// First run: no file yet, the install works but the UI is warned.
	v := license.NewValidator(filepath.Join(t.TempDir(), "license.json"), "key")

	rec := gateRequest(t, v)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s, want 200", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-License-Status"); got != "grace_period" {
		t.Fatalf("header=%q, want grace_period", got)
	}
}
