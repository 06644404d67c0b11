package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/easybill/easybill/internal/database"
	"github.com/easybill/easybill/internal/printing"
	"github.com/easybill/easybill/internal/repository"
	"github.com/easybill/easybill/internal/service"
)

// newTestDB opens a throwaway database through the production Open path
// (same pragmas the binary runs with) and applies the schema and seed.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "easybill_test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.InitSchema(context.Background(), db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

// newTestApp wires the handlers over a fresh database and spool dir.
func newTestApp(t *testing.T) (*echo.Echo, *sql.DB, string) {
	t.Helper()
	db := newTestDB(t)
	spoolDir := t.TempDir()
	spooler, err := printing.NewSpooler(spoolDir)
	if err != nil {
		t.Fatalf("spooler: %v", err)
	}

	tables := repository.NewTableRepo(db)
	categories := repository.NewCategoryRepo(db)
	menu := repository.NewMenuRepo(db)
	settings := repository.NewSettingsRepo(db)
	orders := repository.NewOrderRepo(db)

	alloc := service.NewAllocator(orders, settings)
	svc := service.NewOrderService(db, orders, tables, alloc)

	oh := NewOrdersHandler(svc, tables, menu, categories, settings, spooler)
	ph := NewPrintHandler(orders, tables, categories, settings, spooler)
	rh := NewReportsHandler(repository.NewReportRepo(db))

	e := echo.New()
	e.POST("/v1/orders", oh.Create)
	e.POST("/v1/orders/save", oh.Save)
	e.POST("/v1/orders/close", oh.Close)
	e.GET("/v1/orders/open", oh.Open)
	e.GET("/v1/orders/pending", oh.Pending)
	e.DELETE("/v1/orders/:id", oh.Delete)
	e.GET("/v1/printers", ph.Printers)
	e.POST("/v1/print/bill", ph.ReprintBill)
	e.GET("/v1/reports/sales", rh.Summary)
	return e, db, spoolDir
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func spoolFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read spool: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSaveOrderEndpointFiresKOT(t *testing.T) {
	e, _, spoolDir := newTestApp(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/orders/save",
		`{"table_number":1,"items":[{"item_id":null,"name":"Tea","quantity":2,"price":10}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Order   struct {
			ID          int64  `json:"id"`
			TokenNumber int    `json:"token_number"`
			Status      string `json:"status"`
		} `json:"order"`
		Print printing.Result `json:"print"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, rec.Body.String())
	}
	if !resp.Success || resp.Order.TokenNumber != 1 || resp.Order.Status != "open" {
		t.Fatalf("resp=%+v", resp)
	}
	if !resp.Print.Success || len(resp.Print.Jobs) != 1 {
		t.Fatalf("print=%+v, want one KOT job", resp.Print)
	}

	files := spoolFiles(t, spoolDir)
	if len(files) != 1 || !strings.Contains(files[0], "_kot_") {
		t.Fatalf("spool=%v, want one kot file", files)
	}
}

func TestSaveOrderEndpointUnchangedCartSkipsKitchen(t *testing.T) {
	e, _, spoolDir := newTestApp(t)

	body := `{"table_number":1,"items":[{"item_id":null,"name":"Tea","quantity":2,"price":10}]}`
	first := doJSON(t, e, http.MethodPost, "/v1/orders/save", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first status=%d body=%s", first.Code, first.Body.String())
	}
	var resp struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Re-saving the identical cart by order id adds nothing for the
	// kitchen; no new ticket may be spooled.
	second := doJSON(t, e, http.MethodPost, "/v1/orders/save",
		`{"order_id":`+itoa(resp.Order.ID)+`,"items":[{"item_id":null,"name":"Tea","quantity":2,"price":10}]}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second status=%d body=%s", second.Code, second.Body.String())
	}
	if files := spoolFiles(t, spoolDir); len(files) != 1 {
		t.Fatalf("spool=%v, want only the first ticket", files)
	}
}

func TestSaveOrderEndpointUnknownTable(t *testing.T) {
	e, db, _ := newTestApp(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/orders/save",
		`{"table_number":99,"items":[{"item_id":null,"name":"Tea","quantity":1,"price":10}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "table does not exist") {
		t.Fatalf("body=%s", rec.Body.String())
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("orders=%d, want 0", n)
	}
}

func TestSaveOrderEndpointRejectsInvalidLine(t *testing.T) {
	e, _, _ := newTestApp(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/orders/save",
		`{"table_number":1,"items":[{"item_id":null,"name":"Tea","quantity":-2,"price":10}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid cart line") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestCloseOrderEndpointPrintsBill(t *testing.T) {
	e, _, spoolDir := newTestApp(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/orders/close",
		`{"table_number":1,"items":[{"item_id":null,"name":"Tea","quantity":2,"price":10}],"payment_method":"UPI"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success    bool `json:"success"`
		BillNumber int  `json:"bill_number"`
		Order      struct {
			Status      string `json:"status"`
			TotalAmount string `json:"total_amount"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, rec.Body.String())
	}
	if !resp.Success || resp.BillNumber != 1 || resp.Order.Status != "closed" {
		t.Fatalf("resp=%+v", resp)
	}

	files := spoolFiles(t, spoolDir)
	if len(files) != 1 || !strings.Contains(files[0], "_bill_") {
		t.Fatalf("spool=%v, want one bill file", files)
	}
}

func TestCloseOrderEndpointEmptyCart(t *testing.T) {
	e, _, _ := newTestApp(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/orders/close", `{"table_number":1,"items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "cart is empty") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestReprintBillEndpoint(t *testing.T) {
	e, _, spoolDir := newTestApp(t)

	save := doJSON(t, e, http.MethodPost, "/v1/orders/save",
		`{"table_number":1,"items":[{"item_id":null,"name":"Tea","quantity":1,"price":10}]}`)
	var saved struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(save.Body.Bytes(), &saved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Reprint of an open order is refused.
	rec := doJSON(t, e, http.MethodPost, "/v1/print/bill", `{"order_id":`+itoa(saved.Order.ID)+`}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	closed := doJSON(t, e, http.MethodPost, "/v1/orders/close",
		`{"order_id":`+itoa(saved.Order.ID)+`,"items":[{"item_id":null,"name":"Tea","quantity":1,"price":10}]}`)
	if closed.Code != http.StatusOK {
		t.Fatalf("close status=%d body=%s", closed.Code, closed.Body.String())
	}

	before := len(spoolFiles(t, spoolDir))
	rec = doJSON(t, e, http.MethodPost, "/v1/print/bill", `{"order_id":`+itoa(saved.Order.ID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reprint status=%d body=%s", rec.Code, rec.Body.String())
	}
	if after := len(spoolFiles(t, spoolDir)); after != before+1 {
		t.Fatalf("spool count=%d, want %d", after, before+1)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/print/bill", `{"order_id":9999}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing order status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPrintersEndpointListsCategoryRoutes(t *testing.T) {
	e, db, _ := newTestApp(t)

	if _, err := db.Exec(`UPDATE categories SET printer_name = 'Kitchen-1' WHERE name = 'Main Course'`); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec := doJSON(t, e, http.MethodGet, "/v1/printers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var printers []string
	if err := json.Unmarshal(rec.Body.Bytes(), &printers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(printers) != 2 {
		t.Fatalf("printers=%v, want the default plus Kitchen-1", printers)
	}
}

func TestReportsEndpointRejectsBadDate(t *testing.T) {
	e, _, _ := newTestApp(t)

	rec := doJSON(t, e, http.MethodGet, "/v1/reports/sales?start_date=14-03-2026", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDeleteOrderEndpointIsIdempotent(t *testing.T) {
	e, _, _ := newTestApp(t)

	rec := doJSON(t, e, http.MethodDelete, "/v1/orders/12345", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
