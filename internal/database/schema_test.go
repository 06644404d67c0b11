package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// openTestDB opens a throwaway database through the production Open
// path, pragmas included, without applying the schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "easybill_test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitSchemaSeedsFirstRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("init: %v", err)
	}

	var tables, categories, settings int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tables`).Scan(&tables); err != nil {
		t.Fatalf("tables: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&categories); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&settings); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if tables != 4 || categories != 3 || settings == 0 {
		t.Fatalf("seed: tables=%d categories=%d settings=%d", tables, categories, settings)
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("first init: %v", err)
	}
	// Operator data must survive a restart's re-init.
	if _, err := db.Exec(`UPDATE settings SET value = 'My Hotel' WHERE key = 'hotel_name'`); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM tables WHERE id = 4`); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("second init: %v", err)
	}

	var name string
	if err := db.QueryRow(`SELECT value FROM settings WHERE key = 'hotel_name'`).Scan(&name); err != nil {
		t.Fatalf("read: %v", err)
	}
	if name != "My Hotel" {
		t.Fatalf("hotel_name=%q, re-init must not overwrite settings", name)
	}
	var tables int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tables`).Scan(&tables); err != nil {
		t.Fatalf("tables: %v", err)
	}
	if tables != 3 {
		t.Fatalf("tables=%d, re-init must not re-seed deleted rows", tables)
	}
}

func TestInitSchemaUpgradesOldDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// A database created before numbering existed.
	old := `
	CREATE TABLE orders (
	    id           INTEGER PRIMARY KEY AUTOINCREMENT,
	    table_id     INTEGER,
	    status       TEXT NOT NULL DEFAULT 'open',
	    total_amount REAL NOT NULL DEFAULT 0.0,
	    created_at   TEXT NOT NULL,
	    closed_at    TEXT
	);
	CREATE TABLE categories (
	    id   INTEGER PRIMARY KEY AUTOINCREMENT,
	    name TEXT NOT NULL
	);`
	if _, err := db.ExecContext(ctx, old); err != nil {
		t.Fatalf("old schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO orders (status, created_at) VALUES ('open', '2026-03-14 10:00:00')`); err != nil {
		t.Fatalf("old row: %v", err)
	}

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("init: %v", err)
	}

	// The added columns exist and carry their defaults on the old row.
	var token int
	var bill sql.NullInt64
	var updated string
	err := db.QueryRow(`SELECT token_number, bill_number, updated_at FROM orders WHERE id = 1`).Scan(&token, &bill, &updated)
	if err != nil {
		t.Fatalf("read upgraded row: %v", err)
	}
	if token != 0 || bill.Valid || updated != "" {
		t.Fatalf("upgraded row: token=%d bill=%v updated=%q", token, bill, updated)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('categories') WHERE name = 'printer_name'`).Scan(&n); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if n != 1 {
		t.Fatalf("categories.printer_name not added")
	}
}
