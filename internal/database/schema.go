package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the full current DDL. CREATE IF NOT EXISTS makes a fresh
// install a no-op for upgrades; columns added after first release are
// handled by addColumnIfMissing below.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tables (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL,
    status   TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available','occupied','reserved')),
    capacity INTEGER
);

CREATE TABLE IF NOT EXISTS categories (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    printer_name TEXT
);

CREATE TABLE IF NOT EXISTS menu_items (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    category_id  INTEGER,
    name         TEXT NOT NULL,
    price        REAL NOT NULL,
    is_available INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id       INTEGER,
    status         TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','closed','cancelled')),
    token_number   INTEGER NOT NULL DEFAULT 0,
    bill_number    INTEGER,
    total_amount   REAL NOT NULL DEFAULT 0.0,
    payment_method TEXT,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL,
    closed_at      TEXT,
    FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id  INTEGER NOT NULL,
    item_id   INTEGER,
    item_name TEXT NOT NULL,
    quantity  INTEGER NOT NULL CHECK (quantity > 0),
    price     REAL NOT NULL,
    total     REAL NOT NULL,
    FOREIGN KEY (order_id) REFERENCES orders(id)
);

-- At most one open order per table, enforced by the storage layer rather
-- than by service-level discipline. Takeaway orders (NULL table_id) are
-- exempt.
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_table
    ON orders(table_id) WHERE status = 'open' AND table_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

// InitSchema creates all tables and indexes, applies add-column upgrades
// for databases created by older releases, and seeds first-run data.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Upgrades from pre-numbering databases.
	upgrades := []struct{ table, column, ddl string }{
		{"orders", "token_number", "ALTER TABLE orders ADD COLUMN token_number INTEGER NOT NULL DEFAULT 0"},
		{"orders", "bill_number", "ALTER TABLE orders ADD COLUMN bill_number INTEGER"},
		{"orders", "updated_at", "ALTER TABLE orders ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''"},
		{"categories", "printer_name", "ALTER TABLE categories ADD COLUMN printer_name TEXT"},
	}
	for _, up := range upgrades {
		if err := addColumnIfMissing(ctx, db, up.table, up.column, up.ddl); err != nil {
			return fmt.Errorf("upgrade %s.%s: %w", up.table, up.column, err)
		}
	}

	return seed(ctx, db)
}

// addColumnIfMissing applies ddl when table does not yet have column.
func addColumnIfMissing(ctx context.Context, db *sql.DB, table, column, ddl string) error {
	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM pragma_table_info(%q) WHERE name = ?`, table)
	if err := db.QueryRowContext(ctx, q, column).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// seed inserts starter rows on an empty database so the application is
// usable on first launch.
func seed(ctx context.Context, db *sql.DB) error {
	var count int

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		seedTables := []struct {
			name     string
			capacity int
		}{
			{"Table 1", 4},
			{"Table 2", 2},
			{"Table 3", 6},
			{"Table 4", 4},
		}
		for _, t := range seedTables {
			if _, err := db.ExecContext(ctx, `INSERT INTO tables (name, capacity) VALUES (?, ?)`, t.name, t.capacity); err != nil {
				return err
			}
		}
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		for _, name := range []string{"Beverages", "Starters", "Main Course"} {
			if _, err := db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name); err != nil {
				return err
			}
		}
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		defaults := map[string]string{
			"hotel_name":        "Easy Bill Hotel",
			"hotel_address":     "123 Main St, City",
			"printer_name":      "Microsoft Print to PDF",
			"bill_footer":       "Thank you for visiting!",
			"enable_tables":     "true",
			"token_reset_daily": "true",
			"bill_reset_daily":  "false",
			"token_prefix":      "0",
			"bill_prefix":       "0",
		}
		for key, value := range defaults {
			if _, err := db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
				return err
			}
		}
	}

	return nil
}
