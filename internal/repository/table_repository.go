package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/easybill/easybill/internal/model"
)

// TableRepo provides CRUD for dining tables plus the status transitions
// that implement table occupancy. Status writes only happen through
// SetStatusTx inside an order transaction, which is what keeps
// "occupied iff an open order exists" true after every operation.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// List returns all tables in creation order.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT id, name, capacity, status FROM tables ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		var capacity sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &capacity, &t.Status); err != nil {
			return nil, err
		}
		if capacity.Valid {
			t.Capacity = int(capacity.Int64)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetByID retrieves one table. It returns ErrTableNotFound when no row
// matches.
func (r *TableRepo) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	const q = `SELECT id, name, capacity, status FROM tables WHERE id = ?`
	var t model.Table
	var capacity sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &capacity, &t.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	if capacity.Valid {
		t.Capacity = int(capacity.Int64)
	}
	return &t, nil
}

// Create inserts a new table with status available. The generated ID is
// populated on the model.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (name, capacity) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	t.Status = model.TableAvailable
	return nil
}

// Delete removes a table. Deleting an unknown id is a no-op. Orders
// that referenced the table survive with table_id cleared: the floor
// plan can be edited freely without rewriting sales history.
func (r *TableRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	return err
}

// ExistsTx reports whether a table exists, inside the given transaction.
func (r *TableRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatusTx flips a table's status within an order transaction, so the
// occupancy change commits or rolls back together with the order change
// that caused it.
func (r *TableRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE tables SET status = ? WHERE id = ?`, status, id)
	return err
}
