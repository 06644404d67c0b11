package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/easybill/easybill/internal/model"
)

// OrderRepo is the order store: orders and their line-item snapshots.
// Every mutation takes a *sql.Tx supplied by the order service, so a
// multi-statement operation (delete lines, reinsert, recompute total,
// flip table status) is all-or-nothing. Reads that feed the UI run on
// the plain handle.
//
// Line items are never updated in place. A save replaces the entire set
// for an order and stores a total recomputed from the new lines, which
// keeps total_amount trivially consistent with the rows that back it.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// orderColumns is the scan list shared by every order query.
const orderColumns = `id, table_id, status, token_number, bill_number, total_amount, payment_method, created_at, updated_at, closed_at`

// InsertTx inserts a new open order with the given token number and
// returns it. created_at and updated_at both start at now; created_at
// never changes afterwards. A second open order for the same table
// violates the partial unique index and is reported as
// ErrOpenOrderExists.
func (r *OrderRepo) InsertTx(ctx context.Context, tx *sql.Tx, tableID *int64, tokenNumber int, now time.Time) (*model.Order, error) {
	const q = `INSERT INTO orders (table_id, status, token_number, total_amount, created_at, updated_at)
	           VALUES (?, 'open', ?, 0, ?, ?)`
	ts := now.Format(model.TimeLayout)
	res, err := tx.ExecContext(ctx, q, tableID, tokenNumber, ts, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrOpenOrderExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Order{
		ID:          id,
		TableID:     tableID,
		Status:      model.OrderOpen,
		TokenNumber: tokenNumber,
		TotalAmount: decimal.Zero,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Items:       []model.OrderItem{},
	}, nil
}

// ReplaceItemsTx swaps an order's full line-item set: delete all, insert
// the new lines, store the total recomputed from them, refresh
// updated_at. Returns the stored total.
func (r *OrderRepo) ReplaceItemsTx(ctx context.Context, tx *sql.Tx, orderID int64, items []model.OrderItem, now time.Time) (decimal.Decimal, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	const insertQ = `INSERT INTO order_items (order_id, item_id, item_name, quantity, price, total)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if _, err := tx.ExecContext(ctx, insertQ, orderID, it.ItemID, it.ItemName, it.Quantity, it.Price, lineTotal); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lineTotal)
	}

	const updateQ = `UPDATE orders SET total_amount = ?, updated_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, updateQ, total, now.Format(model.TimeLayout), orderID)
	if err != nil {
		return decimal.Zero, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return decimal.Zero, err
	}
	if affected == 0 {
		return decimal.Zero, ErrOrderNotFound
	}
	return total, nil
}

// CloseTx finalizes an open order: bill number, final total, payment
// method and closed_at in one statement. Closing an order that is not
// open (already closed, cancelled or missing) returns ErrOrderNotFound —
// a double close can therefore never overwrite a bill number.
func (r *OrderRepo) CloseTx(ctx context.Context, tx *sql.Tx, orderID int64, billNumber int, total decimal.Decimal, paymentMethod string, now time.Time) error {
	const q = `UPDATE orders
	           SET status = 'closed', bill_number = ?, total_amount = ?, payment_method = ?, closed_at = ?, updated_at = ?
	           WHERE id = ? AND status = 'open'`
	ts := now.Format(model.TimeLayout)
	res, err := tx.ExecContext(ctx, q, billNumber, total, paymentMethod, ts, ts, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteTx removes an order and all of its lines. It returns the table
// the order was bound to (nil for takeaway) so the caller can free it,
// and false when no such order existed — deletion is idempotent.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, orderID int64) (*int64, bool, error) {
	var tableID sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT table_id FROM orders WHERE id = ?`, orderID).Scan(&tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return nil, false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return nil, false, err
	}
	if tableID.Valid {
		id := tableID.Int64
		return &id, true, nil
	}
	return nil, true, nil
}

// GetTx reads one order inside a transaction, without items. The save
// and close flows use it to inspect the current row before mutating.
func (r *OrderRepo) GetTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// OpenOrderIDByTableTx returns the id of the open order bound to a table
// inside a transaction, or false when the table is free.
func (r *OrderRepo) OpenOrderIDByTableTx(ctx context.Context, tx *sql.Tx, tableID int64) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM orders WHERE table_id = ? AND status = 'open'`, tableID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ItemsTx loads an order's current lines inside a transaction; the merge
// path reads them in the same unit of work that rewrites them.
func (r *OrderRepo) ItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]model.OrderItem, error) {
	const q = `SELECT id, order_id, item_id, item_name, quantity, price, total
	           FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// MaxTokenNumberTx returns the highest token number already issued,
// optionally restricted to orders created on the given calendar day.
func (r *OrderRepo) MaxTokenNumberTx(ctx context.Context, tx *sql.Tx, day string) (int, error) {
	return r.maxNumberTx(ctx, tx, "token_number", day)
}

// MaxBillNumberTx returns the highest bill number already issued,
// optionally restricted to orders created on the given calendar day.
func (r *OrderRepo) MaxBillNumberTx(ctx context.Context, tx *sql.Tx, day string) (int, error) {
	return r.maxNumberTx(ctx, tx, "bill_number", day)
}

func (r *OrderRepo) maxNumberTx(ctx context.Context, tx *sql.Tx, column, day string) (int, error) {
	q := `SELECT COALESCE(MAX(` + column + `), 0) FROM orders`
	args := []any{}
	if day != "" {
		q += ` WHERE substr(created_at, 1, 10) = ?`
		args = append(args, day)
	}
	var max int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// GetByID loads one order with its items. Returns ErrOrderNotFound when
// it does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOpenOrderByTable returns the single open order bound to a table,
// with items, or nil when the table has none. At most one can exist;
// the partial unique index guarantees it.
func (r *OrderRepo) GetOpenOrderByTable(ctx context.Context, tableID int64) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE table_id = ? AND status = 'open'`, tableID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListPending returns all open orders, most recently touched first, each
// with its items attached.
func (r *OrderRepo) ListPending(ctx context.Context) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE status = 'open' ORDER BY updated_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	refs := make([]*model.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems populates Items for all given orders in a single query.
func (r *OrderRepo) attachItems(ctx context.Context, orders []*model.Order) error {
	index := make(map[int64]*model.Order, len(orders))
	ids := make([]any, 0, len(orders))
	placeholders := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []model.OrderItem{}
		index[o.ID] = o
		ids = append(ids, o.ID)
		placeholders = append(placeholders, "?")
	}

	q := `SELECT id, order_id, item_id, item_name, quantity, price, total
	      FROM order_items
	      WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY order_id, id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return err
	}
	for _, it := range items {
		if o, ok := index[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	var tableID sql.NullInt64
	var billNumber sql.NullInt64
	var paymentMethod, closedAt sql.NullString
	err := row.Scan(&o.ID, &tableID, &o.Status, &o.TokenNumber, &billNumber,
		&o.TotalAmount, &paymentMethod, &o.CreatedAt, &o.UpdatedAt, &closedAt)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := tableID.Int64
		o.TableID = &id
	}
	if billNumber.Valid {
		n := int(billNumber.Int64)
		o.BillNumber = &n
	}
	if paymentMethod.Valid {
		pm := paymentMethod.String
		o.PaymentMethod = &pm
	}
	if closedAt.Valid {
		ca := closedAt.String
		o.ClosedAt = &ca
	}
	return &o, nil
}

func scanItems(rows *sql.Rows) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		var itemID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.OrderID, &itemID, &it.ItemName, &it.Quantity, &it.Price, &it.Total); err != nil {
			return nil, err
		}
		if itemID.Valid {
			id := itemID.Int64
			it.ItemID = &id
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
