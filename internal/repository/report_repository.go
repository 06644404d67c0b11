package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// ReportRepo computes read-only sales aggregates over closed orders.
// All ranges are inclusive calendar days; the stored timestamp format
// compares lexicographically, so windows are plain string ranges on
// created_at. Correctness rests on the order store invariant that
// order_items always reflects the final state of a closed order.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// SalesSummary aggregates closed orders over a period.
type SalesSummary struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// ItemSales is revenue grouped by the captured line-item name.
type ItemSales struct {
	ItemName     string          `json:"item_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// DailySales is revenue grouped by calendar day.
type DailySales struct {
	Day     string          `json:"day"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// PaymentSales is revenue grouped by payment method.
type PaymentSales struct {
	PaymentMethod string          `json:"payment_method"`
	Orders        int             `json:"orders"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// CategorySales is revenue grouped by menu category, resolved through
// the line's menu-item reference. Lines whose item has no category (or
// no surviving menu reference) bucket under "Uncategorized".
type CategorySales struct {
	Category     string          `json:"category"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ExportRow is one line-item row of the flat export, joined with its
// order's numbers and payment data.
type ExportRow struct {
	OrderID       int64           `json:"order_id"`
	TokenNumber   int             `json:"token_number"`
	BillNumber    *int            `json:"bill_number,omitempty"`
	CreatedAt     string          `json:"created_at"`
	ClosedAt      *string         `json:"closed_at,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	ItemName      string          `json:"item_name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Total         decimal.Decimal `json:"total"`
}

// window expands inclusive day strings into the stored timestamp bounds.
func window(startDate, endDate string) (string, string) {
	return startDate + " 00:00:00", endDate + " 23:59:59"
}

// Summary returns count, sum and average of closed-order totals in the
// period.
func (r *ReportRepo) Summary(ctx context.Context, startDate, endDate string) (*SalesSummary, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(AVG(total_amount), 0)
	           FROM orders
	           WHERE status = 'closed' AND created_at BETWEEN ? AND ?`
	from, to := window(startDate, endDate)
	var s SalesSummary
	if err := r.db.QueryRowContext(ctx, q, from, to).Scan(&s.TotalOrders, &s.TotalRevenue, &s.AverageOrderValue); err != nil {
		return nil, err
	}
	return &s, nil
}

// ByItem returns quantity and revenue per captured item name, highest
// revenue first.
func (r *ReportRepo) ByItem(ctx context.Context, startDate, endDate string) ([]ItemSales, error) {
	const q = `SELECT oi.item_name, SUM(oi.quantity), SUM(oi.total)
	           FROM order_items oi
	           JOIN orders o ON o.id = oi.order_id
	           WHERE o.status = 'closed' AND o.created_at BETWEEN ? AND ?
	           GROUP BY oi.item_name
	           ORDER BY SUM(oi.total) DESC`
	from, to := window(startDate, endDate)
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ItemSales, 0)
	for rows.Next() {
		var it ItemSales
		if err := rows.Scan(&it.ItemName, &it.QuantitySold, &it.Revenue); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ByDay returns order count and revenue per calendar day, ascending.
func (r *ReportRepo) ByDay(ctx context.Context, startDate, endDate string) ([]DailySales, error) {
	const q = `SELECT substr(created_at, 1, 10) AS day, COUNT(*), COALESCE(SUM(total_amount), 0)
	           FROM orders
	           WHERE status = 'closed' AND created_at BETWEEN ? AND ?
	           GROUP BY day
	           ORDER BY day ASC`
	from, to := window(startDate, endDate)
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailySales, 0)
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ByPaymentMethod returns order count and revenue per payment method.
func (r *ReportRepo) ByPaymentMethod(ctx context.Context, startDate, endDate string) ([]PaymentSales, error) {
	const q = `SELECT COALESCE(payment_method, ''), COUNT(*), COALESCE(SUM(total_amount), 0)
	           FROM orders
	           WHERE status = 'closed' AND created_at BETWEEN ? AND ?
	           GROUP BY payment_method
	           ORDER BY SUM(total_amount) DESC`
	from, to := window(startDate, endDate)
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PaymentSales, 0)
	for rows.Next() {
		var p PaymentSales
		if err := rows.Scan(&p.PaymentMethod, &p.Orders, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByCategory returns quantity and revenue per menu category.
func (r *ReportRepo) ByCategory(ctx context.Context, startDate, endDate string) ([]CategorySales, error) {
	const q = `SELECT COALESCE(c.name, 'Uncategorized'), SUM(oi.quantity), SUM(oi.total)
	           FROM order_items oi
	           JOIN orders o ON o.id = oi.order_id
	           LEFT JOIN menu_items m ON m.id = oi.item_id
	           LEFT JOIN categories c ON c.id = m.category_id
	           WHERE o.status = 'closed' AND o.created_at BETWEEN ? AND ?
	           GROUP BY COALESCE(c.name, 'Uncategorized')
	           ORDER BY SUM(oi.total) DESC`
	from, to := window(startDate, endDate)
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategorySales, 0)
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.QuantitySold, &c.Revenue); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Export returns flat line-item rows for spreadsheet export, oldest
// order first.
func (r *ReportRepo) Export(ctx context.Context, startDate, endDate string) ([]ExportRow, error) {
	const q = `SELECT o.id, o.token_number, o.bill_number, o.created_at, o.closed_at, o.payment_method,
	                  oi.item_name, oi.quantity, oi.price, oi.total
	           FROM order_items oi
	           JOIN orders o ON o.id = oi.order_id
	           WHERE o.status = 'closed' AND o.created_at BETWEEN ? AND ?
	           ORDER BY o.created_at ASC, o.id ASC, oi.id ASC`
	from, to := window(startDate, endDate)
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExportRow, 0)
	for rows.Next() {
		var e ExportRow
		var billNumber sql.NullInt64
		var closedAt, paymentMethod sql.NullString
		if err := rows.Scan(&e.OrderID, &e.TokenNumber, &billNumber, &e.CreatedAt, &closedAt, &paymentMethod,
			&e.ItemName, &e.Quantity, &e.Price, &e.Total); err != nil {
			return nil, err
		}
		if billNumber.Valid {
			n := int(billNumber.Int64)
			e.BillNumber = &n
		}
		if closedAt.Valid {
			v := closedAt.String
			e.ClosedAt = &v
		}
		if paymentMethod.Valid {
			v := paymentMethod.String
			e.PaymentMethod = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
