package repository

import (
	"context"
	"database/sql"

	"github.com/easybill/easybill/internal/model"
)

// CategoryRepo provides CRUD for menu categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// List returns all categories in creation order.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, printer_name FROM categories ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		var printer sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &printer); err != nil {
			return nil, err
		}
		if printer.Valid {
			p := printer.String
			c.PrinterName = &p
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Create inserts a category and populates its generated ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	const q = `INSERT INTO categories (name, printer_name) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.PrinterName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Delete removes a category. Its menu items survive with their
// category_id cleared; list queries stop resolving a name for them and
// sold lines keep their captured name and price.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}
