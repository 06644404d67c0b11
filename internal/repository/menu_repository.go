package repository

import (
	"context"
	"database/sql"

	"github.com/easybill/easybill/internal/model"
)

// MenuRepo provides CRUD for menu items.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo constructs a MenuRepo with the given DB handle.
func NewMenuRepo(db *sql.DB) *MenuRepo {
	return &MenuRepo{db: db}
}

// List returns all menu items with their category name resolved. Items
// whose category was deleted come back with no category name.
func (r *MenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	const q = `SELECT m.id, m.category_id, m.name, m.price, m.is_available, c.name
	           FROM menu_items m
	           LEFT JOIN categories c ON m.category_id = c.id
	           ORDER BY m.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var it model.MenuItem
		var categoryID sql.NullInt64
		var categoryName sql.NullString
		if err := rows.Scan(&it.ID, &categoryID, &it.Name, &it.Price, &it.IsAvailable, &categoryName); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			cid := categoryID.Int64
			it.CategoryID = &cid
		}
		if categoryName.Valid {
			cn := categoryName.String
			it.CategoryName = &cn
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a menu item and populates its generated ID. New items
// are available by default.
func (r *MenuRepo) Create(ctx context.Context, it *model.MenuItem) error {
	const q = `INSERT INTO menu_items (category_id, name, price, is_available) VALUES (?, ?, ?, 1)`
	res, err := r.db.ExecContext(ctx, q, it.CategoryID, it.Name, it.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = id
	it.IsAvailable = true
	return nil
}

// Delete removes a menu item. Historical order lines are untouched: they
// carry their own name/price snapshot.
func (r *MenuRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}
