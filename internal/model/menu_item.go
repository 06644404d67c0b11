package model

import "github.com/shopspring/decimal"

// MenuItem is catalogue data. Orders never reference it live: every line
// item snapshots name and price at add-time, so later menu edits do not
// rewrite history.
//
// Fields:
//  ID           – primary key identifier.
//  CategoryID   – owning category; nullable.
//  Name         – item name shown on menu and tickets.
//  Price        – current list price, non-negative.
//  IsAvailable  – whether the item can currently be ordered.
//  CategoryName – joined categories.name, set on list queries only.
type MenuItem struct {
	ID           int64           `json:"id"`                      // menu_items.id
	CategoryID   *int64          `json:"category_id,omitempty"`   // menu_items.category_id (nullable)
	Name         string          `json:"name"`                    // menu_items.name
	Price        decimal.Decimal `json:"price"`                   // menu_items.price
	IsAvailable  bool            `json:"is_available"`            // menu_items.is_available
	CategoryName *string         `json:"category_name,omitempty"` // joined, not a column
}
