package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TimeLayout is the storage format for all timestamps. Values are written
// in server-local time: a restaurant's business day is its wall-clock day,
// and the format compares lexicographically for range queries.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-day form used for numbering reset windows and
// report boundaries.
const DateLayout = "2006-01-02"

// Order status values. An order starts open and ends closed (billed) or
// cancelled; there is no transition out of a terminal state.
const (
	OrderOpen      = "open"
	OrderClosed    = "closed"
	OrderCancelled = "cancelled"
)

// DefaultPaymentMethod is applied when an order is closed without an
// explicit payment method.
const DefaultPaymentMethod = "Cash"

// Order is the central aggregate: one dining session (or takeaway) with
// its line items. TotalAmount always equals the sum of item totals; it is
// recomputed from the stored lines on every mutation and never trusted
// from a caller.
//
// Fields:
//  ID            – primary key identifier.
//  TableID       – dining table; nil means takeaway.
//  Status        – open, closed or cancelled.
//  TokenNumber   – kitchen-facing sequence number, assigned at creation.
//  BillNumber    – customer-facing sequence number, assigned at close.
//  TotalAmount   – sum of line totals.
//  PaymentMethod – recorded at close.
//  CreatedAt     – creation time; immutable, keys daily numbering windows
//                  and report ranges.
//  UpdatedAt     – refreshed on every save; keys the pending-list sort.
//  ClosedAt      – set once, at close.
//  Items         – line items, attached on loads that need them.
type Order struct {
	ID            int64           `json:"id"`                       // orders.id
	TableID       *int64          `json:"table_id,omitempty"`       // orders.table_id (nullable)
	Status        string          `json:"status"`                   // orders.status
	TokenNumber   int             `json:"token_number"`             // orders.token_number
	BillNumber    *int            `json:"bill_number,omitempty"`    // orders.bill_number (nullable)
	TotalAmount   decimal.Decimal `json:"total_amount"`             // orders.total_amount
	PaymentMethod *string         `json:"payment_method,omitempty"` // orders.payment_method (nullable)
	CreatedAt     string          `json:"created_at"`               // orders.created_at
	UpdatedAt     string          `json:"updated_at"`               // orders.updated_at
	ClosedAt      *string         `json:"closed_at,omitempty"`      // orders.closed_at (nullable)
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a line-item snapshot. Name and price are captured at
// add-time; lines are never updated individually — a save replaces the
// whole set for its order.
type OrderItem struct {
	ID       int64           `json:"id"`                // order_items.id
	OrderID  int64           `json:"order_id"`          // order_items.order_id
	ItemID   *int64          `json:"item_id,omitempty"` // order_items.item_id (nullable menu reference)
	ItemName string          `json:"item_name"`         // order_items.item_name
	Quantity int             `json:"quantity"`          // order_items.quantity
	Price    decimal.Decimal `json:"price"`             // order_items.price
	Total    decimal.Decimal `json:"total"`             // order_items.total = price * quantity
}

// CartItem is a working-cart line as sent by a client. It is normalized
// here at the boundary and converted to OrderItem snapshots on save.
type CartItem struct {
	ItemID   *int64          `json:"item_id,omitempty"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UnmarshalJSON accepts both the canonical wire form and the legacy one
// where the menu reference arrives as "id" and the label as "item_name"
// (the shape an order's stored lines have when a client reloads them back
// into a cart).
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID   *int64          `json:"item_id"`
		ID       *int64          `json:"id"`
		Name     string          `json:"name"`
		ItemName string          `json:"item_name"`
		Quantity int             `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ItemID = raw.ItemID
	if c.ItemID == nil {
		c.ItemID = raw.ID
	}
	c.Name = raw.Name
	if c.Name == "" {
		c.Name = raw.ItemName
	}
	c.Quantity = raw.Quantity
	c.Price = raw.Price
	return nil
}

// Total returns price multiplied by quantity for this cart line.
func (c CartItem) Total() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
