package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// ErrEmptyCart is returned when a finalize is attempted with no lines.
// It is raised before any storage mutation.
var ErrEmptyCart = errors.New("cannot finalize an empty cart")

// ErrInvalidCartLine is returned when a submitted cart line carries a
// non-positive quantity or a negative price. Raised before any storage
// mutation.
var ErrInvalidCartLine = errors.New("cart line has invalid quantity or price")

// validateCart rejects lines no sale can contain. Quantities are
// positive by definition; reductions happen by sending a smaller cart,
// never by negative lines.
func validateCart(items []model.CartItem) error {
	for _, line := range items {
		if line.Quantity <= 0 || line.Price.IsNegative() {
			return ErrInvalidCartLine
		}
	}
	return nil
}

// OrderService composes the order store, the sequence allocator and the
// cart merge rules into the user-facing verbs. Each verb is one
// transaction: a crash or error mid-sequence can never leave a stored
// total inconsistent with its lines, or a table occupied with no open
// order behind it.
type OrderService struct {
	db     *sql.DB
	orders *repository.OrderRepo
	tables *repository.TableRepo
	alloc  *Allocator
	now    func() time.Time
}

// NewOrderService constructs the order service over the shared DB handle
// and repositories.
func NewOrderService(db *sql.DB, orders *repository.OrderRepo, tables *repository.TableRepo, alloc *Allocator) *OrderService {
	return &OrderService{db: db, orders: orders, tables: tables, alloc: alloc, now: time.Now}
}

// SaveRequest targets a save: an existing order id, or a table number
// where 0 denotes takeaway. Items are the client's full working cart.
type SaveRequest struct {
	OrderID     int64            `json:"order_id"`
	TableNumber int64            `json:"table_number"`
	Items       []model.CartItem `json:"items"`
}

// SaveResult carries the persisted order plus the kitchen-ticket lines:
// only the quantities newly added by this save, never the lines already
// fired.
type SaveResult struct {
	Order    *model.Order     `json:"order"`
	KOTItems []model.CartItem `json:"kot_items"`
	Merged   bool             `json:"merged"`
}

// CloseRequest finalizes an order. OrderID 0 means the cart was never
// saved; the order is created and closed in the same transaction.
type CloseRequest struct {
	OrderID       int64            `json:"order_id"`
	TableNumber   int64            `json:"table_number"`
	Items         []model.CartItem `json:"items"`
	PaymentMethod string           `json:"payment_method"`
}

// CloseResult carries the finalized order snapshot for receipt printing.
type CloseResult struct {
	Order      *model.Order `json:"order"`
	BillNumber int          `json:"bill_number"`
}

// CreateOrder opens a new order, allocating its token number and
// occupying the table when one is given. A nil tableID is a takeaway.
func (s *OrderService) CreateOrder(ctx context.Context, tableID *int64) (*model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := s.createOrderTx(ctx, tx, tableID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}

// createOrderTx is the shared create path: token allocation, insert,
// table occupation, all inside the caller's transaction.
func (s *OrderService) createOrderTx(ctx context.Context, tx *sql.Tx, tableID *int64) (*model.Order, error) {
	token, err := s.alloc.NextTx(ctx, tx, KindToken)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.InsertTx(ctx, tx, tableID, token, s.now())
	if err != nil {
		return nil, err
	}
	if tableID != nil {
		if err := s.tables.SetStatusTx(ctx, tx, *tableID, model.TableOccupied); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// SaveOrder persists a working cart (the KOT flow).
//
// Routing: an existing order id replaces that order's lines; a table
// number that already has a different open order merges the cart into it
// (the cart is additive to what is already on the tab); anything else
// creates the order first. Table number 0 is takeaway and always valid;
// other numbers must exist or the save is rejected with
// repository.ErrTableNotFound before anything is written.
func (s *OrderService) SaveOrder(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if err := validateCart(req.Items); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		orderID int64
		tableID *int64
		final   []model.CartItem
		kot     []model.CartItem
		merged  bool
	)

	switch {
	case req.OrderID > 0:
		// Editing a known order: full replacement, kitchen gets the delta.
		order, err := s.orders.GetTx(ctx, tx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if order.Status != model.OrderOpen {
			return nil, repository.ErrOrderNotFound
		}
		previous, err := s.orders.ItemsTx(ctx, tx, order.ID)
		if err != nil {
			return nil, err
		}
		orderID = order.ID
		tableID = order.TableID
		final = req.Items
		kot = KOTDelta(itemsToCart(previous), req.Items)

	case req.TableNumber > 0:
		exists, err := s.tables.ExistsTx(ctx, tx, req.TableNumber)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, repository.ErrTableNotFound
		}
		tid := req.TableNumber
		tableID = &tid

		existingID, hasOpen, err := s.orders.OpenOrderIDByTableTx(ctx, tx, tid)
		if err != nil {
			return nil, err
		}
		if hasOpen {
			// The table already has a tab; the cart adds to it. Only the
			// incoming lines are fired to the kitchen.
			previous, err := s.orders.ItemsTx(ctx, tx, existingID)
			if err != nil {
				return nil, err
			}
			orderID = existingID
			final = MergeCarts(itemsToCart(previous), req.Items)
			kot = req.Items
			merged = true
		} else {
			order, err := s.createOrderTx(ctx, tx, tableID)
			if err != nil {
				return nil, err
			}
			orderID = order.ID
			final = req.Items
			kot = req.Items
		}

	default:
		// Takeaway: fresh order with no table.
		order, err := s.createOrderTx(ctx, tx, nil)
		if err != nil {
			return nil, err
		}
		orderID = order.ID
		final = req.Items
		kot = req.Items
	}

	if _, err := s.orders.ReplaceItemsTx(ctx, tx, orderID, cartToItems(final), s.now()); err != nil {
		return nil, err
	}
	if tableID != nil {
		if err := s.tables.SetStatusTx(ctx, tx, *tableID, model.TableOccupied); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Order: order, KOTItems: kot, Merged: merged}, nil
}

// CloseOrder finalizes an order: bill number allocation, one defensive
// final item re-sync, status flip and table release, atomically. The
// total is recomputed from the submitted lines; a caller-supplied total
// is never trusted. An empty cart is rejected before storage is touched.
func (s *OrderService) CloseOrder(ctx context.Context, req CloseRequest) (*CloseResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateCart(req.Items); err != nil {
		return nil, err
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.DefaultPaymentMethod
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		orderID int64
		tableID *int64
	)
	if req.OrderID > 0 {
		order, err := s.orders.GetTx(ctx, tx, req.OrderID)
		if err != nil {
			return nil, err
		}
		orderID = order.ID
		tableID = order.TableID
	} else {
		// Cart was never saved; resolve the target the same way a save
		// would, then close in the same transaction.
		if req.TableNumber > 0 {
			exists, err := s.tables.ExistsTx(ctx, tx, req.TableNumber)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, repository.ErrTableNotFound
			}
			tid := req.TableNumber
			tableID = &tid

			if existingID, hasOpen, err := s.orders.OpenOrderIDByTableTx(ctx, tx, tid); err != nil {
				return nil, err
			} else if hasOpen {
				orderID = existingID
			}
		}
		if orderID == 0 {
			order, err := s.createOrderTx(ctx, tx, tableID)
			if err != nil {
				return nil, err
			}
			orderID = order.ID
		}
	}

	total, err := s.orders.ReplaceItemsTx(ctx, tx, orderID, cartToItems(req.Items), s.now())
	if err != nil {
		return nil, err
	}
	billNumber, err := s.alloc.NextTx(ctx, tx, KindBill)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CloseTx(ctx, tx, orderID, billNumber, total, paymentMethod, s.now()); err != nil {
		return nil, err
	}
	if tableID != nil {
		if err := s.tables.SetStatusTx(ctx, tx, *tableID, model.TableAvailable); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &CloseResult{Order: order, BillNumber: billNumber}, nil
}

// DeleteOrder removes an order and its lines and frees its table.
// Deleting an order that does not exist is a no-op, not an error: the
// usual cause is a UI view racing a close or delete from another view.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tableID, existed, err := s.orders.DeleteTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if existed && tableID != nil {
		if err := s.tables.SetStatusTx(ctx, tx, *tableID, model.TableAvailable); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetOpenOrder returns the open order for a table with its items, or nil
// when the table has none.
func (s *OrderService) GetOpenOrder(ctx context.Context, tableID int64) (*model.Order, error) {
	return s.orders.GetOpenOrderByTable(ctx, tableID)
}

// ListPendingOrders returns every open order, most recently touched
// first, with items attached.
func (s *OrderService) ListPendingOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.ListPending(ctx)
}
