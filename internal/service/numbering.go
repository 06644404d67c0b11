// Package service contains the orchestration layer: the order service,
// the sequence allocator and the cart merge rules. Repositories do the
// row work; this package owns the transactions that compose them.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/easybill/easybill/internal/model"
	"github.com/easybill/easybill/internal/repository"
)

// NumberKind selects which sequence an allocation draws from.
type NumberKind string

const (
	// KindToken is the kitchen-facing number assigned at order creation.
	KindToken NumberKind = "token"
	// KindBill is the customer-facing number assigned at close.
	KindBill NumberKind = "bill"
)

// numberingPolicy is the typed view of the settings keys that govern one
// sequence. Missing or malformed settings fall back to defaults; policy
// parsing never fails an allocation.
type numberingPolicy struct {
	resetDaily    bool
	prefix        int
	lastResetDate string
}

func policyFor(kind NumberKind, settings model.Settings) numberingPolicy {
	switch kind {
	case KindBill:
		return numberingPolicy{
			resetDaily:    settings.Bool(model.SettingBillResetDaily, false),
			prefix:        settings.Int(model.SettingBillPrefix, 0),
			lastResetDate: settings.String(model.SettingLastResetDate, ""),
		}
	default:
		return numberingPolicy{
			resetDaily:    settings.Bool(model.SettingTokenResetDaily, false),
			prefix:        settings.Int(model.SettingTokenPrefix, 0),
			lastResetDate: settings.String(model.SettingLastResetDate, ""),
		}
	}
}

// Allocator computes the next token or bill number. Numbers are derived
// from the orders already stored (MAX over the relevant window) rather
// than from a counter row, so the scheme self-heals after manual
// deletions. The read runs inside the same transaction as the order
// write that consumes the number; uniqueness therefore holds for this
// process, which is the only writer the design admits.
type Allocator struct {
	orders   *repository.OrderRepo
	settings *repository.SettingsRepo
	now      func() time.Time
}

// NewAllocator constructs an Allocator over the given repositories.
func NewAllocator(orders *repository.OrderRepo, settings *repository.SettingsRepo) *Allocator {
	return &Allocator{orders: orders, settings: settings, now: time.Now}
}

// NextTx returns the next number for kind inside tx.
//
// With daily reset enabled the window is today's orders; the first
// allocation of a new day persists last_reset_date and restarts at
// prefix+1 unconditionally, which defends against a stale same-day MAX
// computed before the reset date was stored.
func (a *Allocator) NextTx(ctx context.Context, tx *sql.Tx, kind NumberKind) (int, error) {
	settings, err := a.settings.GetAllTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	policy := policyFor(kind, settings)
	today := a.now().Format(model.DateLayout)

	needsReset := false
	if policy.resetDaily && policy.lastResetDate != today {
		if err := a.settings.SetTx(ctx, tx, model.SettingLastResetDate, today); err != nil {
			return 0, err
		}
		needsReset = true
	}

	day := ""
	if policy.resetDaily {
		day = today
	}
	var max int
	switch kind {
	case KindBill:
		max, err = a.orders.MaxBillNumberTx(ctx, tx, day)
	default:
		max, err = a.orders.MaxTokenNumberTx(ctx, tx, day)
	}
	if err != nil {
		return 0, err
	}

	next := max + 1
	if policy.prefix >= max {
		next = policy.prefix + 1
	}
	if needsReset {
		next = policy.prefix + 1
	}
	return next, nil
}
