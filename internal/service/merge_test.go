package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/easybill/easybill/internal/model"
)

func itemID(id int64) *int64 { return &id }

func line(id int64, name string, qty int, price string) model.CartItem {
	c := model.CartItem{Name: name, Quantity: qty, Price: decimal.RequireFromString(price)}
	if id > 0 {
		c.ItemID = itemID(id)
	}
	return c
}

func TestMergeCartsAddsQuantities(t *testing.T) {
	existing := []model.CartItem{
		line(1, "Tea", 2, "10"),
		line(2, "Samosa", 1, "15"),
	}
	incoming := []model.CartItem{
		line(1, "Tea", 1, "10"),
		line(3, "Coffee", 2, "20"),
	}

	merged := MergeCarts(existing, incoming)

	if len(merged) != 3 {
		t.Fatalf("merged len=%d, want 3", len(merged))
	}
	if merged[0].Name != "Tea" || merged[0].Quantity != 3 {
		t.Fatalf("merged[0]=%s x%d, want Tea x3", merged[0].Name, merged[0].Quantity)
	}
	if merged[1].Name != "Samosa" || merged[1].Quantity != 1 {
		t.Fatalf("merged[1]=%s x%d, want Samosa x1", merged[1].Name, merged[1].Quantity)
	}
	if merged[2].Name != "Coffee" || merged[2].Quantity != 2 {
		t.Fatalf("merged[2]=%s x%d, want Coffee x2", merged[2].Name, merged[2].Quantity)
	}
}

func TestMergeCartsKeepsExistingPrice(t *testing.T) {
	// The table already has Tea at 10; a menu price change mid-meal must
	// not reprice lines the kitchen already made.
	existing := []model.CartItem{line(1, "Tea", 2, "10")}
	incoming := []model.CartItem{line(1, "Tea", 1, "12")}

	merged := MergeCarts(existing, incoming)

	if len(merged) != 1 {
		t.Fatalf("merged len=%d, want 1", len(merged))
	}
	if !merged[0].Price.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("price=%s, want 10", merged[0].Price)
	}
	if merged[0].Quantity != 3 {
		t.Fatalf("quantity=%d, want 3", merged[0].Quantity)
	}
}

func TestMergeCartsMatchesAdHocLinesByName(t *testing.T) {
	existing := []model.CartItem{line(0, "Chef Special", 1, "100")}
	incoming := []model.CartItem{line(0, "Chef Special", 2, "100")}

	merged := MergeCarts(existing, incoming)

	if len(merged) != 1 || merged[0].Quantity != 3 {
		t.Fatalf("merged=%+v, want single Chef Special x3", merged)
	}
}

func TestMergeCartsDoesNotCrossMatchIDAndName(t *testing.T) {
	// A menu-backed line and an ad-hoc line with the same display name are
	// distinct identities.
	existing := []model.CartItem{line(1, "Tea", 1, "10")}
	incoming := []model.CartItem{line(0, "Tea", 1, "10")}

	merged := MergeCarts(existing, incoming)

	if len(merged) != 2 {
		t.Fatalf("merged len=%d, want 2", len(merged))
	}
}

func TestKOTDeltaOnlyNewQuantities(t *testing.T) {
	previous := []model.CartItem{
		line(1, "Tea", 2, "10"),
		line(2, "Samosa", 1, "15"),
	}
	next := []model.CartItem{
		line(1, "Tea", 5, "10"),     // 3 more
		line(2, "Samosa", 1, "15"),  // unchanged
		line(3, "Coffee", 2, "20"),  // new line
	}

	delta := KOTDelta(previous, next)

	if len(delta) != 2 {
		t.Fatalf("delta len=%d, want 2: %+v", len(delta), delta)
	}
	if delta[0].Name != "Tea" || delta[0].Quantity != 3 {
		t.Fatalf("delta[0]=%s x%d, want Tea x3", delta[0].Name, delta[0].Quantity)
	}
	if delta[1].Name != "Coffee" || delta[1].Quantity != 2 {
		t.Fatalf("delta[1]=%s x%d, want Coffee x2", delta[1].Name, delta[1].Quantity)
	}
}

func TestKOTDeltaIgnoresRemovalsAndReductions(t *testing.T) {
	// The kitchen cannot un-cook food; reductions never produce a ticket.
	previous := []model.CartItem{
		line(1, "Tea", 5, "10"),
		line(2, "Samosa", 2, "15"),
	}
	next := []model.CartItem{
		line(1, "Tea", 2, "10"),
	}

	delta := KOTDelta(previous, next)

	if len(delta) != 0 {
		t.Fatalf("delta=%+v, want empty", delta)
	}
}

func TestKOTDeltaFirstSaveFiresEverything(t *testing.T) {
	next := []model.CartItem{
		line(1, "Tea", 2, "10"),
		line(3, "Coffee", 1, "20"),
	}

	delta := KOTDelta(nil, next)

	if len(delta) != 2 {
		t.Fatalf("delta len=%d, want 2", len(delta))
	}
	if delta[0].Quantity != 2 || delta[1].Quantity != 1 {
		t.Fatalf("delta quantities=%d,%d, want 2,1", delta[0].Quantity, delta[1].Quantity)
	}
}
