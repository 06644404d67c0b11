package service

import (
	"strconv"

	"github.com/easybill/easybill/internal/model"
)

// cartKey is the line identity used for merging: the menu reference when
// present, the captured name for ad-hoc lines.
func cartKey(c model.CartItem) string {
	if c.ItemID != nil {
		return "id:" + strconv.FormatInt(*c.ItemID, 10)
	}
	return "name:" + c.Name
}

// MergeCarts reconciles a client cart with the lines already persisted
// for a table's open order: union with quantity addition. Existing lines
// keep their position and price snapshot; incoming lines either add
// their quantity to a matching line or append. This models more food
// being added to a table that already has an open tab — never a
// replacement.
func MergeCarts(existing, incoming []model.CartItem) []model.CartItem {
	merged := make([]model.CartItem, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, line := range merged {
		index[cartKey(line)] = i
	}
	for _, line := range incoming {
		if i, ok := index[cartKey(line)]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[cartKey(line)] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// KOTDelta returns the lines that must be fired to the kitchen after a
// save: per identity, only the quantity added since the previous save.
// Re-firing the full cart would duplicate tickets for items the kitchen
// already has.
func KOTDelta(previous, next []model.CartItem) []model.CartItem {
	seen := make(map[string]int, len(previous))
	for _, line := range previous {
		seen[cartKey(line)] += line.Quantity
	}

	delta := make([]model.CartItem, 0)
	for _, line := range next {
		added := line.Quantity - seen[cartKey(line)]
		if added <= 0 {
			continue
		}
		d := line
		d.Quantity = added
		delta = append(delta, d)
	}
	return delta
}

// itemsToCart converts stored order lines back into working-cart form.
func itemsToCart(items []model.OrderItem) []model.CartItem {
	cart := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		cart = append(cart, model.CartItem{
			ItemID:   it.ItemID,
			Name:     it.ItemName,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return cart
}

// cartToItems converts cart lines into order-item snapshots. Totals are
// recomputed by the order store on insert.
func cartToItems(cart []model.CartItem) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, model.OrderItem{
			ItemID:   line.ItemID,
			ItemName: line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return items
}
