package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartItemUnmarshalCanonical(t *testing.T) {
	var c CartItem
	if err := json.Unmarshal([]byte(`{"item_id":7,"name":"Tea","quantity":2,"price":10.5}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ItemID == nil || *c.ItemID != 7 {
		t.Fatalf("item_id=%v, want 7", c.ItemID)
	}
	if c.Name != "Tea" || c.Quantity != 2 {
		t.Fatalf("c=%+v", c)
	}
	if !c.Total().Equal(decimal.RequireFromString("21")) {
		t.Fatalf("total=%s, want 21", c.Total())
	}
}

func TestCartItemUnmarshalLegacyAliases(t *testing.T) {
	// A cart reloaded from stored order lines carries "id" and
	// "item_name" instead of the canonical keys.
	var c CartItem
	if err := json.Unmarshal([]byte(`{"id":7,"item_name":"Tea","quantity":2,"price":"10"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ItemID == nil || *c.ItemID != 7 {
		t.Fatalf("item_id=%v, want 7", c.ItemID)
	}
	if c.Name != "Tea" {
		t.Fatalf("name=%q, want Tea", c.Name)
	}
}

func TestCartItemUnmarshalCanonicalWins(t *testing.T) {
	var c CartItem
	if err := json.Unmarshal([]byte(`{"item_id":1,"id":2,"name":"A","item_name":"B","quantity":1,"price":1}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ItemID == nil || *c.ItemID != 1 {
		t.Fatalf("item_id=%v, want 1", c.ItemID)
	}
	if c.Name != "A" {
		t.Fatalf("name=%q, want A", c.Name)
	}
}

func TestCartItemUnmarshalAdHocLine(t *testing.T) {
	var c CartItem
	if err := json.Unmarshal([]byte(`{"name":"Chef Special","quantity":1,"price":100}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ItemID != nil {
		t.Fatalf("item_id=%v, want nil for ad-hoc line", c.ItemID)
	}
}
