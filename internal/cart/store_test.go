package cart

import (
	"context"
	"testing"
)

func testKey(t *testing.T) Key {
	t.Helper()
	key, err := NewKey("device-1", "WARUNG01", "dinein")
	if err != nil {
		t.Fatalf("unexpected key error: %v", err)
	}
	return key
}

func TestNewKeyRejectsUnknownMode(t *testing.T) {
	if _, err := NewKey("device-1", "WARUNG01", "drive-through"); err == nil {
		t.Fatalf("expected invalid mode error")
	}
	key, err := NewKey("device-1", "WARUNG01", "TakeAway")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Mode != ModeTakeaway {
		t.Fatalf("expected normalized mode, got %q", key.Mode)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	first, err := store.Initialize(ctx, key)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if _, err := store.AddItem(ctx, key, Item{MenuID: "m1", MenuName: "Nasi Goreng", UnitPrice: 30000, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	again, err := store.Initialize(ctx, key)
	if err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
	if len(again.Items) != 1 {
		t.Fatalf("initialize must not reset an existing cart, got %d items", len(again.Items))
	}
	if first.MerchantCode != again.MerchantCode || first.Mode != again.Mode {
		t.Fatalf("initialize returned a different cart identity")
	}

	// back to back with no mutation in between yields identical snapshots
	snapA, _ := store.Initialize(ctx, key)
	snapB, _ := store.Initialize(ctx, key)
	if len(snapA.Items) != len(snapB.Items) || snapA.UpdatedAt != snapB.UpdatedAt {
		t.Fatalf("expected identical snapshots, got %+v vs %+v", snapA, snapB)
	}
}

func TestAddItemNeverMerges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	item := Item{MenuID: "m1", MenuName: "Es Teh", UnitPrice: 5000, Quantity: 1}
	first, err := store.AddItem(ctx, key, item)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	second, err := store.AddItem(ctx, key, item)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if len(second.Items) != 2 {
		t.Fatalf("expected two distinct lines, got %d", len(second.Items))
	}
	if first.Items[0].ID == second.Items[1].ID {
		t.Fatalf("expected distinct line IDs")
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	current, _ := store.AddItem(ctx, key, Item{MenuID: "m1", UnitPrice: 12000, Quantity: 1})
	lineID := current.Items[0].ID

	qty := 3
	notes := "no onions"
	updated, err := store.UpdateItem(ctx, key, lineID, ItemPatch{Quantity: &qty, Notes: &notes})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Items[0].Quantity != 3 || updated.Items[0].Notes != "no onions" {
		t.Fatalf("patch not applied: %+v", updated.Items[0])
	}

	// unknown line id is a silent no-op
	unchanged, err := store.UpdateItem(ctx, key, "line-missing", ItemPatch{Quantity: &qty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(unchanged.Items) != 1 || unchanged.Items[0].Quantity != 3 {
		t.Fatalf("unknown id must not change the cart: %+v", unchanged.Items)
	}

	// quantity zero removes the line
	zero := 0
	emptied, err := store.UpdateItem(ctx, key, lineID, ItemPatch{Quantity: &zero})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(emptied.Items) != 0 {
		t.Fatalf("expected line removed at quantity zero, got %+v", emptied.Items)
	}
}

func TestRemoveItemTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	current, _ := store.AddItem(ctx, key, Item{MenuID: "m1", UnitPrice: 9000, Quantity: 2})
	current, _ = store.AddItem(ctx, key, Item{MenuID: "m2", UnitPrice: 4000, Quantity: 1})
	lineID := current.Items[0].ID

	removed, err := store.RemoveItem(ctx, key, lineID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(removed.Items) != 1 {
		t.Fatalf("expected one remaining line, got %d", len(removed.Items))
	}

	again, err := store.RemoveItem(ctx, key, lineID)
	if err != nil {
		t.Fatalf("second remove failed: %v", err)
	}
	if len(again.Items) != 1 {
		t.Fatalf("second remove must be a no-op, got %d lines", len(again.Items))
	}
}

func TestCartsIsolatedPerKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	dinein, _ := NewKey("device-1", "WARUNG01", "dinein")
	takeaway, _ := NewKey("device-1", "WARUNG01", "takeaway")
	other, _ := NewKey("device-1", "WARUNG02", "dinein")

	if _, err := store.AddItem(ctx, dinein, Item{MenuID: "m1", UnitPrice: 10000, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	forTakeaway, _ := store.Get(ctx, takeaway)
	forOther, _ := store.Get(ctx, other)
	if !forTakeaway.IsEmpty() || !forOther.IsEmpty() {
		t.Fatalf("switching merchant or mode must address a fresh cart")
	}
}

func TestSnapshotsAreDefensiveCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	snap, _ := store.AddItem(ctx, key, Item{MenuID: "m1", UnitPrice: 10000, Quantity: 1, Addons: []Addon{{Name: "Sambal", Price: 1000}}})
	snap.Items[0].Quantity = 99
	snap.Items[0].Addons[0].Price = 0

	fresh, _ := store.Get(ctx, key)
	if fresh.Items[0].Quantity != 1 || fresh.Items[0].Addons[0].Price != 1000 {
		t.Fatalf("store state leaked through a snapshot: %+v", fresh.Items[0])
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey(t)

	if _, err := store.AddItem(ctx, key, Item{MenuID: "m1", UnitPrice: 10000, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cleared, _ := store.Get(ctx, key)
	if !cleared.IsEmpty() {
		t.Fatalf("expected empty cart after clear")
	}
}
