package reconcile

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/hamfast/internal/database"
	"github.com/dukerupert/hamfast/internal/store"
)

func setupTestEngine(t *testing.T) (*Engine, *store.Stores) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	stores := store.New(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(stores, logger), stores
}

func TestAddToList(t *testing.T) {
	engine, stores := setupTestEngine(t)

	item, err := engine.AddToList(AddParams{Name: "  Milk  ", Quantity: "1,5", Category: "Dairy"})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if item.Name != "Milk" {
		t.Errorf("expected trimmed name Milk, got %q", item.Name)
	}
	if item.Quantity != 1.5 {
		t.Errorf("expected quantity 1.5, got %v", item.Quantity)
	}

	// Same item again merges into the open row.
	again, err := engine.AddToList(AddParams{Name: "milk", Quantity: "2", Category: "Dairy"})
	if err != nil {
		t.Fatalf("failed to re-add: %v", err)
	}
	if again.ID != item.ID {
		t.Errorf("expected merge into row %d, got new row %d", item.ID, again.ID)
	}
	if again.Quantity != 3.5 {
		t.Errorf("expected merged quantity 3.5, got %v", again.Quantity)
	}

	// The memory index learned the item.
	entry, err := stores.Memory.Get("Milk")
	if err != nil {
		t.Fatalf("failed to get memory entry: %v", err)
	}
	if entry == nil {
		t.Fatal("expected memory entry for Milk")
	}
	if entry.Category != "Dairy" {
		t.Errorf("expected remembered category Dairy, got %q", entry.Category)
	}
}

func TestAddToListEmptyName(t *testing.T) {
	engine, stores := setupTestEngine(t)

	if _, err := engine.AddToList(AddParams{Name: "   "}); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	items, err := stores.Shopping.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no rows after rejected add, got %d", len(items))
	}
}

func TestAddToListStandard(t *testing.T) {
	engine, stores := setupTestEngine(t)

	if _, err := engine.AddToList(AddParams{Name: "Coffee", Quantity: "1", Category: "Drinks", Standard: true}); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	entry, err := stores.Standards.Get("Coffee")
	if err != nil {
		t.Fatalf("failed to get standard: %v", err)
	}
	if entry == nil {
		t.Fatal("expected catalog entry for Coffee")
	}
	if entry.Category != "Drinks" || entry.DefaultQuantity != 1 {
		t.Errorf("unexpected catalog entry: %+v", entry)
	}
}

func TestMarkBoughtRoundTrip(t *testing.T) {
	engine, stores := setupTestEngine(t)

	item, err := engine.AddToList(AddParams{Name: "Eggs", Quantity: "12", Category: "Dairy", Standard: true})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	pantryItem, err := engine.MarkBought(item.ID)
	if err != nil {
		t.Fatalf("failed to mark bought: %v", err)
	}
	if pantryItem == nil {
		t.Fatal("expected pantry item")
	}
	if pantryItem.Name != "Eggs" || pantryItem.Quantity != 12 || pantryItem.Category != "Dairy" {
		t.Errorf("unexpected pantry item: %+v", pantryItem)
	}
	if !pantryItem.IsStandard {
		t.Error("expected standard flag to survive the transition")
	}

	// Gone from the shopping list.
	listed, err := stores.Shopping.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected empty shopping list, got %d rows", len(listed))
	}
}

func TestMarkBoughtStaleID(t *testing.T) {
	engine, _ := setupTestEngine(t)

	result, err := engine.MarkBought(999)
	if err != nil {
		t.Fatalf("expected no error for stale id, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for stale id, got %+v", result)
	}
}

func TestMarkBoughtMergesIntoPantry(t *testing.T) {
	engine, stores := setupTestEngine(t)

	if _, err := stores.Pantry.AddOrMerge("Eggs", 6, "Dairy", false); err != nil {
		t.Fatalf("failed to seed pantry: %v", err)
	}
	item, err := engine.AddToList(AddParams{Name: "eggs", Quantity: "12", Category: "Dairy"})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	merged, err := engine.MarkBought(item.ID)
	if err != nil {
		t.Fatalf("failed to mark bought: %v", err)
	}
	if merged.Quantity != 18 {
		t.Errorf("expected merged quantity 18, got %v", merged.Quantity)
	}

	pantry, err := stores.Pantry.List()
	if err != nil {
		t.Fatalf("failed to list pantry: %v", err)
	}
	if len(pantry) != 1 {
		t.Errorf("expected single pantry row, got %d", len(pantry))
	}
}

func TestConsumeWithoutAddBack(t *testing.T) {
	engine, stores := setupTestEngine(t)

	seeded, err := stores.Pantry.AddOrMerge("Rice", 5, "Staples", false)
	if err != nil {
		t.Fatalf("failed to seed pantry: %v", err)
	}

	result, err := engine.Consume(seeded.ID, "5", false)
	if err != nil {
		t.Fatalf("failed to consume: %v", err)
	}
	if !result.Consumed.Deleted {
		t.Error("expected row deleted when fully consumed")
	}
	if result.AddedBack != nil {
		t.Errorf("expected no shopping row, got %+v", result.AddedBack)
	}

	listed, err := stores.Shopping.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected empty shopping list, got %d rows", len(listed))
	}
}

func TestConsumePartialWithAddBack(t *testing.T) {
	engine, stores := setupTestEngine(t)

	seeded, err := stores.Pantry.AddOrMerge("Flour", 5, "Baking", true)
	if err != nil {
		t.Fatalf("failed to seed pantry: %v", err)
	}

	result, err := engine.Consume(seeded.ID, "2", true)
	if err != nil {
		t.Fatalf("failed to consume: %v", err)
	}
	if result.Consumed.Deleted {
		t.Error("expected row to survive partial consume")
	}
	if result.Consumed.Remaining != 3 {
		t.Errorf("expected remaining 3, got %v", result.Consumed.Remaining)
	}
	if result.AddedBack == nil {
		t.Fatal("expected shopping row from add-back")
	}
	if result.AddedBack.Quantity != 2 || result.AddedBack.Category != "Baking" {
		t.Errorf("unexpected add-back row: %+v", result.AddedBack)
	}
	if !result.AddedBack.IsStandard {
		t.Error("expected standard flag carried into add-back")
	}

	remaining, err := stores.Pantry.GetByID(seeded.ID)
	if err != nil {
		t.Fatalf("failed to get pantry row: %v", err)
	}
	if remaining == nil || remaining.Quantity != 3 {
		t.Errorf("expected pantry quantity 3, got %+v", remaining)
	}
}

func TestConsumeStaleID(t *testing.T) {
	engine, _ := setupTestEngine(t)

	result, err := engine.Consume(999, "1", true)
	if err != nil {
		t.Fatalf("expected no error for stale id, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for stale id, got %+v", result)
	}
}

func TestToggleShoppingStandard(t *testing.T) {
	engine, stores := setupTestEngine(t)

	item, err := engine.AddToList(AddParams{Name: "Butter", Quantity: "2", Category: "Dairy"})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	// Toggle on: row flagged, catalog entry created.
	toggled, err := engine.ToggleShoppingStandard(item.ID)
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if !toggled.IsStandard {
		t.Error("expected flag set after toggle on")
	}
	entry, err := stores.Standards.Get("Butter")
	if err != nil {
		t.Fatalf("failed to get standard: %v", err)
	}
	if entry == nil {
		t.Fatal("expected catalog entry after toggle on")
	}
	if entry.DefaultQuantity != 2 {
		t.Errorf("expected default quantity 2, got %v", entry.DefaultQuantity)
	}

	// Toggle off: catalog entry removed, flag cleared.
	toggled, err = engine.ToggleShoppingStandard(item.ID)
	if err != nil {
		t.Fatalf("failed to toggle off: %v", err)
	}
	if toggled.IsStandard {
		t.Error("expected flag cleared after toggle off")
	}
	entry, err = stores.Standards.Get("Butter")
	if err != nil {
		t.Fatalf("failed to get standard: %v", err)
	}
	if entry != nil {
		t.Errorf("expected catalog entry removed, got %+v", entry)
	}
}

func TestToggleOffClearsFlagEverywhere(t *testing.T) {
	engine, stores := setupTestEngine(t)

	shoppingItem, err := engine.AddToList(AddParams{Name: "Oats", Quantity: "1", Category: "Staples", Standard: true})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	pantryItem, err := stores.Pantry.AddOrMerge("Oats", 2, "Staples", true)
	if err != nil {
		t.Fatalf("failed to seed pantry: %v", err)
	}

	// Toggle off via the pantry row.
	toggled, err := engine.TogglePantryStandard(pantryItem.ID)
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if toggled.IsStandard {
		t.Error("expected pantry flag cleared")
	}

	refreshed, err := stores.Shopping.GetByID(shoppingItem.ID)
	if err != nil {
		t.Fatalf("failed to get shopping row: %v", err)
	}
	if refreshed.IsStandard {
		t.Error("expected shopping flag cleared by catalog removal")
	}
}

func TestToggleStaleID(t *testing.T) {
	engine, _ := setupTestEngine(t)

	item, err := engine.ToggleShoppingStandard(999)
	if err != nil {
		t.Fatalf("expected no error for stale id, got %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for stale id, got %+v", item)
	}
}

func TestAddStandardToList(t *testing.T) {
	engine, stores := setupTestEngine(t)

	if _, err := stores.Standards.Upsert("Coffee", "Drinks", 2); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	item, err := engine.AddStandardToList("coffee")
	if err != nil {
		t.Fatalf("failed to add standard: %v", err)
	}
	if item == nil {
		t.Fatal("expected shopping item")
	}
	if item.Name != "Coffee" || item.Quantity != 2 || item.Category != "Drinks" {
		t.Errorf("unexpected row: %+v", item)
	}
	if !item.IsStandard {
		t.Error("expected standard flag on the added row")
	}

	// Unknown name is a no-op.
	missing, err := engine.AddStandardToList("nope")
	if err != nil {
		t.Fatalf("expected no error for unknown name, got %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown name, got %+v", missing)
	}
}

func TestMovePantryCategory(t *testing.T) {
	engine, stores := setupTestEngine(t)

	seeded, err := stores.Pantry.AddOrMerge("Honey", 1, "Pantry", false)
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	moved, err := engine.MovePantryCategory(seeded.ID, "Baking")
	if err != nil {
		t.Fatalf("failed to move: %v", err)
	}
	if moved.Category != "Baking" {
		t.Errorf("expected category Baking, got %q", moved.Category)
	}

	entry, err := stores.Memory.Get("Honey")
	if err != nil {
		t.Fatalf("failed to get memory entry: %v", err)
	}
	if entry == nil || entry.Location != "Baking" {
		t.Errorf("expected remembered location Baking, got %+v", entry)
	}
}
