package store

import "testing"

func TestPantryAddOrMerge(t *testing.T) {
	st := setupTestStores(t)

	first, err := st.Pantry.AddOrMerge("Eggs", 6, "Fridge", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	merged, err := st.Pantry.AddOrMerge("eggs ", 6, "Fridge", true)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if merged.ID != first.ID {
		t.Errorf("merge created a new row: %d != %d", merged.ID, first.ID)
	}
	if merged.Quantity != 12 {
		t.Errorf("quantity = %v, want 12", merged.Quantity)
	}
	if !merged.IsStandard {
		t.Error("merged flag should OR to true")
	}

	// Once standard, a further non-standard merge stays standard
	again, _ := st.Pantry.AddOrMerge("eggs", 1, "Fridge", false)
	if !again.IsStandard {
		t.Error("row should stay standard after non-standard merge")
	}
}

func TestPantryCategoryIsolation(t *testing.T) {
	st := setupTestStores(t)

	st.Pantry.AddOrMerge("milk", 1, "Fridge", false)
	st.Pantry.AddOrMerge("milk", 1, "Freezer", false)

	items, err := st.Pantry.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
}

func TestPantryConsumePartial(t *testing.T) {
	st := setupTestStores(t)

	item, _ := st.Pantry.AddOrMerge("Eggs", 6, "Fridge", false)

	c, err := st.Pantry.Consume(item.ID, 2)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if c == nil {
		t.Fatal("expected consumed item, got nil")
	}
	if c.Deleted {
		t.Error("row should survive a partial consume")
	}
	if c.Remaining != 4 {
		t.Errorf("remaining = %v, want 4", c.Remaining)
	}

	got, _ := st.Pantry.GetByID(item.ID)
	if got == nil || got.Quantity != 4 {
		t.Errorf("stored quantity = %+v, want 4", got)
	}
}

func TestPantryConsumeAll(t *testing.T) {
	st := setupTestStores(t)

	item, _ := st.Pantry.AddOrMerge("Eggs", 6, "Fridge", true)

	c, err := st.Pantry.Consume(item.ID, 6)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !c.Deleted {
		t.Error("row should be deleted when nothing remains")
	}
	if c.Name != "Eggs" || c.Category != "Fridge" || !c.IsStandard {
		t.Errorf("identity metadata = %+v", c)
	}

	got, _ := st.Pantry.GetByID(item.ID)
	if got != nil {
		t.Error("expected nil after full consume")
	}
}

func TestPantryConsumeFloorsQuantity(t *testing.T) {
	st := setupTestStores(t)

	item, _ := st.Pantry.AddOrMerge("Eggs", 6, "Fridge", false)

	// Non-positive used quantity normalizes to 1
	c, err := st.Pantry.Consume(item.ID, 0)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if c.Remaining != 5 {
		t.Errorf("remaining = %v, want 5", c.Remaining)
	}
}

func TestPantryConsumeStaleID(t *testing.T) {
	st := setupTestStores(t)

	c, err := st.Pantry.Consume(9999, 1)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if c != nil {
		t.Error("expected nil for stale id")
	}
}

func TestPantryMoveCategory(t *testing.T) {
	st := setupTestStores(t)

	item, _ := st.Pantry.AddOrMerge("Flour", 2, "Shelf", false)

	moved, err := st.Pantry.MoveCategory(item.ID, "Basement")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ID != item.ID {
		t.Errorf("plain move should keep the row id")
	}
	if moved.Category != "Basement" {
		t.Errorf("category = %q, want Basement", moved.Category)
	}
}

func TestPantryMoveCategoryMerges(t *testing.T) {
	st := setupTestStores(t)

	target, _ := st.Pantry.AddOrMerge("Flour", 1, "Basement", true)
	source, _ := st.Pantry.AddOrMerge("flour", 2, "Shelf", false)

	merged, err := st.Pantry.MoveCategory(source.ID, "Basement")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if merged.ID != target.ID {
		t.Errorf("expected merge into existing row %d, got %d", target.ID, merged.ID)
	}
	if merged.Quantity != 3 {
		t.Errorf("quantity = %v, want 3", merged.Quantity)
	}
	if !merged.IsStandard {
		t.Error("standard flags should OR on merge")
	}

	items, _ := st.Pantry.List()
	if len(items) != 1 {
		t.Fatalf("expected 1 row after merge, got %d", len(items))
	}
}

func TestPantryMoveCategoryStaleID(t *testing.T) {
	st := setupTestStores(t)

	got, err := st.Pantry.MoveCategory(9999, "Basement")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if got != nil {
		t.Error("expected nil for stale id")
	}
}
