// Package reconcile implements the workflow that moves a conceptual item
// between the shopping list, the pantry, and the standard catalog. An item is
// identified by its nameKey, not by any single row: it can be on the list, at
// home, both, or absent while still being a catalog entry.
package reconcile

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/quantity"
	"github.com/dukerupert/hamfast/internal/store"
)

// ErrEmptyName rejects add actions whose name is blank after trimming.
// Nothing is persisted when it is returned.
var ErrEmptyName = errors.New("item name is empty")

// Engine runs the cross-store list transitions. Every operation executes in a
// single transaction so a crash mid-flow cannot drop an item from both lists.
type Engine struct {
	stores *store.Stores
	logger *slog.Logger
}

func New(stores *store.Stores, logger *slog.Logger) *Engine {
	return &Engine{stores: stores, logger: logger}
}

// AddParams carries the raw form input for an add-to-list action. Quantity is
// the user's text and goes through quantity.Parse, so "1,5", "" and "-3" all
// behave per the normalization rules.
type AddParams struct {
	Name     string
	Quantity string
	Category string
	Standard bool
}

// AddToList puts an item on the shopping list (or bumps the open row's
// quantity), refreshes the memory index, and upserts the standard catalog when
// the standard flag is set.
func (e *Engine) AddToList(p AddParams) (*model.ShoppingItem, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	qty := quantity.Parse(p.Quantity)
	category := store.NormalizeCategory(p.Category)

	var item *model.ShoppingItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		var err error
		item, err = st.Shopping.Add(name, qty, category, p.Standard)
		if err != nil {
			return err
		}
		if err := e.remember(st, name, category, "", qty, p.Standard); err != nil {
			return err
		}
		if p.Standard {
			if _, err := st.Standards.Upsert(name, category, qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("added to shopping list", "name", name, "quantity", qty, "category", category)
	return item, nil
}

// MarkBought pops the shopping row and merges it into the pantry. Returns the
// resulting pantry row, or nil when the id is stale (harmless double-click).
func (e *Engine) MarkBought(id int64) (*model.PantryItem, error) {
	var result *model.PantryItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		popped, err := st.Shopping.Pop(id)
		if err != nil {
			return err
		}
		if popped == nil {
			return nil
		}
		result, err = st.Pantry.AddOrMerge(popped.Name, popped.Quantity, popped.Category, popped.IsStandard)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		e.logger.Info("marked bought", "name", result.Name, "category", result.Category)
	}
	return result, nil
}

// ConsumeResult reports what a consume action did, including the shopping row
// created when the user chose to add the item back.
type ConsumeResult struct {
	Consumed  *store.ConsumedItem `json:"consumed"`
	AddedBack *model.ShoppingItem `json:"added_back,omitempty"`
}

// Consume subtracts the used quantity from a pantry row, deleting it when
// empty. When addBack is set the used amount goes straight back onto the
// shopping list in the same category. Returns nil for a stale id.
func (e *Engine) Consume(id int64, quantityUsed string, addBack bool) (*ConsumeResult, error) {
	used := quantity.Parse(quantityUsed)

	var result *ConsumeResult
	err := e.stores.WithTx(func(st *store.Stores) error {
		consumed, err := st.Pantry.Consume(id, used)
		if err != nil {
			return err
		}
		if consumed == nil {
			return nil
		}
		result = &ConsumeResult{Consumed: consumed}

		if !addBack {
			return nil
		}
		result.AddedBack, err = st.Shopping.Add(consumed.Name, used, consumed.Category, consumed.IsStandard)
		if err != nil {
			return err
		}
		return e.remember(st, consumed.Name, consumed.Category, "", used, consumed.IsStandard)
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		e.logger.Info("consumed", "name", result.Consumed.Name, "used", used, "add_back", addBack)
	}
	return result, nil
}

// ToggleShoppingStandard flips the standard flag on a shopping row. Turning it
// on upserts the catalog with the row's category and quantity as defaults;
// turning it off removes the catalog entry and clears the flag everywhere.
func (e *Engine) ToggleShoppingStandard(id int64) (*model.ShoppingItem, error) {
	var item *model.ShoppingItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		current, err := st.Shopping.GetByID(id)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if err := e.applyStandardToggle(st, current.Name, current.Category, current.Quantity, current.IsStandard); err != nil {
			return err
		}
		// Delete cleared every matching flag; setting only touches this row.
		if !current.IsStandard {
			item, err = st.Shopping.SetStandardFlag(id, true)
			return err
		}
		item, err = st.Shopping.GetByID(id)
		return err
	})
	return item, err
}

// TogglePantryStandard is ToggleShoppingStandard for a pantry row.
func (e *Engine) TogglePantryStandard(id int64) (*model.PantryItem, error) {
	var item *model.PantryItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		current, err := st.Pantry.GetByID(id)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if err := e.applyStandardToggle(st, current.Name, current.Category, current.Quantity, current.IsStandard); err != nil {
			return err
		}
		if !current.IsStandard {
			item, err = st.Pantry.SetStandardFlag(id, true)
			return err
		}
		item, err = st.Pantry.GetByID(id)
		return err
	})
	return item, err
}

func (e *Engine) applyStandardToggle(st *store.Stores, name, category string, qty float64, wasStandard bool) error {
	if wasStandard {
		return st.Standards.Delete(name)
	}
	_, err := st.Standards.Upsert(name, category, qty)
	return err
}

// AddStandardToList puts a catalog entry on the shopping list with its default
// quantity. Returns nil when no catalog entry exists for the name.
func (e *Engine) AddStandardToList(name string) (*model.ShoppingItem, error) {
	var item *model.ShoppingItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		entry, err := st.Standards.Get(name)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		item, err = st.Shopping.Add(entry.Name, entry.DefaultQuantity, entry.Category, true)
		if err != nil {
			return err
		}
		return e.remember(st, entry.Name, entry.Category, "", entry.DefaultQuantity, true)
	})
	return item, err
}

// MovePantryCategory moves a pantry row to a new category, merging into an
// existing row for the same nameKey when one is already there, and remembers
// the location for the name. Returns nil for a stale id.
func (e *Engine) MovePantryCategory(id int64, newCategory string) (*model.PantryItem, error) {
	var item *model.PantryItem
	err := e.stores.WithTx(func(st *store.Stores) error {
		var err error
		item, err = st.Pantry.MoveCategory(id, newCategory)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		return e.remember(st, item.Name, "", item.Category, item.Quantity, item.IsStandard)
	})
	if err != nil {
		return nil, err
	}
	if item != nil {
		e.logger.Info("moved pantry category", "name", item.Name, "category", item.Category)
	}
	return item, nil
}

// remember refreshes the memory index for a name. Blank category or location
// means "keep whatever was remembered last" so a shopping add does not wipe a
// known pantry location and vice versa.
func (e *Engine) remember(st *store.Stores, name, category, location string, qty float64, isStandard bool) error {
	previous, err := st.Memory.Get(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(category) == "" {
		category = store.Uncategorized
		if previous != nil {
			category = previous.Category
		}
	}
	if strings.TrimSpace(location) == "" {
		location = store.Uncategorized
		if previous != nil {
			location = previous.Location
		}
	}
	return st.Memory.Remember(name, category, location, qty, isStandard)
}
