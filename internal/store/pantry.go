package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hamfast/internal/model"
)

type PantryStore struct {
	db querier
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var item model.PantryItem
	var standard int

	err := scanner.Scan(
		&item.ID, &item.Name, &item.NameKey, &item.Quantity,
		&item.Category, &standard, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.IsStandard = standard != 0
	return &item, nil
}

const pantryCols = `id, name, name_key, quantity, category, is_standard, created_at`

func (s *PantryStore) GetByID(id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(`SELECT `+pantryCols+` FROM pantry_items WHERE id = ?`, id)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return item, nil
}

// AddOrMerge inserts a pantry row, or merges into the row with the same
// (nameKey, category): quantities add and the standard flags OR, so a merged
// row stays standard even when the incoming entry was not.
func (s *PantryStore) AddOrMerge(name string, qty float64, category string, isStandard bool) (*model.PantryItem, error) {
	key := NameKey(name)
	category = NormalizeCategory(category)
	if qty <= 0 {
		qty = 1
	}
	standard := 0
	if isStandard {
		standard = 1
	}

	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM pantry_items WHERE name_key = ? AND category = ?`,
		key, category,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		result, err := s.db.Exec(
			`INSERT INTO pantry_items (name, name_key, quantity, category, is_standard) VALUES (?, ?, ?, ?, ?)`,
			name, key, qty, category, standard,
		)
		if err != nil {
			return nil, fmt.Errorf("insert pantry item: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find pantry item: %w", err)
	default:
		if _, err := s.db.Exec(
			`UPDATE pantry_items SET quantity = quantity + ?, is_standard = MAX(is_standard, ?) WHERE id = ?`,
			qty, standard, id,
		); err != nil {
			return nil, fmt.Errorf("merge pantry item: %w", err)
		}
	}

	return s.GetByID(id)
}

// ConsumedItem is what Consume returns so the caller can offer the
// "add back to shopping" prompt.
type ConsumedItem struct {
	Name       string
	Category   string
	IsStandard bool
	Remaining  float64
	Deleted    bool
}

// Consume subtracts quantityUsed (minimum 1) from the row. The row is deleted
// when nothing remains. Returns nil for a stale id.
func (s *PantryStore) Consume(id int64, quantityUsed float64) (*ConsumedItem, error) {
	if quantityUsed <= 0 {
		quantityUsed = 1
	}

	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	c := &ConsumedItem{
		Name:       item.Name,
		Category:   item.Category,
		IsStandard: item.IsStandard,
		Remaining:  item.Quantity - quantityUsed,
	}

	if c.Remaining > 0 {
		if _, err := s.db.Exec(
			`UPDATE pantry_items SET quantity = ? WHERE id = ?`, c.Remaining, id,
		); err != nil {
			return nil, fmt.Errorf("consume pantry item: %w", err)
		}
	} else {
		c.Remaining = 0
		c.Deleted = true
		if _, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete consumed pantry item: %w", err)
		}
	}

	return c, nil
}

// MoveCategory moves a row to another category. When a row for the same
// nameKey already lives there the two merge: quantities add, standard flags
// OR, and the moved row goes away. Returns the surviving row, or nil for a
// stale id.
func (s *PantryStore) MoveCategory(id int64, newCategory string) (*model.PantryItem, error) {
	newCategory = NormalizeCategory(newCategory)

	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if item.Category == newCategory {
		return item, nil
	}

	var targetID int64
	err = s.db.QueryRow(
		`SELECT id FROM pantry_items WHERE name_key = ? AND category = ? AND id != ?`,
		item.NameKey, newCategory, id,
	).Scan(&targetID)

	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(
			`UPDATE pantry_items SET category = ? WHERE id = ?`, newCategory, id,
		); err != nil {
			return nil, fmt.Errorf("move pantry item: %w", err)
		}
		return s.GetByID(id)
	case err != nil:
		return nil, fmt.Errorf("find merge target: %w", err)
	}

	standard := 0
	if item.IsStandard {
		standard = 1
	}
	if _, err := s.db.Exec(
		`UPDATE pantry_items SET quantity = quantity + ?, is_standard = MAX(is_standard, ?) WHERE id = ?`,
		item.Quantity, standard, targetID,
	); err != nil {
		return nil, fmt.Errorf("merge into target: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("remove moved row: %w", err)
	}
	return s.GetByID(targetID)
}

// Delete removes a row unconditionally. Deleting an absent id is a no-op.
func (s *PantryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}

// List returns all pantry items ordered by category (case-insensitive), then
// insertion order.
func (s *PantryStore) List() ([]model.PantryItem, error) {
	rows, err := s.db.Query(
		`SELECT ` + pantryCols + ` FROM pantry_items ORDER BY category COLLATE NOCASE ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetStandardFlag flips the standard flag on one row. Returns the updated row,
// or nil if the id is stale.
func (s *PantryStore) SetStandardFlag(id int64, standard bool) (*model.PantryItem, error) {
	flag := 0
	if standard {
		flag = 1
	}
	result, err := s.db.Exec(`UPDATE pantry_items SET is_standard = ? WHERE id = ?`, flag, id)
	if err != nil {
		return nil, fmt.Errorf("set standard flag: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}
