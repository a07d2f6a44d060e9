package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hamfast/internal/model"
)

type ShoppingStore struct {
	db querier
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var standard int
	var boughtAt sql.NullTime

	err := scanner.Scan(
		&item.ID, &item.Name, &item.NameKey, &item.Quantity,
		&item.Category, &standard, &item.CreatedAt, &boughtAt,
	)
	if err != nil {
		return nil, err
	}

	item.IsStandard = standard != 0
	if boughtAt.Valid {
		item.BoughtAt = &boughtAt.Time
	}
	return &item, nil
}

const shoppingCols = `id, name, name_key, quantity, category, is_standard, created_at, bought_at`

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// Add inserts a shopping row, or merges into the open row with the same
// (nameKey, category) by adding quantities. A non-positive quantity becomes 1.
// The merged row keeps its existing standard flag.
func (s *ShoppingStore) Add(name string, qty float64, category string, isStandard bool) (*model.ShoppingItem, error) {
	key := NameKey(name)
	category = NormalizeCategory(category)
	if qty <= 0 {
		qty = 1
	}

	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM shopping_items WHERE name_key = ? AND category = ? AND bought_at IS NULL`,
		key, category,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		standard := 0
		if isStandard {
			standard = 1
		}
		result, err := s.db.Exec(
			`INSERT INTO shopping_items (name, name_key, quantity, category, is_standard) VALUES (?, ?, ?, ?, ?)`,
			name, key, qty, category, standard,
		)
		if err != nil {
			return nil, fmt.Errorf("insert shopping item: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find open shopping item: %w", err)
	default:
		if _, err := s.db.Exec(
			`UPDATE shopping_items SET quantity = quantity + ? WHERE id = ?`, qty, id,
		); err != nil {
			return nil, fmt.Errorf("merge shopping item: %w", err)
		}
	}

	return s.GetByID(id)
}

// Delete removes a row unconditionally. Deleting an absent id is a no-op.
func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

// PoppedItem is the snapshot Pop hands to the bought transition.
type PoppedItem struct {
	Name       string
	Quantity   float64
	Category   string
	IsStandard bool
}

// Pop removes the row and returns its snapshot, or nil if the id is stale.
func (s *ShoppingStore) Pop(id int64) (*PoppedItem, error) {
	var p PoppedItem
	var standard int
	err := s.db.QueryRow(
		`SELECT name, quantity, category, is_standard FROM shopping_items WHERE id = ?`, id,
	).Scan(&p.Name, &p.Quantity, &p.Category, &standard)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	p.IsStandard = standard != 0

	if _, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("pop shopping item: %w", err)
	}
	return &p, nil
}

// List returns all open items ordered by category (case-insensitive), then
// insertion order.
func (s *ShoppingStore) List() ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT ` + shoppingCols + ` FROM shopping_items
		 WHERE bought_at IS NULL
		 ORDER BY category COLLATE NOCASE ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetStandardFlag flips the standard flag on one row. Returns the updated row,
// or nil if the id is stale.
func (s *ShoppingStore) SetStandardFlag(id int64, standard bool) (*model.ShoppingItem, error) {
	flag := 0
	if standard {
		flag = 1
	}
	result, err := s.db.Exec(`UPDATE shopping_items SET is_standard = ? WHERE id = ?`, flag, id)
	if err != nil {
		return nil, fmt.Errorf("set standard flag: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}
