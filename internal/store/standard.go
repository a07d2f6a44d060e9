package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hamfast/internal/model"
)

type StandardStore struct {
	db querier
}

func NewStandardStore(db *sql.DB) *StandardStore {
	return &StandardStore{db: db}
}

func scanStandardItem(scanner interface{ Scan(...any) error }) (*model.StandardItem, error) {
	var entry model.StandardItem
	err := scanner.Scan(&entry.NameKey, &entry.Name, &entry.Category, &entry.DefaultQuantity, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

const standardCols = `name_key, name, category, default_quantity, created_at`

// Upsert inserts or replaces the catalog entry for the name. Category and
// default quantity overwrite on conflict.
func (s *StandardStore) Upsert(name, category string, defaultQty float64) (*model.StandardItem, error) {
	key := NameKey(name)
	if key == "" {
		return nil, fmt.Errorf("upsert standard: empty name")
	}
	category = NormalizeCategory(category)
	if defaultQty <= 0 {
		defaultQty = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO standard_items (name_key, name, category, default_quantity) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name_key) DO UPDATE SET name = excluded.name, category = excluded.category,
		   default_quantity = excluded.default_quantity`,
		key, name, category, defaultQty,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert standard: %w", err)
	}
	return s.Get(name)
}

// Get looks up a catalog entry by name, keyed case-insensitively.
func (s *StandardStore) Get(name string) (*model.StandardItem, error) {
	row := s.db.QueryRow(`SELECT `+standardCols+` FROM standard_items WHERE name_key = ?`, NameKey(name))
	entry, err := scanStandardItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get standard: %w", err)
	}
	return entry, nil
}

// Delete removes the catalog entry and clears the standard flag on every
// shopping and pantry row with the same nameKey, keeping row flags consistent
// with catalog membership. Deleting an absent entry is a no-op.
func (s *StandardStore) Delete(name string) error {
	key := NameKey(name)

	if _, err := s.db.Exec(`DELETE FROM standard_items WHERE name_key = ?`, key); err != nil {
		return fmt.Errorf("delete standard: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE shopping_items SET is_standard = 0 WHERE name_key = ?`, key); err != nil {
		return fmt.Errorf("clear shopping flags: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE pantry_items SET is_standard = 0 WHERE name_key = ?`, key); err != nil {
		return fmt.Errorf("clear pantry flags: %w", err)
	}
	return nil
}

// List returns all catalog entries ordered by category, then name, both
// case-insensitive.
func (s *StandardStore) List() ([]model.StandardItem, error) {
	rows, err := s.db.Query(
		`SELECT ` + standardCols + ` FROM standard_items ORDER BY category COLLATE NOCASE ASC, name COLLATE NOCASE ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	defer rows.Close()

	var entries []model.StandardItem
	for rows.Next() {
		entry, err := scanStandardItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan standard: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}
