package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/hamfast/internal/model"
)

type MemoryStore struct {
	db querier
}

func NewMemoryStore(db *sql.DB) *MemoryStore {
	return &MemoryStore{db: db}
}

func scanMemoryEntry(scanner interface{ Scan(...any) error }) (*model.MemoryEntry, error) {
	var e model.MemoryEntry
	var standard int
	err := scanner.Scan(&e.NameKey, &e.Name, &e.Category, &e.Location, &e.Quantity, &standard, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.IsStandard = standard != 0
	return &e, nil
}

const memoryCols = `name_key, name, category, location, quantity, is_standard, updated_at`

// Remember upserts the last-used values for a name with a fresh timestamp.
func (s *MemoryStore) Remember(name, category, location string, qty float64, isStandard bool) error {
	key := NameKey(name)
	if key == "" {
		return nil
	}
	category = NormalizeCategory(category)
	location = NormalizeCategory(location)
	if qty <= 0 {
		qty = 1
	}
	standard := 0
	if isStandard {
		standard = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO item_memory (name_key, name, category, location, quantity, is_standard, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name_key) DO UPDATE SET name = excluded.name, category = excluded.category,
		   location = excluded.location, quantity = excluded.quantity,
		   is_standard = excluded.is_standard, updated_at = CURRENT_TIMESTAMP`,
		key, name, category, location, qty, standard,
	)
	if err != nil {
		return fmt.Errorf("remember item: %w", err)
	}
	return nil
}

// Get returns the entry for a name, or nil when nothing is remembered.
func (s *MemoryStore) Get(name string) (*model.MemoryEntry, error) {
	row := s.db.QueryRow(`SELECT `+memoryCols+` FROM item_memory WHERE name_key = ?`, NameKey(name))
	e, err := scanMemoryEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory entry: %w", err)
	}
	return e, nil
}

// Suggest returns entries whose name starts with prefix (case-insensitive),
// shortest and oldest first, truncated to limit. An empty prefix yields
// nothing: browsing the whole index goes through other views.
func (s *MemoryStore) Suggest(prefix string, limit int) ([]model.MemoryEntry, error) {
	prefix = NameKey(prefix)
	if prefix == "" || limit <= 0 {
		return nil, nil
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	rows, err := s.db.Query(
		`SELECT `+memoryCols+` FROM item_memory
		 WHERE name_key LIKE ? ESCAPE '\'
		 ORDER BY length(name) ASC, updated_at ASC
		 LIMIT ?`,
		escaped+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer rows.Close()

	var entries []model.MemoryEntry
	for rows.Next() {
		e, err := scanMemoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
