package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Uncategorized is the sentinel category for blank input.
const Uncategorized = "Uncategorized"

// NameKey returns the case-insensitive dedup key for an item name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeCategory trims category input and falls back to the sentinel.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return Uncategorized
	}
	return category
}

// querier is the subset of *sql.DB and *sql.Tx the stores run against.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Stores bundles the per-table stores sharing one database handle.
type Stores struct {
	db *sql.DB

	Shopping  *ShoppingStore
	Pantry    *PantryStore
	Standards *StandardStore
	Memory    *MemoryStore
	Journal   *JournalStore
	Settings  *SettingsStore
	Snapshots *SnapshotStore
	Push      *PushStore
}

// New builds the store bundle on a single database handle.
func New(db *sql.DB) *Stores {
	s := &Stores{db: db}
	s.bind(db)
	return s
}

func (s *Stores) bind(q querier) {
	s.Shopping = &ShoppingStore{db: q}
	s.Pantry = &PantryStore{db: q}
	s.Standards = &StandardStore{db: q}
	s.Memory = &MemoryStore{db: q}
	s.Journal = &JournalStore{db: q}
	s.Settings = &SettingsStore{db: q}
	s.Snapshots = &SnapshotStore{db: q}
	s.Push = &PushStore{db: q}
}

// DB exposes the underlying handle for maintenance commands (WAL checkpoint).
func (s *Stores) DB() *sql.DB {
	return s.db
}

// WithTx runs fn against a view of the stores bound to one transaction.
// Multi-step list transitions go through here so a crash mid-flow cannot drop
// an item from both lists. The transaction commits when fn returns nil and
// rolls back otherwise; prior state is left unchanged on failure.
func (s *Stores) WithTx(fn func(*Stores) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStores := &Stores{}
	txStores.bind(tx)

	if err := fn(txStores); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
