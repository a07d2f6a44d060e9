package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/hamfast/internal/model"
)

type JournalStore struct {
	db querier
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func scanJournalEntry(scanner interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var blobID sql.NullString
	err := scanner.Scan(&e.ID, &e.Text, &e.Tags, &blobID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if blobID.Valid {
		e.PhotoBlobID = &blobID.String
	}
	return &e, nil
}

const journalCols = `id, text, tags, photo_blob_id, created_at`

func (s *JournalStore) Create(text, tags string, photoBlobID *string) (*model.JournalEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("create journal entry: empty text")
	}

	var blobID sql.NullString
	if photoBlobID != nil {
		blobID = sql.NullString{String: *photoBlobID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO journal_entries (text, tags, photo_blob_id) VALUES (?, ?, ?)`,
		text, strings.TrimSpace(tags), blobID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *JournalStore) GetByID(id int64) (*model.JournalEntry, error) {
	row := s.db.QueryRow(`SELECT `+journalCols+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanJournalEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return e, nil
}

// ListRecent returns the newest entries first.
func (s *JournalStore) ListRecent(limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+journalCols+` FROM journal_entries ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *JournalStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return nil
}
