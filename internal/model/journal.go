package model

import "time"

// JournalEntry is a one-line household memory, optionally with a photo stored
// in the blob store.
type JournalEntry struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Tags        string    `json:"tags"`
	PhotoBlobID *string   `json:"photo_blob_id"`
	CreatedAt   time.Time `json:"created_at"`
}
