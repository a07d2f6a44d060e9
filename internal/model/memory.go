package model

import "time"

// MemoryEntry remembers the last-used values for an item name, keyed by the
// trimmed lowercase name. Advisory only: it prefills entry forms and is never
// consulted for merge decisions.
type MemoryEntry struct {
	NameKey    string    `json:"-"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Location   string    `json:"location"`
	Quantity   float64   `json:"quantity"`
	IsStandard bool      `json:"is_standard"`
	UpdatedAt  time.Time `json:"updated_at"`
}
