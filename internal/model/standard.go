package model

import "time"

// StandardItem is a catalog entry for something the household always expects
// to restock. Catalog membership is independent of current inventory.
type StandardItem struct {
	NameKey         string    `json:"-"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DefaultQuantity float64   `json:"default_quantity"`
	CreatedAt       time.Time `json:"created_at"`
}
