package model

import "time"

// ShoppingItem is an open row on the shopping list. BoughtAt stays nil for the
// row's whole life: marking an item bought pops the row into the pantry.
type ShoppingItem struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	NameKey    string     `json:"-"`
	Quantity   float64    `json:"quantity"`
	Category   string     `json:"category"`
	IsStandard bool       `json:"is_standard"`
	CreatedAt  time.Time  `json:"created_at"`
	BoughtAt   *time.Time `json:"bought_at"`
}

type PantryItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NameKey    string    `json:"-"`
	Quantity   float64   `json:"quantity"`
	Category   string    `json:"category"`
	IsStandard bool      `json:"is_standard"`
	CreatedAt  time.Time `json:"created_at"`
}
