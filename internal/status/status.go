// Package status derives read-only views from the current list state: items
// grouped by category for display, and per-catalog-entry presence tags.
package status

import (
	"sort"
	"strings"

	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/store"
)

// Tag classifies a standard catalog entry by where the item currently is.
type Tag string

const (
	TagAtHomeAndOnList Tag = "at_home_and_on_list"
	TagAtHome          Tag = "at_home"
	TagOnList          Tag = "on_list"
	TagMissing         Tag = "missing"
)

type ShoppingGroup struct {
	Category string               `json:"category"`
	Items    []model.ShoppingItem `json:"items"`
}

type PantryGroup struct {
	Category string             `json:"category"`
	Items    []model.PantryItem `json:"items"`
}

// StandardStatus pairs a catalog entry with its presence tag.
type StandardStatus struct {
	Entry model.StandardItem `json:"entry"`
	Tag   Tag                `json:"tag"`
}

// GroupShopping buckets list rows by category. Categories sort
// case-insensitively with Uncategorized always last; rows inside a group keep
// the order they arrived in.
func GroupShopping(items []model.ShoppingItem) []ShoppingGroup {
	byCategory := make(map[string][]model.ShoppingItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := make([]ShoppingGroup, 0, len(byCategory))
	for _, category := range sortCategories(byCategory) {
		groups = append(groups, ShoppingGroup{Category: category, Items: byCategory[category]})
	}
	return groups
}

// GroupPantry is GroupShopping for pantry rows.
func GroupPantry(items []model.PantryItem) []PantryGroup {
	byCategory := make(map[string][]model.PantryItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := make([]PantryGroup, 0, len(byCategory))
	for _, category := range sortCategories(byCategory) {
		groups = append(groups, PantryGroup{Category: category, Items: byCategory[category]})
	}
	return groups
}

func sortCategories[T any](byCategory map[string][]T) []string {
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := categories[i], categories[j]
		if a == store.Uncategorized {
			return false
		}
		if b == store.Uncategorized {
			return true
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return categories
}

// Standards tags every catalog entry by whether its nameKey appears on the
// shopping list, in the pantry, both, or neither. The result keeps the
// catalog's own ordering.
func Standards(entries []model.StandardItem, shopping []model.ShoppingItem, pantry []model.PantryItem) []StandardStatus {
	onList := make(map[string]bool, len(shopping))
	for _, item := range shopping {
		onList[item.NameKey] = true
	}
	atHome := make(map[string]bool, len(pantry))
	for _, item := range pantry {
		atHome[item.NameKey] = true
	}

	statuses := make([]StandardStatus, 0, len(entries))
	for _, entry := range entries {
		var tag Tag
		switch {
		case atHome[entry.NameKey] && onList[entry.NameKey]:
			tag = TagAtHomeAndOnList
		case atHome[entry.NameKey]:
			tag = TagAtHome
		case onList[entry.NameKey]:
			tag = TagOnList
		default:
			tag = TagMissing
		}
		statuses = append(statuses, StandardStatus{Entry: entry, Tag: tag})
	}
	return statuses
}

// Missing filters a tagged catalog down to entries absent from both lists.
func Missing(statuses []StandardStatus) []model.StandardItem {
	var missing []model.StandardItem
	for _, s := range statuses {
		if s.Tag == TagMissing {
			missing = append(missing, s.Entry)
		}
	}
	return missing
}
