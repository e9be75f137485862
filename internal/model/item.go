package model

import "time"

// Item represents an inventory item type (quantity-based, not individual tracking).
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Quantity  int        `json:"quantity"`
	ImageMime string     `json:"image_mime,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Categories. The set is open: unrecognized categories behave like tools.
const (
	CategoryTool       = "tool"
	CategoryConsumable = "consumable"
)

// Item statuses, derived from quantity and category (see DeriveStatus).
const (
	ItemStatusInStock    = "in_stock"
	ItemStatusLowStock   = "low_stock"
	ItemStatusOutOfStock = "out_of_stock"
)

// LowStockThreshold is the quantity at or below which consumables are
// flagged as running low.
const LowStockThreshold = 10

// IsConsumable reports whether a category is consumed on checkout rather
// than loaned out. Unknown categories are treated as tool-like, so they get
// no low-stock warning and a full loan/return lifecycle.
func IsConsumable(category string) bool {
	return category == CategoryConsumable
}

// DeriveStatus computes an item's status from its quantity and category.
// The status column is never written except with the result of this
// function. Tool-like items are either in stock or out of stock; only
// consumables carry a low-stock warning.
func DeriveStatus(quantity int, category string) string {
	switch {
	case quantity == 0:
		return ItemStatusOutOfStock
	case IsConsumable(category) && quantity <= LowStockThreshold:
		return ItemStatusLowStock
	default:
		return ItemStatusInStock
	}
}
