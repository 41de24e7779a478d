package model

import "time"

// Category features decide which screens may reference a category.
const (
	FeatureProducts    = "products"
	FeatureFooterIcons = "footerIcons"
	FeatureFooterLinks = "footerLinks"
)

// Product stock statuses. Status is derived from Stock and never client-supplied.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// Uncategorized is the display name for products without a category.
const Uncategorized = "Uncategorized"

// Category groups products or footer entries.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Feature     string    `json:"feature"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog item. CategoryID is nil once its category is deleted.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CategoryID   *string   `json:"category_id"`
	CategoryName string    `json:"category"`
	PriceCents   int64     `json:"price_cents"`
	Stock        int       `json:"stock"`
	Status       string    `json:"status"`
	ImageKey     string    `json:"image_key,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockStatus returns the status label for a stock level.
func StockStatus(stock int) string {
	if stock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

// ProductStats summarises the catalog.
type ProductStats struct {
	Total               int   `json:"total"`
	InStock             int   `json:"in_stock"`
	OutOfStock          int   `json:"out_of_stock"`
	InventoryValueCents int64 `json:"inventory_value_cents"`
}
