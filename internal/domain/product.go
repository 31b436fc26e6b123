package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory item. Stock is owned by the inventory store and only
// changes through a committed sale or a restock.
type Product struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku,omitempty"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Category   string          `json:"category,omitempty"`
	ArchivedAt *time.Time      `json:"archivedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Archived reports whether the product has been withdrawn from sale.
func (p Product) Archived() bool {
	return p.ArchivedAt != nil
}
