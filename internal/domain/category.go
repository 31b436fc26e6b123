package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products saved without a category.
const DefaultCategory = "Other"

// Category is a product grouping derived from the catalogue. Counts cover
// active products only.
type Category struct {
	Name         string          `json:"name"`
	ProductCount int             `json:"productCount"`
	Stock        int             `json:"stock"`
	StockValue   decimal.Decimal `json:"stockValue"`
}

// NormalizeCategory trims name and falls back to DefaultCategory.
func NormalizeCategory(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultCategory
}
