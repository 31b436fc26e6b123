package product

import (
	"context"
	"time"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Update carries the mutable catalogue fields of a product. Stock is changed
// only through Restock and DecrementStock.
type Update struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

// ListFilter narrows List results.
type ListFilter struct {
	IncludeArchived bool
	Query           string
}

// Repository is the inventory store.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	List(ctx context.Context, f ListFilter) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	// Upsert inserts or updates by SKU. Stock of an existing product is left
	// untouched.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, u Update) (*domain.Product, error)
	Restock(ctx context.Context, id string, qty int) (*domain.Product, error)
	Archive(ctx context.Context, id string, at time.Time) error
	// DecrementStock subtracts qty only if the current stock covers it and
	// returns the remaining stock. A failed check returns *StockConflictError.
	DecrementStock(ctx context.Context, id string, qty int) (int, error)
}
