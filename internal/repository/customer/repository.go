package customer

import (
	"context"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Repository persists and fetches loyalty customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	// GetForUpdate reads the customer and, inside a transaction, holds its
	// row lock until commit.
	GetForUpdate(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	// AdjustPointsAndSpend adds to the points balance and cumulative spend in
	// one statement.
	AdjustPointsAndSpend(ctx context.Context, id string, points int64, spend decimal.Decimal) (*domain.Customer, error)
}
