// Package sale stores the immutable sale ledger.
package sale

import (
	"context"
	"time"

	"pos-backend/internal/domain"
)

// Repository appends sales and reads them back. There is no update or delete.
type Repository interface {
	// Insert writes the header and all line items.
	Insert(ctx context.Context, s domain.Sale) error
	Get(ctx context.Context, id string) (*domain.Sale, error)
	// ListByWindow returns sales with CreatedAt in [start, end), oldest first,
	// each with its line items.
	ListByWindow(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
	// ListByCustomer returns a customer's sales, newest first.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Sale, error)
}
