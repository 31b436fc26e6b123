// Package category reads product categories from the catalogue.
package category

import (
	"context"

	"pos-backend/internal/domain"
)

type Repository interface {
	// List returns one row per category in use by an active product, ordered
	// by name.
	List(ctx context.Context) ([]domain.Category, error)
}
