// Package cart stores in-progress carts between requests. Carts are
// session-local: nothing here touches inventory.
package cart

import (
	"context"

	"pos-backend/internal/cart"
)

// Store keeps carts by ID. Get returns domain.ErrNotFound for unknown or
// expired carts.
type Store interface {
	Get(ctx context.Context, id string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, id string) error
}
