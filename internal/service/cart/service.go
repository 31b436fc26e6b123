package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"pos-backend/internal/cart"
	"pos-backend/internal/domain"
	cartrepo "pos-backend/internal/repository/cart"
	"pos-backend/internal/service/checkout"

	"github.com/google/uuid"
)

type Service struct {
	store     cartrepo.Store
	products  productRepo
	committer committer
	logger    *log.Logger
	now       func() time.Time
}

type productRepo interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type committer interface {
	Commit(ctx context.Context, c *cart.Cart, req checkout.CommitRequest) (*checkout.Receipt, error)
}

func New(store cartrepo.Store, products productRepo, committer committer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, products: products, committer: committer, logger: logger, now: time.Now}
}

// UpdateInput applies several line edits to a cart. Actions run in order and
// the cart is saved only if all succeed.
type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action    string `json:"action"`
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// Adjustment records a line changed by Refresh.
type Adjustment struct {
	ProductID string `json:"productId"`
	Previous  int    `json:"previous"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (s *Service) Create(ctx context.Context) (*cart.Cart, error) {
	c := cart.New(uuid.NewString(), s.now().UTC())
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Printf("cart service: created id=%s", c.ID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*cart.Cart, error) {
	return s.store.Get(ctx, id)
}

// Cancel discards the cart. Inventory and customers are never touched by a
// cart, so nothing else needs undoing.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("cart service: cancelled id=%s", id)
	return nil
}

func (s *Service) AddLine(ctx context.Context, cartID, productID string, qty int) (*cart.Cart, error) {
	return s.Update(ctx, cartID, UpdateInput{Actions: []UpdateAction{{Action: "addLine", ProductID: productID, Quantity: &qty}}})
}

func (s *Service) SetQuantity(ctx context.Context, cartID, productID string, qty int) (*cart.Cart, error) {
	return s.Update(ctx, cartID, UpdateInput{Actions: []UpdateAction{{Action: "setQuantity", ProductID: productID, Quantity: &qty}}})
}

func (s *Service) RemoveLine(ctx context.Context, cartID, productID string) (*cart.Cart, error) {
	return s.Update(ctx, cartID, UpdateInput{Actions: []UpdateAction{{Action: "removeLine", ProductID: productID}}})
}

func (s *Service) Update(ctx context.Context, cartID string, in UpdateInput) (*cart.Cart, error) {
	if len(in.Actions) == 0 {
		return nil, domain.Validationf("actions required")
	}
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for _, action := range in.Actions {
		productID := strings.TrimSpace(action.ProductID)
		if productID == "" {
			return nil, domain.Validationf("productId required")
		}
		switch strings.ToLower(strings.TrimSpace(action.Action)) {
		case "addline":
			qty := 1
			if action.Quantity != nil {
				qty = *action.Quantity
			}
			product, err := s.product(ctx, productID)
			if err != nil {
				return nil, err
			}
			if err := c.AddLine(*product, qty); err != nil {
				return nil, err
			}
		case "setquantity":
			if action.Quantity == nil {
				return nil, domain.Validationf("quantity required")
			}
			qty := *action.Quantity
			if qty >= 1 {
				// Check against the freshest stock figure.
				product, err := s.product(ctx, productID)
				if err != nil {
					return nil, err
				}
				c.UpdateStock(productID, product.Stock)
			}
			if err := c.SetQuantity(productID, qty); err != nil {
				return nil, err
			}
		case "removeline":
			c.RemoveLine(productID)
		default:
			return nil, domain.Validationf("unsupported action %q", action.Action)
		}
	}

	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh re-reads stock for every line. Lines above the new stock are cut
// down to it, and lines whose product is gone, archived or sold out are
// removed.
func (s *Service) Refresh(ctx context.Context, cartID string) (*cart.Cart, []Adjustment, error) {
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	var adjustments []Adjustment
	for _, line := range c.Lines() {
		product, err := s.products.Get(ctx, line.ProductID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.RemoveLine(line.ProductID)
			adjustments = append(adjustments, Adjustment{ProductID: line.ProductID, Previous: line.Quantity, Reason: "not_found"})
			continue
		case err != nil:
			return nil, nil, err
		case product.Archived():
			c.RemoveLine(line.ProductID)
			adjustments = append(adjustments, Adjustment{ProductID: line.ProductID, Previous: line.Quantity, Reason: "archived"})
			continue
		}
		over, _ := c.UpdateStock(line.ProductID, product.Stock)
		if !over {
			continue
		}
		if err := c.SetQuantity(line.ProductID, product.Stock); err != nil {
			return nil, nil, err
		}
		adjustments = append(adjustments, Adjustment{ProductID: line.ProductID, Previous: line.Quantity, Quantity: product.Stock, Reason: "insufficient_stock"})
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, nil, err
	}
	if len(adjustments) > 0 {
		s.logger.Printf("cart service: refreshed id=%s adjusted=%d", cartID, len(adjustments))
	}
	return c, adjustments, nil
}

// Checkout commits the cart and discards it on success. A failed commit
// leaves the cart in place so the cashier can refresh and retry.
func (s *Service) Checkout(ctx context.Context, cartID string, req checkout.CommitRequest) (*checkout.Receipt, error) {
	if s.committer == nil {
		return nil, errors.New("checkout unavailable")
	}
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.committer.Commit(ctx, c, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, cartID); err != nil {
		s.logger.Printf("cart service: discard committed cart id=%s sale=%s error=%v", cartID, receipt.SaleID, err)
	}
	return receipt, nil
}

func (s *Service) product(ctx context.Context, id string) (*domain.Product, error) {
	if s.products == nil {
		return nil, errors.New("product repository unavailable")
	}
	return s.products.Get(ctx, id)
}
