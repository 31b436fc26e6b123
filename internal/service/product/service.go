package product

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"pos-backend/internal/domain"
	productrepo "pos-backend/internal/repository/product"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
	now    func() time.Time
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Input is the catalogue payload for create and update.
type Input struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Validationf("name required")
	}
	if in.Price.IsNegative() {
		return domain.Validationf("price must not be negative")
	}
	if in.Stock < 0 {
		return domain.Validationf("stock must not be negative")
	}
	return nil
}

func (s *Service) List(ctx context.Context, query string, includeArchived bool) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{Query: query, IncludeArchived: includeArchived})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Product{
		SKU:      strings.TrimSpace(in.SKU),
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Stock:    in.Stock,
		Category: domain.NormalizeCategory(in.Category),
	})
}

// Update edits name, price and category. Stock in the input is ignored; use
// Restock.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	in.Stock = 0
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, productrepo.Update{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Category: domain.NormalizeCategory(in.Category),
	})
}

// Restock adds received units to stock.
func (s *Service) Restock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.repo.Restock(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("product service: restock id=%s qty=%d stock=%d", id, qty, p.Stock)
	return p, nil
}

// Archive withdraws a product from sale. Products are never deleted so that
// past sale lines keep a valid reference.
func (s *Service) Archive(ctx context.Context, id string) error {
	if err := s.repo.Archive(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.logger.Printf("product service: archived id=%s", id)
	return nil
}
