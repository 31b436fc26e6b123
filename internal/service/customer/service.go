package customer

import (
	"context"
	"io"
	"log"
	"net/mail"
	"strings"

	"pos-backend/internal/domain"
	"pos-backend/internal/loyalty"
	custrepo "pos-backend/internal/repository/customer"

	"github.com/shopspring/decimal"
)

type saleHistory interface {
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Sale, error)
}

// Service manages loyalty members. Points and spend are read-only here; they
// change only when a sale is committed.
type Service struct {
	repo    custrepo.Repository
	sales   saleHistory
	loyalty *loyalty.Engine
	logger  *log.Logger
}

// New creates a Service. A nil engine uses the default tier table.
func New(repo custrepo.Repository, sales saleHistory, engine *loyalty.Engine, logger *log.Logger) *Service {
	if engine == nil {
		engine = loyalty.NewEngine(nil, nil)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, sales: sales, loyalty: engine, logger: logger}
}

// CreateInput captures the contact fields of a new member.
type CreateInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// TierInfo is a customer's current membership level.
type TierInfo struct {
	CustomerID      string          `json:"customerId"`
	Name            string          `json:"tier"`
	DiscountPct     decimal.Decimal `json:"discountPct"`
	PointMultiplier decimal.Decimal `json:"pointMultiplier"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	Points          int64           `json:"points"`
	NextTier        string          `json:"nextTier,omitempty"`
	SpendToNextTier decimal.Decimal `json:"spendToNextTier"`
}

// Create registers a member with zero points and spend.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validationf("name required")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, domain.Validationf("invalid email %q", in.Email)
		}
	}
	c, err := s.repo.Create(ctx, domain.Customer{
		Name:    name,
		Phone:   strings.TrimSpace(in.Phone),
		Email:   email,
		Address: strings.TrimSpace(in.Address),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("customer service: created id=%s", c.ID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

// TierFor resolves the customer's tier from their cumulative spend.
func (s *Service) TierFor(ctx context.Context, id string) (*TierInfo, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tier := s.loyalty.TierFor(c.TotalSpent)
	info := &TierInfo{
		CustomerID:      c.ID,
		Name:            tier.Name,
		DiscountPct:     loyalty.DiscountFor(tier),
		PointMultiplier: tier.PointMultiplier,
		TotalSpent:      c.TotalSpent,
		Points:          c.Points,
		SpendToNextTier: decimal.Zero,
	}
	for _, t := range s.loyalty.Table().Tiers() {
		if t.MinSpend.GreaterThan(c.TotalSpent) {
			info.NextTier = t.Name
			info.SpendToNextTier = t.MinSpend.Sub(c.TotalSpent)
			break
		}
	}
	return info, nil
}

// Sales returns the member's purchase history, newest first.
func (s *Service) Sales(ctx context.Context, id string, limit int) ([]domain.Sale, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.sales.ListByCustomer(ctx, id, limit)
}

// Tiers lists the membership table in ascending order.
func (s *Service) Tiers() []loyalty.Tier {
	return s.loyalty.Table().Tiers()
}
