// Package checkout turns a cart into a committed sale. Each commit runs in one
// unit of work: the sale header and its line items, the stock decrements and
// the customer's loyalty accrual are stored together or not at all.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"pos-backend/internal/cart"
	"pos-backend/internal/domain"
	"pos-backend/internal/loyalty"
	"pos-backend/internal/metrics"
	"pos-backend/internal/repository/uow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is a commit lifecycle stage. A commit moves Draft → Validating →
// Committing and ends Committed or Aborted.
type State string

const (
	StateDraft      State = "draft"
	StateValidating State = "validating"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateAborted    State = "aborted"
)

// CommitRequest carries the payment details of a sale.
type CommitRequest struct {
	Tender        decimal.Decimal
	PaymentMethod string
	CustomerID    *string
	CashierID     string
}

// CustomerSnapshot is the customer as left by the commit.
type CustomerSnapshot struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Points       int64           `json:"points"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	PointsEarned int64           `json:"pointsEarned"`
	TierBefore   string          `json:"tierBefore"`
	Tier         string          `json:"tier"`
}

// Receipt describes a committed sale.
type Receipt struct {
	SaleID        string                `json:"saleId"`
	CreatedAt     time.Time             `json:"createdAt"`
	Total         decimal.Decimal       `json:"total"`
	Tendered      decimal.Decimal       `json:"tendered"`
	Change        decimal.Decimal       `json:"change"`
	PaymentMethod string                `json:"paymentMethod"`
	CashierID     string                `json:"cashierId"`
	Lines         []domain.SaleLineItem `json:"lines"`
	Customer      *CustomerSnapshot     `json:"customer,omitempty"`
}

// Service commits sales.
type Service struct {
	uow     uow.UnitOfWork
	loyalty *loyalty.Engine
	metrics *metrics.Recorder
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records commit outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the sale timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides sale ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New returns a Service. A nil engine uses the default tier table and points
// policy.
func New(u uow.UnitOfWork, engine *loyalty.Engine, logger *log.Logger, opts ...Option) *Service {
	if engine == nil {
		engine = loyalty.NewEngine(nil, nil)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		uow:     u,
		loyalty: engine,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit validates the cart and payment and stores the sale. The cart is not
// modified. On error nothing has been stored, except that a
// *domain.PersistenceError with Op "commit" leaves the outcome unknown.
// Commit never retries; a *domain.StockConflictError tells the caller to
// refresh the cart and try again.
func (s *Service) Commit(ctx context.Context, c *cart.Cart, req CommitRequest) (*Receipt, error) {
	started := time.Now()
	saleID := s.newID()
	state := StateDraft
	s.logger.Printf("checkout: sale=%s state=%s lines=%d", saleID, state, lineCount(c))

	state = StateValidating
	sale, err := s.validate(c, req, saleID)
	if err != nil {
		s.finish(saleID, state, started, err)
		return nil, err
	}

	state = StateCommitting
	var snapshot *CustomerSnapshot
	err = s.uow.Do(ctx, func(ctx context.Context, r uow.Repos) error {
		var err error
		snapshot, err = s.apply(ctx, r, sale)
		return err
	})
	if err != nil {
		err = domain.Persistence("commit", err)
		s.finish(saleID, state, started, err)
		return nil, err
	}

	s.finish(saleID, StateCommitted, started, nil)
	if s.metrics != nil {
		units := 0
		for _, l := range sale.Lines {
			units += l.Quantity
		}
		total, _ := sale.Total.Float64()
		s.metrics.ObserveSale(total, units)
	}
	return &Receipt{
		SaleID:        sale.ID,
		CreatedAt:     sale.CreatedAt,
		Total:         sale.Total,
		Tendered:      sale.Tendered,
		Change:        sale.Change,
		PaymentMethod: sale.PaymentMethod,
		CashierID:     sale.CashierID,
		Lines:         sale.Lines,
		Customer:      snapshot,
	}, nil
}

func (s *Service) validate(c *cart.Cart, req CommitRequest, saleID string) (*domain.Sale, error) {
	if c == nil || c.Empty() {
		return nil, domain.ErrEmptyCart
	}
	cashier := strings.TrimSpace(req.CashierID)
	if cashier == "" {
		return nil, domain.ErrCashierRequired
	}
	total := c.Total()
	if req.Tender.LessThan(total) {
		return nil, fmt.Errorf("%w: total %s, tendered %s", domain.ErrInsufficientPayment, total, req.Tender)
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = domain.PaymentCash
	}
	var customerID *string
	if req.CustomerID != nil {
		if id := strings.TrimSpace(*req.CustomerID); id != "" {
			customerID = &id
		}
	}

	lines := c.Lines()
	items := make([]domain.SaleLineItem, 0, len(lines))
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		items = append(items, domain.SaleLineItem{
			SaleID:      saleID,
			LineNo:      i + 1,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return &domain.Sale{
		ID:            saleID,
		CreatedAt:     s.now().UTC(),
		Total:         domain.LinesTotal(items),
		Tendered:      req.Tender,
		Change:        req.Tender.Sub(total),
		PaymentMethod: method,
		CustomerID:    customerID,
		CashierID:     cashier,
		Lines:         items,
	}, nil
}

// apply performs the writes of one commit inside a unit of work. The customer
// row is locked before any product row, and products are decremented in
// ascending ID order, so concurrent commits acquire locks in the same order.
func (s *Service) apply(ctx context.Context, r uow.Repos, sale *domain.Sale) (*CustomerSnapshot, error) {
	var (
		cust       *domain.Customer
		tierBefore loyalty.Tier
	)
	if sale.CustomerID != nil {
		var err error
		cust, err = r.Customers.GetForUpdate(ctx, *sale.CustomerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validationf("customer %s does not exist", *sale.CustomerID)
			}
			return nil, domain.Persistence("lock customer", err)
		}
		tierBefore = s.loyalty.TierFor(cust.TotalSpent)
		sale.PointsEarned = s.loyalty.PointsEarned(sale.Total, tierBefore)
	}

	ordered := make([]domain.SaleLineItem, len(sale.Lines))
	copy(ordered, sale.Lines)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
	for _, l := range ordered {
		if _, err := r.Products.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validationf("product %s does not exist", l.ProductID)
			}
			return nil, domain.Persistence("decrement stock", err)
		}
	}

	if err := r.Sales.Insert(ctx, *sale); err != nil {
		return nil, domain.Persistence("insert sale", err)
	}

	if cust == nil {
		return nil, nil
	}
	updated, err := r.Customers.AdjustPointsAndSpend(ctx, cust.ID, sale.PointsEarned, sale.Total)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("customer %s does not exist", cust.ID)
		}
		return nil, domain.Persistence("accrue loyalty", err)
	}
	return &CustomerSnapshot{
		ID:           updated.ID,
		Name:         updated.Name,
		Points:       updated.Points,
		TotalSpent:   updated.TotalSpent,
		PointsEarned: sale.PointsEarned,
		TierBefore:   tierBefore.Name,
		Tier:         s.loyalty.TierFor(updated.TotalSpent).Name,
	}, nil
}

func (s *Service) finish(saleID string, state State, started time.Time, err error) {
	elapsed := time.Since(started)
	if err == nil {
		s.logger.Printf("checkout: sale=%s state=%s elapsed=%s", saleID, state, elapsed)
		s.metrics.ObserveCommit(metrics.OutcomeCommitted, elapsed)
		return
	}
	kind := domain.KindOf(err)
	s.logger.Printf("checkout: sale=%s state=%s failed_in=%s kind=%s error=%v", saleID, StateAborted, state, kind, err)
	s.metrics.ObserveCommit(outcome(kind), elapsed)
}

func lineCount(c *cart.Cart) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

func outcome(k domain.Kind) string {
	switch k {
	case domain.KindConflict:
		return metrics.OutcomeConflict
	case domain.KindPersistence:
		return metrics.OutcomePersistence
	default:
		return metrics.OutcomeValidation
	}
}
