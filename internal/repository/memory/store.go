// Package memory is an in-process implementation of the inventory, customer
// and sale repositories with a unit of work. Writers are serialised by one
// mutex; a unit of work edits a copy of the state that replaces the live
// state only when fn succeeds.
package memory

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/customer"
	"pos-backend/internal/repository/product"
	"pos-backend/internal/repository/sale"
	"pos-backend/internal/repository/uow"

	"github.com/google/uuid"
)

type state struct {
	products  map[string]domain.Product
	skus      map[string]string
	customers map[string]domain.Customer
	sales     []domain.Sale
	saleIndex map[string]int
}

func newState() *state {
	return &state{
		products:  make(map[string]domain.Product),
		skus:      make(map[string]string),
		customers: make(map[string]domain.Customer),
		saleIndex: make(map[string]int),
	}
}

// clone copies the maps and the sale slice. Sales are immutable once stored,
// so their line slices are shared.
func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]domain.Product, len(s.products)),
		skus:      make(map[string]string, len(s.skus)),
		customers: make(map[string]domain.Customer, len(s.customers)),
		sales:     make([]domain.Sale, len(s.sales)),
		saleIndex: make(map[string]int, len(s.saleIndex)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	copy(c.sales, s.sales)
	for k, v := range s.saleIndex {
		c.saleIndex[k] = v
	}
	return c
}

// Store holds all data in memory.
type Store struct {
	mu     sync.RWMutex
	st     *state
	logger *log.Logger
	now    func() time.Time

	failMu   sync.Mutex
	failures map[string]error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		st:       newState(),
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
		failures: make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Operation names accepted by FailOn.
const (
	OpDecrementStock = "product.decrement"
	OpAdjustCustomer = "customer.adjust"
	OpInsertSale     = "sale.insert"
	OpCommit         = "commit"
)

// FailOn makes the named operation return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) injected(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

// Products returns the inventory repository outside any unit of work.
func (s *Store) Products() product.Repository { return &productRepo{view{store: s}} }

// Customers returns the customer repository outside any unit of work.
func (s *Store) Customers() customer.Repository { return &customerRepo{view{store: s}} }

// Sales returns the sale repository outside any unit of work.
func (s *Store) Sales() sale.Repository { return &saleRepo{view{store: s}} }

// Do implements uow.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, r uow.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "begin", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	v := view{store: s, tx: working}
	repos := uow.Repos{
		Products:  &productRepo{v},
		Customers: &customerRepo{v},
		Sales:     &saleRepo{v},
	}
	if err := fn(ctx, repos); err != nil {
		s.logger.Printf("memory store: unit of work aborted error=%v", err)
		return err
	}
	if err := s.injected(OpCommit); err != nil {
		return &domain.PersistenceError{Op: "commit", Err: err}
	}
	s.st = working
	return nil
}

// view binds a repository either to the live state, taking the store lock per
// call, or to the working copy of a unit of work that already holds it.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func newID() string {
	return uuid.NewString()
}

var _ uow.UnitOfWork = (*Store)(nil)
