// Package report serves sales reports over the sale ledger.
package report

import (
	"context"
	"io"
	"log"
	"time"

	"pos-backend/internal/domain"
	"pos-backend/internal/report"
	"pos-backend/internal/repository/product"

	"golang.org/x/sync/errgroup"
)

// UnknownProduct names products that no longer exist in the catalogue.
const UnknownProduct = "Unknown"

type saleLister interface {
	ListByWindow(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
}

type productLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	List(ctx context.Context, f product.ListFilter) ([]domain.Product, error)
}

// Service reads the ledger and delegates the arithmetic to package report.
type Service struct {
	sales      saleLister
	products   productLookup
	loc        *time.Location
	windowDays int
	now        func() time.Time
	logger     *log.Logger
}

// Config holds reporting defaults.
type Config struct {
	Location   *time.Location
	WindowDays int
	Now        func() time.Time
}

// New returns a Service. Zero config values default to UTC, a 30 day window
// and time.Now.
func New(sales saleLister, products productLookup, cfg Config, logger *log.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		sales:      sales,
		products:   products,
		loc:        cfg.Location,
		windowDays: cfg.WindowDays,
		now:        cfg.Now,
		logger:     logger,
	}
}

// Window resolves a requested window. A zero start or end falls back to the
// trailing default window.
func (s *Service) Window(start, end time.Time) (report.Window, error) {
	def := report.TrailingWindow(s.now(), s.windowDays)
	w := report.Window{Start: start, End: end}
	if w.Start.IsZero() {
		w.Start = def.Start
	}
	if w.End.IsZero() {
		w.End = def.End
	}
	return w, w.Validate()
}

// Summary buckets the window's sales by g.
func (s *Service) Summary(ctx context.Context, start, end time.Time, g report.Granularity) (*report.Summary, error) {
	w, err := s.Window(start, end)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListByWindow(ctx, w.Start, w.End)
	if err != nil {
		s.logger.Printf("report: summary window=%s error=%v", w, err)
		return nil, domain.Persistence("list sales", err)
	}
	sum := report.Summarize(sales, w, g, s.loc)
	return &sum, nil
}

// TopProducts ranks the window's products by revenue and names them from the
// current catalogue.
func (s *Service) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]report.ProductRevenue, error) {
	w, err := s.Window(start, end)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListByWindow(ctx, w.Start, w.End)
	if err != nil {
		s.logger.Printf("report: top products window=%s error=%v", w, err)
		return nil, domain.Persistence("list sales", err)
	}
	top := report.TopProducts(sales, w, limit)
	ids := make([]string, len(top))
	for i, p := range top {
		ids[i] = p.ProductID
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("load products", err)
	}
	nameProducts(top, products)
	return top, nil
}

// Dashboard is the combined view shown on the POS home screen.
type Dashboard struct {
	Window      report.Window                         `json:"window"`
	TotalSales  string                                `json:"totalSales"`
	TotalCount  int                                   `json:"totalCount"`
	Average     string                                `json:"average"`
	Series      map[report.Granularity]report.Summary `json:"series"`
	TopProducts []report.ProductRevenue               `json:"topProducts"`
}

// Dashboard loads the trailing window's sales and the catalogue
// concurrently, then builds all three series and the top products.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	w, err := s.Window(time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	var (
		sales    []domain.Sale
		products map[string]domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.sales.ListByWindow(gctx, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.allProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Printf("report: dashboard window=%s error=%v", w, err)
		return nil, domain.Persistence("load dashboard", err)
	}

	d := &Dashboard{Window: w, Series: make(map[report.Granularity]report.Summary, 3)}
	for _, gr := range []report.Granularity{report.Daily, report.Weekly, report.Monthly} {
		d.Series[gr] = report.Summarize(sales, w, gr, s.loc)
	}
	daily := d.Series[report.Daily]
	d.TotalSales = daily.TotalSales.String()
	d.TotalCount = daily.TotalCount
	d.Average = daily.Average.String()
	d.TopProducts = report.TopProducts(sales, w, report.DefaultTopN)
	nameProducts(d.TopProducts, products)
	return d, nil
}

// allProducts includes archived products so past sales keep their names.
func (s *Service) allProducts(ctx context.Context) (map[string]domain.Product, error) {
	list, err := s.products.List(ctx, product.ListFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func nameProducts(rows []report.ProductRevenue, products map[string]domain.Product) {
	for i := range rows {
		if p, ok := products[rows[i].ProductID]; ok {
			rows[i].ProductName = p.Name
			continue
		}
		rows[i].ProductName = UnknownProduct
	}
}
