package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-backend/internal/config"
	"pos-backend/internal/db"
	"pos-backend/internal/httpserver"
	"pos-backend/internal/loyalty"
	"pos-backend/internal/metrics"
	cartrepo "pos-backend/internal/repository/cart"
	categoryrepo "pos-backend/internal/repository/category"
	customerrepo "pos-backend/internal/repository/customer"
	"pos-backend/internal/repository/memory"
	productrepo "pos-backend/internal/repository/product"
	salerepo "pos-backend/internal/repository/sale"
	"pos-backend/internal/repository/uow"
	"pos-backend/internal/seed"
	cartsvc "pos-backend/internal/service/cart"
	categorysvc "pos-backend/internal/service/category"
	"pos-backend/internal/service/checkout"
	customersvc "pos-backend/internal/service/customer"
	productsvc "pos-backend/internal/service/product"
	reportsvc "pos-backend/internal/service/report"

	"github.com/shopspring/decimal"
)

type storage struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
	customers  customerrepo.Repository
	sales      salerepo.Repository
	uow        uow.UnitOfWork
	ready      map[string]httpserver.Pinger
	close      func()
}

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open storage: %v", err)
	}
	defer store.close()

	carts, err := openCartStore(ctx, cfg, logger, store.ready)
	if err != nil {
		logger.Fatalf("open cart store: %v", err)
	}
	if closer, ok := carts.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	engine, err := loyaltyEngine(cfg)
	if err != nil {
		logger.Fatalf("load loyalty tiers: %v", err)
	}
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logger.Fatalf("load report timezone: %v", err)
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	checkoutService := checkout.New(store.uow, engine, logger, checkout.WithMetrics(recorder))
	productService := productsvc.New(store.products, logger)
	cartService := cartsvc.New(carts, store.products, checkoutService, logger)
	customerService := customersvc.New(store.customers, store.sales, engine, logger)
	reportService := reportsvc.New(store.sales, store.products, reportsvc.Config{
		Location:   loc,
		WindowDays: cfg.ReportWindowDays,
	}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Products:    productService,
		Categories:  categorysvc.New(store.categories, cfg.ProductCategories, logger),
		Carts:       cartService,
		Customers:   customerService,
		Reports:     reportService,
		Sales:       store.sales,
		Metrics:     recorder,
		Ready:       store.ready,
		Location:    loc,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s storage=%s", cfg.HTTPAddr, cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// openStorage returns the inventory, customer and sale stores. The memory
// backend is seeded with demo data since it starts empty on every run.
func openStorage(ctx context.Context, cfg config.Config, logger *log.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		mem := memory.New(memory.WithLogger(logger))
		if err := seed.Apply(ctx, mem.Products(), mem.Customers()); err != nil {
			return nil, err
		}
		logger.Printf("using in-memory storage with demo data")
		return &storage{
			products:   mem.Products(),
			categories: mem.Categories(),
			customers:  mem.Customers(),
			sales:      mem.Sales(),
			uow:        mem,
			ready:      map[string]httpserver.Pinger{},
			close:      func() {},
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.DBConnString,
		db.WithMaxConns(cfg.DBMaxConns),
		db.WithPingRetry(5, 2*time.Second),
		db.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return &storage{
		products:   productrepo.NewPostgres(pool, logger),
		categories: categoryrepo.NewPostgres(pool, logger),
		customers:  customerrepo.NewPostgres(pool, logger),
		sales:      salerepo.NewPostgres(pool, logger),
		uow:        uow.NewPostgres(pool, logger),
		ready:      map[string]httpserver.Pinger{"postgres": pool},
		close:      pool.Close,
	}, nil
}

func openCartStore(ctx context.Context, cfg config.Config, logger *log.Logger, ready map[string]httpserver.Pinger) (cartrepo.Store, error) {
	if cfg.RedisURL == "" {
		logger.Printf("cart sessions kept in memory ttl=%s", cfg.CartTTL)
		return cartrepo.NewMemory(cfg.CartTTL), nil
	}
	rs, err := cartrepo.NewRedis(ctx, cfg.RedisURL, cfg.CartTTL, logger)
	if err != nil {
		return nil, err
	}
	ready["redis"] = rs
	logger.Printf("cart sessions kept in redis ttl=%s", cfg.CartTTL)
	return rs, nil
}

func loyaltyEngine(cfg config.Config) (*loyalty.Engine, error) {
	unit, err := decimal.NewFromString(cfg.LoyaltyPointUnit)
	if err != nil {
		return nil, err
	}
	table := loyalty.DefaultTable()
	if cfg.LoyaltyTiersFile != "" {
		table, err = loyalty.LoadTable(cfg.LoyaltyTiersFile)
		if err != nil {
			return nil, err
		}
	}
	return loyalty.NewEngine(table, loyalty.ProportionalPolicy(unit)), nil
}
