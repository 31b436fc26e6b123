package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"pos-backend/internal/metrics"
	cartsvc "pos-backend/internal/service/cart"
	categorysvc "pos-backend/internal/service/category"
	customersvc "pos-backend/internal/service/customer"
	productsvc "pos-backend/internal/service/product"
	reportsvc "pos-backend/internal/service/report"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API serves.
type Deps struct {
	Products   *productsvc.Service
	Categories *categorysvc.Service
	Carts      *cartsvc.Service
	Customers  *customersvc.Service
	Reports    *reportsvc.Service
	Sales      SaleReader
	Metrics    *metrics.Recorder

	// Ready maps dependency names ("postgres", "redis") to readiness checks.
	Ready map[string]Pinger
	// Location interprets date-only query parameters.
	Location    *time.Location
	CORSOrigins []string
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server with all routes.
func New(addr string, logger *log.Logger, deps Deps) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	router, err := buildRouter(logger, deps)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(checks map[string]Pinger) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		for _, name := range names {
			if checks[name] == nil {
				continue
			}
			if err := checks[name].Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": name + " not reachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
