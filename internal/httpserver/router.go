package httpserver

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Products == nil || deps.Carts == nil || deps.Customers == nil || deps.Reports == nil || deps.Sales == nil {
		return nil, errors.New("httpserver: products, carts, customers, reports and sales are required")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	registerProductRoutes(router, deps.Products, logger)
	if deps.Categories != nil {
		router.GET("/categories", listCategoriesHandler(deps.Categories, logger))
	}
	registerCartRoutes(router, deps.Carts, logger)
	registerSaleRoutes(router, deps.Sales, deps.Reports, loc, logger)
	registerCustomerRoutes(router, deps.Customers, logger)
	registerReportRoutes(router, deps.Reports, loc, logger)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Code: "not_found", Message: "route not found"})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
