package httpserver

import (
	"log"
	"net/http"
	"strconv"

	"pos-backend/internal/domain"
	customersvc "pos-backend/internal/service/customer"

	"github.com/gin-gonic/gin"
)

func registerCustomerRoutes(r gin.IRouter, svc *customersvc.Service, logger *log.Logger) {
	g := r.Group("/customers")
	g.GET("", listCustomersHandler(svc, logger))
	g.POST("", createCustomerHandler(svc, logger))
	g.GET("/:id", getCustomerHandler(svc, logger))
	g.GET("/:id/tier", customerTierHandler(svc, logger))
	g.GET("/:id/sales", customerSalesHandler(svc, logger))

	r.GET("/loyalty/tiers", func(c *gin.Context) {
		tiers := svc.Tiers()
		c.JSON(http.StatusOK, gin.H{"count": len(tiers), "results": tiers})
	})
}

func listCustomersHandler(svc *customersvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if customers == nil {
			customers = []domain.Customer{}
		}
		c.JSON(http.StatusOK, gin.H{"count": len(customers), "results": customers})
	}
}

func createCustomerHandler(svc *customersvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in customersvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid customer payload")
			return
		}
		cust, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, cust)
	}
}

func getCustomerHandler(svc *customersvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cust)
	}
}

func customerTierHandler(svc *customersvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.TierFor(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func customerSalesHandler(svc *customersvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				badRequest(c, "limit must be a positive integer")
				return
			}
			limit = n
		}
		sales, err := svc.Sales(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if sales == nil {
			sales = []domain.Sale{}
		}
		c.JSON(http.StatusOK, gin.H{"count": len(sales), "results": sales})
	}
}
