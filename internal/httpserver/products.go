package httpserver

import (
	"log"
	"net/http"
	"strconv"

	"pos-backend/internal/domain"
	categorysvc "pos-backend/internal/service/category"
	productsvc "pos-backend/internal/service/product"

	"github.com/gin-gonic/gin"
)

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func registerProductRoutes(r gin.IRouter, svc *productsvc.Service, logger *log.Logger) {
	g := r.Group("/products")
	g.GET("", listProductsHandler(svc, logger))
	g.GET("/:id", getProductHandler(svc, logger))
	g.POST("", createProductHandler(svc, logger))
	g.PUT("/:id", updateProductHandler(svc, logger))
	g.POST("/:id/restock", restockProductHandler(svc, logger))
	g.DELETE("/:id", archiveProductHandler(svc, logger))
}

func listProductsHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeArchived, _ := strconv.ParseBool(c.Query("includeArchived"))
		products, err := svc.List(c.Request.Context(), c.Query("q"), includeArchived)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
	}
}

func getProductHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid product payload")
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid product payload")
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func restockProductHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req restockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid restock payload")
			return
		}
		p, err := svc.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func archiveProductHandler(svc *productsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Archive(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listCategoriesHandler(svc *categorysvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(categories), "results": categories})
	}
}
