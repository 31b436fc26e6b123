package httpserver

import (
	"log"
	"net/http"

	"pos-backend/internal/cart"
	cartsvc "pos-backend/internal/service/cart"
	"pos-backend/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type commitRequest struct {
	Tendered      decimal.Decimal `json:"tendered"`
	PaymentMethod string          `json:"paymentMethod"`
	CustomerID    *string         `json:"customerId"`
	CashierID     string          `json:"cashierId"`
}

type refreshResponse struct {
	Cart        *cart.Cart           `json:"cart"`
	Adjustments []cartsvc.Adjustment `json:"adjustments"`
}

func registerCartRoutes(r gin.IRouter, svc *cartsvc.Service, logger *log.Logger) {
	g := r.Group("/carts")
	g.POST("", createCartHandler(svc, logger))
	g.GET("/:id", getCartHandler(svc, logger))
	g.DELETE("/:id", cancelCartHandler(svc, logger))
	g.POST("/:id", updateCartHandler(svc, logger))
	g.POST("/:id/lines", addLineHandler(svc, logger))
	g.PUT("/:id/lines/:productId", setQuantityHandler(svc, logger))
	g.DELETE("/:id/lines/:productId", removeLineHandler(svc, logger))
	g.POST("/:id/refresh", refreshCartHandler(svc, logger))
	g.POST("/:id/commit", commitCartHandler(svc, logger))
}

func createCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := svc.Create(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, ct)
	}
}

func getCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func cancelCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// updateCartHandler applies a batch of line actions atomically.
func updateCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid cart update payload")
			return
		}
		ct, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func addLineHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid line payload")
			return
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		ct, err := svc.AddLine(c.Request.Context(), c.Param("id"), req.ProductID, qty)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func setQuantityHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			badRequest(c, "quantity required")
			return
		}
		ct, err := svc.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("productId"), *req.Quantity)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func removeLineHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, err := svc.RemoveLine(c.Request.Context(), c.Param("id"), c.Param("productId"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func refreshCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ct, adjustments, err := svc.Refresh(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if adjustments == nil {
			adjustments = []cartsvc.Adjustment{}
		}
		c.JSON(http.StatusOK, refreshResponse{Cart: ct, Adjustments: adjustments})
	}
}

func commitCartHandler(svc *cartsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req commitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid commit payload")
			return
		}
		receipt, err := svc.Checkout(c.Request.Context(), c.Param("id"), checkout.CommitRequest{
			Tender:        req.Tendered,
			PaymentMethod: req.PaymentMethod,
			CustomerID:    req.CustomerID,
			CashierID:     req.CashierID,
		})
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, receipt)
	}
}
