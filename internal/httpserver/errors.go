package httpserver

import (
	"errors"
	"log"
	"net/http"

	"pos-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Requested *int   `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// errorCode returns the stable code clients switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrStockConflict):
		return "stock_conflict"
	case errors.Is(err, domain.ErrPersistence):
		var pe *domain.PersistenceError
		if errors.As(err, &pe) && pe.Op == "commit" {
			return "commit_outcome_unknown"
		}
		return "persistence_error"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductArchived):
		return "product_archived"
	case errors.Is(err, domain.ErrCashierRequired):
		return "cashier_required"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation_failed"
	default:
		return "internal_error"
	}
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and JSON body. Storage failure details are
// logged, not returned.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	kind := domain.KindOf(err)
	resp := errorResponse{Code: errorCode(err), Message: err.Error()}

	var stockErr *domain.InsufficientStockError
	var conflictErr *domain.StockConflictError
	switch {
	case errors.As(err, &conflictErr):
		resp.ProductID = conflictErr.ProductID
		resp.Requested = intPtr(conflictErr.Requested)
		resp.Available = intPtr(conflictErr.Available)
	case errors.As(err, &stockErr):
		resp.ProductID = stockErr.ProductID
		resp.Requested = intPtr(stockErr.Requested)
		resp.Available = intPtr(stockErr.Available)
	}

	if kind == domain.KindPersistence {
		logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		resp.Message = "storage failure"
		if resp.Code == "commit_outcome_unknown" {
			resp.Message = "sale outcome unknown; check the sales ledger before retrying"
		}
	}
	c.AbortWithStatusJSON(statusFor(kind), resp)
}

// badRequest reports a malformed request body or query.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: "bad_request", Message: msg})
}

func intPtr(v int) *int {
	return &v
}
