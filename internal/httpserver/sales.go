package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"pos-backend/internal/domain"
	reportsvc "pos-backend/internal/service/report"

	"github.com/gin-gonic/gin"
)

// SaleReader is the read side of the sale ledger served over HTTP.
type SaleReader interface {
	Get(ctx context.Context, id string) (*domain.Sale, error)
	ListByWindow(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
}

func registerSaleRoutes(r gin.IRouter, sales SaleReader, reports *reportsvc.Service, loc *time.Location, logger *log.Logger) {
	g := r.Group("/sales")
	g.GET("", listSalesHandler(sales, reports, loc, logger))
	g.GET("/:id", getSaleHandler(sales, logger))
}

func listSalesHandler(sales SaleReader, reports *reportsvc.Service, loc *time.Location, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := windowParams(c, loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		w, err := reports.Window(from, to)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		list, err := sales.ListByWindow(c.Request.Context(), w.Start, w.End)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if list == nil {
			list = []domain.Sale{}
		}
		c.JSON(http.StatusOK, gin.H{"window": w, "count": len(list), "results": list})
	}
}

func getSaleHandler(sales SaleReader, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sales.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}
