package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"pos-backend/internal/report"
	reportsvc "pos-backend/internal/service/report"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func registerReportRoutes(r gin.IRouter, svc *reportsvc.Service, loc *time.Location, logger *log.Logger) {
	g := r.Group("/reports")
	g.GET("/summary", summaryHandler(svc, loc, logger))
	g.GET("/top-products", topProductsHandler(svc, loc, logger))
	g.GET("/dashboard", dashboardHandler(svc, logger))
}

func summaryHandler(svc *reportsvc.Service, loc *time.Location, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := windowParams(c, loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		g, err := report.ParseGranularity(c.DefaultQuery("granularity", string(report.Daily)))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		sum, err := svc.Summary(c.Request.Context(), from, to, g)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

func topProductsHandler(svc *reportsvc.Service, loc *time.Location, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := windowParams(c, loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		limit := report.DefaultTopN
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 1 {
				badRequest(c, "limit must be a positive integer")
				return
			}
		}
		top, err := svc.TopProducts(c.Request.Context(), from, to, limit)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(top), "results": top})
	}
}

func dashboardHandler(svc *reportsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// windowParams reads the from/to query values. Missing values stay zero so
// the report service applies its default window.
func windowParams(c *gin.Context, loc *time.Location) (time.Time, time.Time, error) {
	from, err := parseTimeParam(c.Query("from"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseTimeParam(c.Query("to"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates, which are taken
// as midnight in loc.
func parseTimeParam(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 time or %s date, got %q", dateLayout, raw)
	}
	return t, nil
}
