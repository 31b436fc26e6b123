// Package report derives sales summaries from the committed sale ledger.
// Everything here is pure: callers load the sales and pass them in.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Granularity selects the bucketing calendar.
type Granularity string

const (
	// Daily buckets by weekday, Sunday first.
	Daily Granularity = "daily"
	// Weekly buckets by floor(dayOfMonth / 7).
	Weekly Granularity = "weekly"
	// Monthly buckets by month of year.
	Monthly Granularity = "monthly"
)

// DefaultTopN is the top products limit used when none is given.
const DefaultTopN = 5

var labels = map[Granularity][]string{
	Daily:   {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	Weekly:  {"Week 1", "Week 2", "Week 3", "Week 4"},
	Monthly: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// ParseGranularity accepts daily, weekly or monthly. Empty means daily.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", domain.Validationf("unknown granularity %q", s)
	}
}

// Labels returns the bucket labels for g.
func (g Granularity) Labels() []string {
	out := make([]string, len(labels[g]))
	copy(out, labels[g])
	return out
}

// BucketCount is 7, 4 or 12.
func (g Granularity) BucketCount() int {
	return len(labels[g])
}

// BucketIndex returns the bucket for t, which must already be in the
// reporting location. Days 28-31 fall in the last weekly bucket.
func (g Granularity) BucketIndex(t time.Time) int {
	switch g {
	case Weekly:
		idx := t.Day() / 7
		if idx > 3 {
			idx = 3
		}
		return idx
	case Monthly:
		return int(t.Month()) - 1
	default:
		return int(t.Weekday())
	}
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TrailingWindow returns [now - days, now).
func TrailingWindow(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Validate rejects windows that end before they start.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return domain.Validationf("window end %s is before start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Summary is the bucketed view of a window.
type Summary struct {
	Granularity Granularity       `json:"granularity"`
	Labels      []string          `json:"labels"`
	Buckets     []decimal.Decimal `json:"buckets"`
	TotalSales  decimal.Decimal   `json:"totalSales"`
	TotalCount  int               `json:"totalCount"`
	Average     decimal.Decimal   `json:"average"`
}

// Summarize buckets sales by g in loc. Sales outside w are skipped. The
// bucket sums always add up to TotalSales.
func Summarize(sales []domain.Sale, w Window, g Granularity, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	s := Summary{
		Granularity: g,
		Labels:      g.Labels(),
		Buckets:     make([]decimal.Decimal, g.BucketCount()),
		TotalSales:  decimal.Zero,
	}
	for i := range s.Buckets {
		s.Buckets[i] = decimal.Zero
	}
	for _, sale := range sales {
		if !w.Contains(sale.CreatedAt) {
			continue
		}
		idx := g.BucketIndex(sale.CreatedAt.In(loc))
		s.Buckets[idx] = s.Buckets[idx].Add(sale.Total)
		s.TotalSales = s.TotalSales.Add(sale.Total)
		s.TotalCount++
	}
	s.Average = Average(s.TotalSales, s.TotalCount)
	return s
}

// Average returns total / count rounded to two places, or zero when count is
// zero.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// ProductRevenue is one row of the top products ranking.
type ProductRevenue struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopProducts attributes quantity × unit price of every line in the window
// to its product and returns the limit highest earners. Equal revenues keep
// the order in which the products first appear. limit <= 0 uses DefaultTopN.
func TopProducts(sales []domain.Sale, w Window, limit int) []ProductRevenue {
	if limit <= 0 {
		limit = DefaultTopN
	}
	var ranked []ProductRevenue
	index := make(map[string]int)
	for _, sale := range sales {
		if !w.Contains(sale.CreatedAt) {
			continue
		}
		for _, line := range sale.Lines {
			i, ok := index[line.ProductID]
			if !ok {
				i = len(ranked)
				index[line.ProductID] = i
				ranked = append(ranked, ProductRevenue{ProductID: line.ProductID, ProductName: line.ProductName, Revenue: decimal.Zero})
			}
			ranked[i].Quantity += line.Quantity
			ranked[i].Revenue = ranked[i].Revenue.Add(line.Subtotal())
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// String implements fmt.Stringer.
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
