package report

import (
	"fmt"
	"testing"
	"time"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func sale(id string, at time.Time, lines ...domain.SaleLineItem) domain.Sale {
	return domain.Sale{ID: id, CreatedAt: at, Total: domain.LinesTotal(lines), Lines: lines}
}

func line(productID string, qty int, price int64) domain.SaleLineItem {
	return domain.SaleLineItem{ProductID: productID, ProductName: "name-" + productID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

var june = Window{Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		g    Granularity
		at   time.Time
		want int
	}{
		{Daily, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC), 0}, // Sunday
		{Daily, time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC), 6}, // Saturday
		{Weekly, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 0},
		{Weekly, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), 0},
		{Weekly, time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), 1},
		{Weekly, time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC), 3},
		{Weekly, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), 3},
		{Weekly, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), 3},
		{Monthly, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 0},
		{Monthly, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), 11},
	}
	for _, tc := range cases {
		if got := tc.g.BucketIndex(tc.at); got != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.g, tc.at.Format("2006-01-02"), tc.want, got)
		}
	}
}

func TestParseGranularity(t *testing.T) {
	if g, err := ParseGranularity(""); err != nil || g != Daily {
		t.Fatalf("expected daily default, got %s %v", g, err)
	}
	if g, err := ParseGranularity(" Monthly "); err != nil || g != Monthly {
		t.Fatalf("expected monthly, got %s %v", g, err)
	}
	if _, err := ParseGranularity("hourly"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	sales := []domain.Sale{
		sale("s1", time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), line("a", 2, 10000), line("b", 1, 5000)),
		sale("s2", time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), line("a", 1, 10000)),
		sale("s3", time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC), line("b", 1, 5000)),
		sale("outside", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), line("a", 9, 10000)),
	}
	s := Summarize(sales, june, Daily, time.UTC)
	if s.TotalCount != 3 || !s.TotalSales.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("unexpected totals %+v", s)
	}
	if !s.Average.Equal(decimal.RequireFromString("13333.33")) {
		t.Fatalf("expected average 13333.33, got %s", s.Average)
	}
	// June 2 and June 30 2024 are Sundays, June 3 a Monday.
	if !s.Buckets[0].Equal(decimal.NewFromInt(30000)) || !s.Buckets[1].Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("unexpected daily buckets %v", s.Buckets)
	}
	if len(s.Labels) != 7 || s.Labels[0] != "Sun" {
		t.Fatalf("unexpected labels %v", s.Labels)
	}

	weekly := Summarize(sales, june, Weekly, time.UTC)
	if !weekly.Buckets[0].Equal(decimal.NewFromInt(35000)) || !weekly.Buckets[3].Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected weekly buckets %v", weekly.Buckets)
	}
}

func TestSummarize_EmptyWindowAverageIsZero(t *testing.T) {
	s := Summarize(nil, june, Monthly, nil)
	if !s.Average.IsZero() || s.TotalCount != 0 || !s.TotalSales.IsZero() || len(s.Buckets) != 12 {
		t.Fatalf("unexpected empty summary %+v", s)
	}
}

func TestSummarize_UsesReportingLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// Saturday 20:00 UTC is Sunday 03:00 in UTC+7.
	at := time.Date(2024, 6, 8, 20, 0, 0, 0, time.UTC)
	s := Summarize([]domain.Sale{sale("s1", at, line("a", 1, 100))}, june, Daily, jakarta)
	if !s.Buckets[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected Sunday bucket in UTC+7, got %v", s.Buckets)
	}
}

func TestAverageRounding(t *testing.T) {
	if got := Average(decimal.NewFromInt(10), 3); !got.Equal(decimal.RequireFromString("3.33")) {
		t.Fatalf("expected 3.33, got %s", got)
	}
}

func TestTopProducts(t *testing.T) {
	at := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		sale("s1", at, line("tie-first", 1, 500), line("big", 3, 1000)),
		sale("s2", at, line("tie-second", 5, 100), line("big", 1, 1000)),
		sale("s3", at, line("small", 1, 10)),
		sale("outside", june.End, line("small", 100, 1000)),
	}
	top := TopProducts(sales, june, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(top))
	}
	if top[0].ProductID != "big" || !top[0].Revenue.Equal(decimal.NewFromInt(4000)) || top[0].Quantity != 4 {
		t.Fatalf("unexpected leader %+v", top[0])
	}
	if top[1].ProductID != "tie-first" || top[2].ProductID != "tie-second" {
		t.Fatalf("expected ties in first-appearance order, got %+v", top)
	}
	if n := len(TopProducts(sales, june, 0)); n != 4 {
		t.Fatalf("expected default limit to include all 4 products, got %d", n)
	}
}

func TestDailyBucketsSumToTotalProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := rapid.SampledFrom([]Granularity{Daily, Weekly, Monthly}).Draw(rt, "granularity")
		n := rapid.IntRange(0, 40).Draw(rt, "sales")
		window := Window{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		sales := make([]domain.Sale, 0, n)
		for i := 0; i < n; i++ {
			offset := rapid.Int64Range(-30*24, 400*24).Draw(rt, fmt.Sprintf("hour%d", i))
			cents := rapid.Int64Range(0, 10_000_000).Draw(rt, fmt.Sprintf("cents%d", i))
			at := window.Start.Add(time.Duration(offset) * time.Hour)
			sales = append(sales, domain.Sale{ID: fmt.Sprint(i), CreatedAt: at, Total: decimal.New(cents, -2)})
		}
		s := Summarize(sales, window, g, time.UTC)
		sum := decimal.Zero
		for _, b := range s.Buckets {
			sum = sum.Add(b)
		}
		if !sum.Equal(s.TotalSales) {
			rt.Fatalf("bucket sum %s != total %s", sum, s.TotalSales)
		}
		if s.TotalCount == 0 && !s.Average.IsZero() {
			rt.Fatalf("expected zero average for empty window")
		}
	})
}
