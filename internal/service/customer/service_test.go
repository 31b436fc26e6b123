package customer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byID map[string]domain.Customer
	next int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]domain.Customer)}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.next++
	c.ID = fmt.Sprintf("cust-%d", r.next)
	r.byID[c.ID] = c
	clone := c
	return &clone, nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) GetForUpdate(ctx context.Context, id string) (*domain.Customer, error) {
	return r.Get(ctx, id)
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) AdjustPointsAndSpend(_ context.Context, id string, points int64, spend decimal.Decimal) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Points += points
	c.TotalSpent = c.TotalSpent.Add(spend)
	r.byID[id] = c
	return &c, nil
}

type stubSales struct {
	sales     []domain.Sale
	lastLimit int
}

func (s *stubSales) ListByCustomer(_ context.Context, _ string, limit int) ([]domain.Sale, error) {
	s.lastLimit = limit
	return s.sales, nil
}

func TestCreateValidation(t *testing.T) {
	svc := New(newMemoryRepo(), &stubSales{}, nil, nil)
	if _, err := svc.Create(context.Background(), CreateInput{Name: "  "}); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected name validation error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Ana", Email: "not-an-email"}); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestCreateNormalises(t *testing.T) {
	svc := New(newMemoryRepo(), &stubSales{}, nil, nil)
	c, err := svc.Create(context.Background(), CreateInput{Name: " Ana ", Email: " Ana@Example.com ", Phone: " 0812 "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Name != "Ana" || c.Email != "ana@example.com" || c.Phone != "0812" || c.Points != 0 {
		t.Fatalf("unexpected customer %+v", c)
	}
}

func TestTierFor(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := New(repo, &stubSales{}, nil, nil)

	cases := []struct {
		spent    int64
		tier     string
		discount int64
		next     string
		toNext   int64
	}{
		{0, "regular", 0, "silver", 1_000_000},
		{999_999, "regular", 0, "silver", 1},
		{5_000_000, "gold", 10, "platinum", 5_000_000},
		{12_000_000, "platinum", 15, "", 0},
	}
	for _, tc := range cases {
		c, _ := svc.Create(ctx, CreateInput{Name: "x"})
		_, _ = repo.AdjustPointsAndSpend(ctx, c.ID, 0, decimal.NewFromInt(tc.spent))
		info, err := svc.TierFor(ctx, c.ID)
		if err != nil {
			t.Fatalf("TierFor: %v", err)
		}
		if info.Name != tc.tier || !info.DiscountPct.Equal(decimal.NewFromInt(tc.discount)) {
			t.Errorf("spent %d: expected %s/%d%%, got %s/%s%%", tc.spent, tc.tier, tc.discount, info.Name, info.DiscountPct)
		}
		if info.NextTier != tc.next || !info.SpendToNextTier.Equal(decimal.NewFromInt(tc.toNext)) {
			t.Errorf("spent %d: expected next %s in %d, got %s in %s", tc.spent, tc.next, tc.toNext, info.NextTier, info.SpendToNextTier)
		}
	}

	if _, err := svc.TierFor(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSales(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	sales := &stubSales{sales: []domain.Sale{{ID: "s1"}}}
	svc := New(repo, sales, nil, nil)
	c, _ := svc.Create(ctx, CreateInput{Name: "Ana"})

	got, err := svc.Sales(ctx, c.ID, 10)
	if err != nil || len(got) != 1 || sales.lastLimit != 10 {
		t.Fatalf("Sales: %v %+v", err, got)
	}
	if _, err := svc.Sales(ctx, "missing", 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTiers(t *testing.T) {
	svc := New(newMemoryRepo(), &stubSales{}, nil, nil)
	tiers := svc.Tiers()
	if len(tiers) != 4 || tiers[0].Name != "regular" || tiers[3].Name != "platinum" {
		t.Fatalf("unexpected tiers %+v", tiers)
	}
}
