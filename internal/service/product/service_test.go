package product

import (
	"context"
	"errors"
	"testing"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
)

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New().Products(), nil)
	cases := []Input{
		{Name: " ", Price: decimal.NewFromInt(1)},
		{Name: "Tea", Price: decimal.NewFromInt(-1)},
		{Name: "Tea", Price: decimal.NewFromInt(1), Stock: -2},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); domain.KindOf(err) != domain.KindValidation {
			t.Errorf("%+v: expected validation error, got %v", in, err)
		}
	}
}

func TestUpdateLeavesStock(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.New().Products(), nil)
	p, err := svc.Create(ctx, Input{Name: "Tea", Price: decimal.NewFromInt(100), Stock: 7})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := svc.Update(ctx, p.ID, Input{Name: "Green Tea", Price: decimal.NewFromInt(120), Stock: 999})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Green Tea" || updated.Stock != 7 || !updated.Price.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected product %+v", updated)
	}
}

func TestRestockAndArchive(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.New().Products(), nil)
	p, _ := svc.Create(ctx, Input{Name: "Tea", Price: decimal.NewFromInt(100), Stock: 1})

	if _, err := svc.Restock(ctx, p.ID, 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	got, err := svc.Restock(ctx, p.ID, 4)
	if err != nil || got.Stock != 5 {
		t.Fatalf("Restock: %v %+v", err, got)
	}
	if err := svc.Archive(ctx, p.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	list, _ := svc.List(ctx, "", false)
	if len(list) != 0 {
		t.Fatalf("expected archived product hidden, got %+v", list)
	}
	archived, _ := svc.Get(ctx, p.ID)
	if !archived.Archived() {
		t.Fatalf("expected product to stay readable after archival")
	}
	if err := svc.Archive(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
