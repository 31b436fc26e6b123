package cart

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

func product(id string, price int64, stock int) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price), Stock: stock}
}

func TestAddLine_MergesExistingProduct(t *testing.T) {
	c := New("c1", time.Now())
	p := product("p1", 10000, 5)
	if err := c.AddLine(p, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := c.AddLine(p, 2); err != nil {
		t.Fatalf("AddLine merge: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected a single line, got %d", c.Len())
	}
	line, _ := c.Line("p1")
	if line.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", line.Quantity)
	}
}

func TestAddLine_StockCeiling(t *testing.T) {
	c := New("c1", time.Now())
	p := product("p1", 500, 2)
	if err := c.AddLine(p, 2); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	err := c.AddLine(p, 1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 3 || stockErr.Available != 2 {
		t.Fatalf("unexpected error detail %+v", stockErr)
	}
	line, _ := c.Line("p1")
	if line.Quantity != 2 {
		t.Fatalf("failed add must not change quantity, got %d", line.Quantity)
	}

	if err := c.AddLine(product("p2", 100, 0), 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected out of stock error, got %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("failed add must not create a line")
	}
}

func TestAddLine_RejectsInvalidInput(t *testing.T) {
	c := New("c1", time.Now())
	if err := c.AddLine(product("p1", 100, 5), 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	archived := product("p2", 100, 5)
	now := time.Now()
	archived.ArchivedAt = &now
	if err := c.AddLine(archived, 1); !errors.Is(err, domain.ErrProductArchived) {
		t.Fatalf("expected archived error, got %v", err)
	}
}

func TestAddLine_KeepsFirstPriceSnapshot(t *testing.T) {
	c := New("c1", time.Now())
	p := product("p1", 1000, 10)
	_ = c.AddLine(p, 1)
	p.Price = decimal.NewFromInt(9999)
	if err := c.AddLine(p, 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	line, _ := c.Line("p1")
	if !line.UnitPrice.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected captured price 1000, got %s", line.UnitPrice)
	}
}

func TestSetQuantity(t *testing.T) {
	c := New("c1", time.Now())
	_ = c.AddLine(product("p1", 100, 4), 1)

	if err := c.SetQuantity("p1", 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if err := c.SetQuantity("p1", 5); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err := c.SetQuantity("missing", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.SetQuantity("p1", 0); err != nil {
		t.Fatalf("SetQuantity zero: %v", err)
	}
	if !c.Empty() {
		t.Fatalf("expected zero quantity to remove the line")
	}
	if err := c.SetQuantity("p1", -3); err != nil {
		t.Fatalf("negative quantity on absent line must be a no-op, got %v", err)
	}
}

func TestRemoveLine_Idempotent(t *testing.T) {
	c := New("c1", time.Now())
	_ = c.AddLine(product("p1", 100, 4), 1)
	_ = c.AddLine(product("p2", 100, 4), 1)
	c.RemoveLine("p1")
	c.RemoveLine("p1")
	c.RemoveLine("never-added")
	lines := c.Lines()
	if len(lines) != 1 || lines[0].ProductID != "p2" {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestTotal(t *testing.T) {
	c := New("c1", time.Now())
	_ = c.AddLine(product("a", 10000, 10), 2)
	_ = c.AddLine(product("b", 5000, 10), 1)
	if !c.Total().Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("expected total 25000, got %s", c.Total())
	}
	_ = c.SetQuantity("b", 3)
	if !c.Total().Equal(decimal.NewFromInt(35000)) {
		t.Fatalf("expected recomputed total 35000, got %s", c.Total())
	}
	if !New("empty", time.Now()).Total().IsZero() {
		t.Fatalf("expected zero total for empty cart")
	}
}

func TestUpdateStock(t *testing.T) {
	c := New("c1", time.Now())
	_ = c.AddLine(product("p1", 100, 5), 3)
	over, ok := c.UpdateStock("p1", 2)
	if !ok || !over {
		t.Fatalf("expected line to exceed refreshed stock, over=%v ok=%v", over, ok)
	}
	if err := c.SetQuantity("p1", 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected refreshed ceiling to apply, got %v", err)
	}
	if _, ok := c.UpdateStock("missing", 1); ok {
		t.Fatalf("expected missing line to report !ok")
	}
}

func TestJSONRoundTripKeepsOrderAndCeiling(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := New("c1", created)
	_ = c.AddLine(product("z", 1500, 3), 1)
	_ = c.AddLine(product("a", 250, 9), 4)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Cart
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.ID != "c1" || !restored.CreatedAt.Equal(created) {
		t.Fatalf("unexpected header %+v", restored)
	}
	lines := restored.Lines()
	if len(lines) != 2 || lines[0].ProductID != "z" || lines[1].ProductID != "a" {
		t.Fatalf("expected insertion order to survive, got %+v", lines)
	}
	if err := restored.SetQuantity("z", 4); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected known stock to survive, got %v", err)
	}
	if !restored.Total().Equal(c.Total()) {
		t.Fatalf("total mismatch %s vs %s", restored.Total(), c.Total())
	}
}
