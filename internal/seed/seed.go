package seed

import (
	"context"
	"fmt"
	"strings"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CustomerStore interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type productSeed struct {
	SKU      string
	Name     string
	Price    string
	Stock    int
	Category string
}

var products = []productSeed{
	{SKU: "DRK-KOPI", Name: "Kopi Susu", Price: "18000", Stock: 50, Category: "Drinks"},
	{SKU: "DRK-TEH", Name: "Es Teh Manis", Price: "8000", Stock: 80, Category: "Drinks"},
	{SKU: "FD-ROTI", Name: "Roti Bakar", Price: "12500", Stock: 30, Category: "Food"},
	{SKU: "FD-NASGOR", Name: "Nasi Goreng", Price: "25000", Stock: 20, Category: "Food"},
	{SKU: "SNK-KERUPUK", Name: "Kerupuk", Price: "3000", Stock: 100, Category: "Snacks"},
}

var customers = []domain.Customer{
	{Name: "Sari Wulandari", Phone: "081200000001", Email: "sari@example.com"},
	{Name: "Budi Santoso", Phone: "081200000002"},
}

// Apply inserts demo catalogue and member data for manual testing. Products
// are upserted by SKU and customers are matched by phone, so running it twice
// changes nothing.
func Apply(ctx context.Context, productRepo ProductWriter, customerRepo CustomerStore) error {
	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
		_, err = productRepo.Upsert(ctx, domain.Product{
			SKU:      p.SKU,
			Name:     p.Name,
			Price:    price,
			Stock:    p.Stock,
			Category: p.Category,
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	existing, err := customerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	phones := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		phones[strings.TrimSpace(c.Phone)] = struct{}{}
	}
	for _, c := range customers {
		if _, ok := phones[c.Phone]; ok {
			continue
		}
		if _, err := customerRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("create customer %s: %w", c.Name, err)
		}
	}

	return nil
}
