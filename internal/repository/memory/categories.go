package memory

import (
	"context"
	"sort"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/category"

	"github.com/shopspring/decimal"
)

type categoryRepo struct{ v view }

// Categories returns the category read model over the live catalogue.
func (s *Store) Categories() category.Repository { return &categoryRepo{view{store: s}} }

func (r *categoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.v.read(func(st *state) error {
		byName := make(map[string]*domain.Category)
		for _, p := range st.products {
			if p.Archived() {
				continue
			}
			c, ok := byName[p.Category]
			if !ok {
				c = &domain.Category{Name: p.Category, StockValue: decimal.Zero}
				byName[p.Category] = c
			}
			c.ProductCount++
			c.Stock += p.Stock
			c.StockValue = c.StockValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		}
		for _, c := range byName {
			out = append(out, *c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
