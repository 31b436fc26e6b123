package memory

import (
	"context"
	"sort"
	"strings"

	"pos-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type customerRepo struct{ v view }

func (r *customerRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	c.ID = newID()
	c.Email = strings.ToLower(c.Email)
	c.Points = 0
	c.TotalSpent = decimal.Zero
	c.CreatedAt = r.v.store.now()
	err := r.v.write(func(st *state) error {
		st.customers[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	var out domain.Customer
	err := r.v.read(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is Get: inside a unit of work the store lock is already held.
func (r *customerRepo) GetForUpdate(ctx context.Context, id string) (*domain.Customer, error) {
	return r.Get(ctx, id)
}

func (r *customerRepo) List(_ context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.v.read(func(st *state) error {
		for _, c := range st.customers {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *customerRepo) AdjustPointsAndSpend(_ context.Context, id string, points int64, spend decimal.Decimal) (*domain.Customer, error) {
	if err := r.v.store.injected(OpAdjustCustomer); err != nil {
		return nil, err
	}
	var out domain.Customer
	err := r.v.write(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrNotFound
		}
		nextPoints := c.Points + points
		nextSpent := c.TotalSpent.Add(spend)
		if nextPoints < 0 || nextSpent.IsNegative() {
			return domain.Validationf("customer balance must not be negative")
		}
		c.Points = nextPoints
		c.TotalSpent = nextSpent
		st.customers[id] = c
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
