package memory

import (
	"context"
	"sort"
	"time"

	"pos-backend/internal/domain"
)

type saleRepo struct{ v view }

func copySale(s domain.Sale) domain.Sale {
	lines := make([]domain.SaleLineItem, len(s.Lines))
	copy(lines, s.Lines)
	s.Lines = lines
	if s.CustomerID != nil {
		id := *s.CustomerID
		s.CustomerID = &id
	}
	return s
}

func (r *saleRepo) Insert(_ context.Context, s domain.Sale) error {
	if err := r.v.store.injected(OpInsertSale); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if _, dup := st.saleIndex[s.ID]; dup {
			return domain.ErrAlreadyExists
		}
		if s.CustomerID != nil {
			if _, ok := st.customers[*s.CustomerID]; !ok {
				return domain.Validationf("customer %s does not exist", *s.CustomerID)
			}
		}
		for _, l := range s.Lines {
			if _, ok := st.products[l.ProductID]; !ok {
				return domain.Validationf("product %s does not exist", l.ProductID)
			}
		}
		st.saleIndex[s.ID] = len(st.sales)
		st.sales = append(st.sales, copySale(s))
		return nil
	})
}

func (r *saleRepo) Get(_ context.Context, id string) (*domain.Sale, error) {
	var out domain.Sale
	err := r.v.read(func(st *state) error {
		i, ok := st.saleIndex[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copySale(st.sales[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *saleRepo) ListByWindow(_ context.Context, start, end time.Time) ([]domain.Sale, error) {
	var out []domain.Sale
	err := r.v.read(func(st *state) error {
		for _, s := range st.sales {
			if s.CreatedAt.Before(start) || !s.CreatedAt.Before(end) {
				continue
			}
			out = append(out, copySale(s))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r *saleRepo) ListByCustomer(_ context.Context, customerID string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Sale
	err := r.v.read(func(st *state) error {
		for i := len(st.sales) - 1; i >= 0; i-- {
			s := st.sales[i]
			if s.CustomerID == nil || *s.CustomerID != customerID {
				continue
			}
			out = append(out, copySale(s))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
