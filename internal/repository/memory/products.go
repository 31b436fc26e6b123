package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/product"
)

type productRepo struct{ v view }

func validProduct(p domain.Product) error {
	if p.Price.IsNegative() {
		return domain.Validationf("price must not be negative")
	}
	if p.Stock < 0 {
		return domain.Validationf("stock must not be negative")
	}
	return nil
}

func (r *productRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	err := r.v.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) GetMany(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	err := r.v.read(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) List(_ context.Context, f product.ListFilter) ([]domain.Product, error) {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []domain.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.Archived() && !f.IncludeArchived {
				continue
			}
			if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.Contains(strings.ToLower(p.SKU), query) {
				continue
			}
			out = append(out, p)
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

func (r *productRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	if err := validProduct(p); err != nil {
		return nil, err
	}
	err := r.v.write(func(st *state) error {
		if p.SKU != "" {
			if _, taken := st.skus[p.SKU]; taken {
				return domain.ErrAlreadyExists
			}
		}
		p.ID = newID()
		p.ArchivedAt = nil
		p.CreatedAt = r.v.store.now()
		st.products[p.ID] = p
		if p.SKU != "" {
			st.skus[p.SKU] = p.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.SKU == "" {
		return r.Create(ctx, p)
	}
	if err := validProduct(p); err != nil {
		return nil, err
	}
	var out domain.Product
	err := r.v.write(func(st *state) error {
		if id, ok := st.skus[p.SKU]; ok {
			existing := st.products[id]
			existing.Name = p.Name
			existing.Price = p.Price
			existing.Category = p.Category
			st.products[id] = existing
			out = existing
			return nil
		}
		p.ID = newID()
		p.ArchivedAt = nil
		p.CreatedAt = r.v.store.now()
		st.products[p.ID] = p
		st.skus[p.SKU] = p.ID
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) Update(_ context.Context, id string, u product.Update) (*domain.Product, error) {
	if u.Price.IsNegative() {
		return nil, domain.Validationf("price must not be negative")
	}
	var out domain.Product
	err := r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Name = u.Name
		p.Price = u.Price
		p.Category = u.Category
		st.products[id] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) Restock(_ context.Context, id string, qty int) (*domain.Product, error) {
	var out domain.Product
	err := r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Archived() {
			return domain.ErrProductArchived
		}
		if p.Stock+qty < 0 {
			return domain.Validationf("stock must not be negative")
		}
		p.Stock += qty
		st.products[id] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) Archive(_ context.Context, id string, at time.Time) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.ArchivedAt == nil {
			t := at
			p.ArchivedAt = &t
			st.products[id] = p
		}
		return nil
	})
}

func (r *productRepo) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	if err := r.v.store.injected(OpDecrementStock); err != nil {
		return 0, err
	}
	var remaining int
	err := r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Archived() {
			return domain.ErrProductArchived
		}
		if p.Stock < qty {
			return &domain.StockConflictError{ProductID: id, Requested: qty, Available: p.Stock}
		}
		p.Stock -= qty
		st.products[id] = p
		remaining = p.Stock
		return nil
	})
	return remaining, err
}
