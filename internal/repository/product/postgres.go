package product

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"pos-backend/internal/db"
	"pos-backend/internal/domain"
	"pos-backend/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id::text, COALESCE(sku, ''), name, price, stock, category, archived_at, created_at`

type postgresRepo struct {
	db     db.DBTX
	logger *log.Logger
}

// NewPostgres returns a Repository backed by a pool or a transaction.
func NewPostgres(conn db.DBTX, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{db: conn, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, q, id))
	if err != nil {
		err = pgutil.MapError(err)
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = ANY($1)`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: get many count=%d error=%v", len(ids), err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products
WHERE ($1 OR archived_at IS NULL)
  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
ORDER BY name, id`
	rows, err := r.db.Query(ctx, q, f.IncludeArchived, strings.TrimSpace(f.Query))
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (sku, name, price, stock, category)
VALUES (NULLIF($1, ''), $2, $3, $4, $5)
RETURNING ` + productColumns
	created, err := scanProduct(r.db.QueryRow(ctx, q, p.SKU, p.Name, p.Price, p.Stock, p.Category))
	if err != nil {
		r.logger.Printf("product repo: create sku=%s error=%v", p.SKU, err)
		return nil, pgutil.MapError(err)
	}
	r.logger.Printf("product repo: created id=%s sku=%s", created.ID, created.SKU)
	return created, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.SKU == "" {
		return r.Create(ctx, p)
	}
	q := `
INSERT INTO products (sku, name, price, stock, category)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    category = EXCLUDED.category
RETURNING ` + productColumns
	res, err := scanProduct(r.db.QueryRow(ctx, q, p.SKU, p.Name, p.Price, p.Stock, p.Category))
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", p.SKU, err)
		return nil, pgutil.MapError(err)
	}
	r.logger.Printf("product repo: upserted sku=%s id=%s", res.SKU, res.ID)
	return res, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, u Update) (*domain.Product, error) {
	q := `
UPDATE products SET name = $2, price = $3, category = $4
WHERE id = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, q, id, u.Name, u.Price, u.Category))
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, pgutil.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) Restock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	q := `
UPDATE products SET stock = stock + $2
WHERE id = $1 AND archived_at IS NULL
RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, q, id, qty))
	if err != nil {
		err = pgutil.MapError(err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, r.notFoundOrArchived(ctx, id)
		}
		r.logger.Printf("product repo: restock id=%s qty=%d error=%v", id, qty, err)
		return nil, err
	}
	r.logger.Printf("product repo: restock id=%s qty=%d stock=%d", id, qty, p.Stock)
	return p, nil
}

func (r *postgresRepo) Archive(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET archived_at = COALESCE(archived_at, $2) WHERE id = $1`, id, at)
	if err != nil {
		r.logger.Printf("product repo: archive id=%s error=%v", id, err)
		return pgutil.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: archived id=%s", id)
	return nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	const q = `
UPDATE products SET stock = stock - $2
WHERE id = $1 AND stock >= $2 AND archived_at IS NULL
RETURNING stock
`
	var remaining int
	err := r.db.QueryRow(ctx, q, id, qty).Scan(&remaining)
	if err == nil {
		r.logger.Printf("product repo: decrement id=%s qty=%d remaining=%d", id, qty, remaining)
		return remaining, nil
	}
	if pgutil.IsCheckViolation(err) {
		return 0, &domain.StockConflictError{ProductID: id, Requested: qty}
	}
	err = pgutil.MapError(err)
	if !errors.Is(err, domain.ErrNotFound) {
		r.logger.Printf("product repo: decrement id=%s qty=%d error=%v", id, qty, err)
		return 0, err
	}

	// The predicate failed: distinguish a missing row from short stock.
	var stock int
	var archivedAt *time.Time
	if err := r.db.QueryRow(ctx, `SELECT stock, archived_at FROM products WHERE id = $1`, id).Scan(&stock, &archivedAt); err != nil {
		return 0, pgutil.MapError(err)
	}
	if archivedAt != nil {
		return 0, domain.ErrProductArchived
	}
	r.logger.Printf("product repo: decrement conflict id=%s qty=%d available=%d", id, qty, stock)
	return 0, &domain.StockConflictError{ProductID: id, Requested: qty, Available: stock}
}

func (r *postgresRepo) notFoundOrArchived(ctx context.Context, id string) error {
	var archivedAt *time.Time
	if err := r.db.QueryRow(ctx, `SELECT archived_at FROM products WHERE id = $1`, id).Scan(&archivedAt); err != nil {
		return pgutil.MapError(err)
	}
	if archivedAt != nil {
		return domain.ErrProductArchived
	}
	return domain.ErrNotFound
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.Category, &p.ArchivedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
