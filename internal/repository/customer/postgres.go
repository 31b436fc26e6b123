package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"pos-backend/internal/db"
	"pos-backend/internal/domain"
	"pos-backend/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const customerColumns = `id::text, name, phone, email, address, points, total_spent, created_at`

type postgresRepo struct {
	db     db.DBTX
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(conn db.DBTX, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{db: conn, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	q := `
INSERT INTO customers (name, phone, email, address)
VALUES ($1, $2, $3, $4)
RETURNING ` + customerColumns
	created, err := r.scanCustomer(r.db.QueryRow(ctx, q, c.Name, c.Phone, strings.ToLower(c.Email), c.Address))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("customer repo: created id=%s", created.ID)
	return created, nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.db.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, id string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`
	return r.scanCustomer(r.db.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers ORDER BY name, id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		r.logger.Printf("customer repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()
	var out []domain.Customer
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AdjustPointsAndSpend(ctx context.Context, id string, points int64, spend decimal.Decimal) (*domain.Customer, error) {
	q := `
UPDATE customers
SET points = points + $2,
    total_spent = total_spent + $3
WHERE id = $1
RETURNING ` + customerColumns
	c, err := r.scanCustomer(r.db.QueryRow(ctx, q, id, points, spend))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("customer repo: accrued id=%s points=%d spend=%s", id, points, spend)
	return c, nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Points, &c.TotalSpent, &c.CreatedAt)
	if err != nil {
		mapped := pgutil.MapError(err)
		if !errors.Is(mapped, domain.ErrNotFound) {
			r.logger.Printf("customer repo: scan error=%v", err)
		}
		return nil, mapped
	}
	return &c, nil
}
