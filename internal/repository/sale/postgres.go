package sale

import (
	"context"
	"io"
	"log"
	"time"

	"pos-backend/internal/db"
	"pos-backend/internal/domain"
	"pos-backend/internal/repository/pgutil"

	"github.com/shopspring/decimal"
)

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

func (r *postgresRepo) Insert(ctx context.Context, s domain.Sale) error {
	const header = `
INSERT INTO sales (id, created_at, total, tendered, change_due, payment_method, customer_id, cashier_id, points_earned)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	if _, err := r.db.Exec(ctx, header, s.ID, s.CreatedAt, s.Total, s.Tendered, s.Change, s.PaymentMethod, s.CustomerID, s.CashierID, s.PointsEarned); err != nil {
		r.logger.Printf("sale repo: insert header id=%s error=%v", s.ID, err)
		return pgutil.MapError(err)
	}

	const item = `
INSERT INTO sale_items (sale_id, line_no, product_id, product_name, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, l := range s.Lines {
		if _, err := r.db.Exec(ctx, item, s.ID, l.LineNo, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice); err != nil {
			r.logger.Printf("sale repo: insert item id=%s line=%d error=%v", s.ID, l.LineNo, err)
			return pgutil.MapError(err)
		}
	}
	r.logger.Printf("sale repo: inserted id=%s lines=%d total=%s", s.ID, len(s.Lines), s.Total)
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Sale, error) {
	sales, err := r.query(ctx, `WHERE s.id = $1`, `ORDER BY i.line_no`, id)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, domain.ErrNotFound
	}
	return &sales[0], nil
}

func (r *postgresRepo) ListByWindow(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	sales, err := r.query(ctx, `WHERE s.created_at >= $1 AND s.created_at < $2`, `ORDER BY s.created_at, s.id, i.line_no`, start, end)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("sale repo: window start=%s end=%s count=%d", start.Format(time.RFC3339), end.Format(time.RFC3339), len(sales))
	return sales, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx,
		`WHERE s.id IN (SELECT id FROM sales WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2)`,
		`ORDER BY s.created_at DESC, s.id, i.line_no`,
		customerID, limit)
}

// query reads headers and items with a single LEFT JOIN and folds the rows
// into sales, keeping the row order.
func (r *postgresRepo) query(ctx context.Context, where, order string, args ...any) ([]domain.Sale, error) {
	q := `
SELECT s.id::text, s.created_at, s.total, s.tendered, s.change_due, s.payment_method,
       s.customer_id::text, s.cashier_id, s.points_earned,
       i.line_no, i.product_id::text, i.product_name, i.quantity, i.unit_price
FROM sales s
LEFT JOIN sale_items i ON i.sale_id = s.id
` + where + "\n" + order
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("sale repo: query error=%v", err)
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	var out []domain.Sale
	index := make(map[string]int)
	for rows.Next() {
		var (
			s         domain.Sale
			lineNo    *int
			productID *string
			name      *string
			qty       *int
			price     decimal.NullDecimal
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Total, &s.Tendered, &s.Change, &s.PaymentMethod,
			&s.CustomerID, &s.CashierID, &s.PointsEarned,
			&lineNo, &productID, &name, &qty, &price); err != nil {
			return nil, err
		}
		pos, seen := index[s.ID]
		if !seen {
			s.Lines = []domain.SaleLineItem{}
			out = append(out, s)
			pos = len(out) - 1
			index[s.ID] = pos
		}
		if lineNo == nil {
			continue
		}
		out[pos].Lines = append(out[pos].Lines, domain.SaleLineItem{
			SaleID:      s.ID,
			LineNo:      *lineNo,
			ProductID:   *productID,
			ProductName: *name,
			Quantity:    *qty,
			UnitPrice:   price.Decimal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
