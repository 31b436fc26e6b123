package category

import (
	"context"
	"io"
	"log"

	"pos-backend/internal/db"
	"pos-backend/internal/domain"
)

type postgresRepo struct {
	db     db.DBTX
	logger *log.Logger
}

func NewPostgres(conn db.DBTX, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{db: conn, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT category, COUNT(*)::int, COALESCE(SUM(stock), 0)::int, COALESCE(SUM(price * stock), 0)
FROM products
WHERE archived_at IS NULL
GROUP BY category
ORDER BY category ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		r.logger.Printf("category repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.ProductCount, &c.Stock, &c.StockValue); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
