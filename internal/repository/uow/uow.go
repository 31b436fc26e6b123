// Package uow runs a group of repository writes all-or-nothing.
package uow

import (
	"context"
	"errors"
	"io"
	"log"

	"pos-backend/internal/domain"
	"pos-backend/internal/repository/customer"
	"pos-backend/internal/repository/product"
	"pos-backend/internal/repository/sale"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos is the set of repositories bound to one unit of work.
type Repos struct {
	Products  product.Repository
	Customers customer.Repository
	Sales     sale.Repository
}

// UnitOfWork runs fn so that either every write it makes is kept or none
// is. An error returned by fn aborts the unit of work and is returned as is.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

type postgresUoW struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a UnitOfWork that runs fn inside one READ COMMITTED
// transaction.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) UnitOfWork {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresUoW{pool: pool, logger: logger}
}

func (u *postgresUoW) Do(ctx context.Context, fn func(ctx context.Context, r Repos) error) (err error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		u.logger.Printf("uow: begin error=%v", err)
		return &domain.PersistenceError{Op: "begin", Err: err}
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			u.logger.Printf("uow: rollback error=%v", rbErr)
		}
	}()

	repos := Repos{
		Products:  product.NewPostgres(tx, u.logger),
		Customers: customer.NewPostgres(tx, u.logger),
		Sales:     sale.NewPostgres(tx, u.logger),
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		u.logger.Printf("uow: commit error=%v", err)
		return &domain.PersistenceError{Op: "commit", Err: err}
	}
	return nil
}
