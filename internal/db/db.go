package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so a
// repository can run against either.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type options struct {
	maxConns     int32
	pingAttempts int
	pingBackoff  time.Duration
	logger       *log.Logger
}

// Option tunes Connect.
type Option func(*options)

// WithMaxConns caps the pool size. Values below 1 keep the pgx default.
func WithMaxConns(n int32) Option {
	return func(o *options) { o.maxConns = n }
}

// WithPingRetry retries the startup ping, waiting backoff between attempts.
func WithPingRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.pingAttempts = attempts
		o.pingBackoff = backoff
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Connect opens a pgx connection pool and verifies connectivity with a ping.
func Connect(ctx context.Context, dsn string, opts ...Option) (*pgxpool.Pool, error) {
	o := options{pingAttempts: 1, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute
	if o.maxConns > 0 {
		cfg.MaxConns = o.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := ping(ctx, pool, o); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool, o options) error {
	var err error
	for attempt := 1; attempt <= max(o.pingAttempts, 1); attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		o.logger.Printf("db: ping attempt=%d error=%v", attempt, err)
		if attempt < o.pingAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.pingBackoff):
			}
		}
	}
	return fmt.Errorf("ping database: %w", err)
}
