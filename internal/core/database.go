// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/codeclash-gg/backend/internal/config"
)

const pingTimeout = 5 * time.Second

// Database owns the postgres connection pool. Repositories never hold
// it directly, they receive a DBTX so the same query code runs inside
// and outside a transaction.
type Database struct {
	DB *sqlx.DB
}

func NewDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
) (*Database, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(staggerLifetime(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connect failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

// DBTX is the slice of sqlx that repositories query through. Both
// *sqlx.DB and *sqlx.Tx satisfy it, so one set of repository methods
// serves standalone calls and transactional ones.
type DBTX interface {
	sqlx.ExtContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(
		ctx context.Context,
		dest any,
		query string,
		args ...any,
	) error
}

// TxRunner is the transactional boundary services depend on. *Database
// satisfies it in production; tests substitute a fake that invokes fn
// directly.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx DBTX) error) error
}

// RunInTx runs fn inside a transaction, committing when it returns nil
// and rolling back when it does not. Errors from fn come back unwrapped
// so callers can still match their sentinels.
func (d *Database) RunInTx(
	ctx context.Context,
	fn func(tx DBTX) error,
) error {
	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback before repanic
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// staggerLifetime pads the configured lifetime with random jitter so
// pooled connections do not all expire in the same instant.
func staggerLifetime(base time.Duration) time.Duration {
	jitter := base / 8
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: jitter is not security sensitive
	return base + rand.N(jitter)
}
