// Package repository mediates all persistence access. Every read and
// write goes through a tenant predicate and the configured identifier
// storage encoding; call sites cannot reach the tables any other way.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/tendant/simple-crm-core/pkg/domain"
	"github.com/tendant/simple-crm-core/pkg/ident"
)

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewDB opens a PostgreSQL connection pool and verifies connectivity.
func NewDB(cfg Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Querier is the subset of *sql.DB and *sql.Tx the repositories use, so
// multi-entity writes can share a caller-provided transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// store carries what every repository shares: the connection, the
// configured identifier codec, and the generator.
type store struct {
	db  *sql.DB
	ids ident.Codec
	gen *ident.Generator
}

// translateErr maps driver errors onto the repository error taxonomy.
// Unique violations become ErrConflict; connection-level failures become
// ErrStorageUnavailable; anything else passes through.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
		case "08000", "08003", "08006", "53300", "57P01":
			return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

// RetryPolicy controls WithRetry. Callers own the policy; repositories
// never retry on their own.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// WithRetry runs fn, retrying only on ErrStorageUnavailable. Every other
// outcome, success or typed failure, returns immediately.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(policy.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn()
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
	}
	return err
}
