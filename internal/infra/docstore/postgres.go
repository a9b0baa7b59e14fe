package docstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coupon-shop-bot/internal/pkg/errs"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
    name       TEXT PRIMARY KEY,
    body       BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps each document as a single row and serializes updates
// with a per-name advisory transaction lock, so the whole-document
// read-modify-write contract holds across processes, not just within one,
// including the very first write of a document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to parse database config")
	}
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errs.Wrap(err, "failed to ping database")
	}

	return pool, pool.Close, nil
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, documentsSchema); err != nil {
		return nil, errs.Wrap(err, "failed to ensure documents table")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to load document")
	}
	return body, nil
}

func (s *PostgresStore) Update(ctx context.Context, name string, fn UpdateFn) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback document update", "document", name, "error", rollbackErr)
		}
	}()

	// A row lock cannot serialize the first write because the row does not
	// exist yet, so the name itself is locked for the transaction. The lock
	// is released on commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return errs.Wrap(err, "failed to lock document")
	}

	var current []byte
	err = tx.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(err, "failed to read document for update")
	}

	next, err := fn(current)
	if err != nil {
		if errors.Is(err, ErrAbort) {
			return nil
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		name, next,
	)
	if err != nil {
		return errs.Wrap(err, "failed to write document")
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, "failed to commit document update")
	}
	return nil
}
