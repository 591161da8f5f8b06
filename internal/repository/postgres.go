package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on a pgx connection pool.
type PgStore struct {
	pgQueries
	pool *pgxpool.Pool
}

// NewPgStore creates a Store backed by the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pgQueries: pgQueries{db: pool}, pool: pool}
}

// InTx runs fn inside a database transaction. The transactional Queries view
// locks profile rows on read (SELECT FOR UPDATE), serializing concurrent
// mutations of the same profile.
func (s *PgStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(pgQueries{db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// pgQueries implements Queries against a DBTX (pool or transaction).
type pgQueries struct {
	db   DBTX
	inTx bool
}
