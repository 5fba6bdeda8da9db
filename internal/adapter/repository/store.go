package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/leitbox/internal/repository"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run
// unchanged inside and outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx-backed implementation of repository.Store.
type Store struct {
	db      dbtx
	pool    *pgxpool.Pool
	catalog repository.CatalogRepository
}

// NewStore constructs a Postgres-backed store. A positive catalogTTL wraps
// the catalog in a per-list read cache.
func NewStore(pool *pgxpool.Pool, catalogTTL time.Duration) *Store {
	s := &Store{db: pool, pool: pool}
	var catalog repository.CatalogRepository = &catalogRepository{db: pool}
	if catalogTTL > 0 {
		catalog = NewCachedCatalog(catalog, catalogTTL)
	}
	s.catalog = catalog
	return s
}

func (s *Store) Catalog() repository.CatalogRepository {
	if s.catalog != nil {
		return s.catalog
	}
	return &catalogRepository{db: s.db}
}
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepository{db: s.db} }
func (s *Store) Mastery() repository.MasteryRepository       { return &masteryRepository{db: s.db} }
func (s *Store) Profiles() repository.ProfileRepository      { return &profileRepository{db: s.db} }
func (s *Store) Attempts() repository.AttemptRepository      { return &attemptRepository{db: s.db} }

// InTx runs fn against a transactional view; every write inside fn commits
// or rolls back as one unit. Nested calls reuse the surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
