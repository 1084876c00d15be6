package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx, so the
// same repository code serves pooled reads and transactional mutations.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles all repositories behind one transaction boundary. InTx runs
// fn against transaction-scoped repositories; everything fn does commits or
// rolls back as a unit.
type Store interface {
	Users() UserRepository
	Tickets() TicketRepository
	History() HistoryRepository
	Chat() ChatRepository
	AIResults() AIResultRepository
	FAQs() FAQRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db DB
	// pool is non-nil only for the root store; a tx-scoped store carries the
	// transaction in db and must not open nested transactions.
	pool *pgxpool.Pool
}

// NewStore builds the Postgres-backed store on a pgx pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &sqlStore{db: pool, pool: pool}
}

func (s *sqlStore) Users() UserRepository         { return NewUserRepository(s.db) }
func (s *sqlStore) Tickets() TicketRepository     { return NewTicketRepository(s.db) }
func (s *sqlStore) History() HistoryRepository    { return NewHistoryRepository(s.db) }
func (s *sqlStore) Chat() ChatRepository          { return NewChatRepository(s.db) }
func (s *sqlStore) AIResults() AIResultRepository { return NewAIResultRepository(s.db) }
func (s *sqlStore) FAQs() FAQRepository           { return NewFAQRepository(s.db) }

const (
	txAttempts     = 3
	txRetryBackoff = 50 * time.Millisecond
)

// InTx executes fn inside a single database transaction, retrying the whole
// body on transient connectivity or serialization failures. fn must confine
// its side effects to the transaction so a re-run is safe. Calling InTx on an
// already transaction-scoped store joins the surrounding transaction.
func (s *sqlStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(txRetryBackoff << (attempt - 1)):
			}
		}
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (s *sqlStore) runTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&sqlStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isTransient reports whether a failed transaction is worth re-executing:
// the connection dropped before any work happened, the server is shutting a
// connection down, or the transaction lost a serialization/deadlock race.
func isTransient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"08000", // connection_exception
		"08003", // connection_does_not_exist
		"08006", // connection_failure
		"57P01": // admin_shutdown
		return true
	}
	return false
}
