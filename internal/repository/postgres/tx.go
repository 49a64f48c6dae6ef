package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"

	"github.com/lib/pq"
)

// Postgres error codes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

type txKey struct{}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	DB          *sql.DB
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewTransactor returns a domain.Transactor running serializable transactions.
// A transaction that fails with a serialization failure or a deadlock is re-run,
// up to maxAttempts runs in total, waiting about backoff*attempt between runs.
// When every attempt conflicts the error wraps domain.ErrConflict.
func NewTransactor(db *sql.DB, maxAttempts int, backoff time.Duration, logger *slog.Logger) domain.Transactor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &transactor{DB: db, maxAttempts: maxAttempts, backoff: backoff, logger: logger}
}

func (t *transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	for attempt := 1; ; attempt++ {
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= t.maxAttempts {
			return fmt.Errorf("%w: transaction aborted after %d attempts: %v", domain.ErrConflict, attempt, err)
		}
		metrics.TransactionRetries.Inc()
		t.logger.DebugContext(ctx, "retrying transaction", "attempt", attempt, "error", err)
		if err := t.wait(ctx, attempt); err != nil {
			return err
		}
	}
}

func (t *transactor) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *transactor) wait(ctx context.Context, attempt int) error {
	if t.backoff <= 0 {
		return nil
	}
	d := t.backoff*time.Duration(attempt) + rand.N(t.backoff)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}
