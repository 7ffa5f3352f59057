package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// TxBeginner starts transactions. *pgxpool.Pool and pgxmock pools satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxManager runs callbacks inside a transaction carried by the context.
// Repositories pick it up through QuerierFromCtx. A RunInTx nested in
// another joins the outer transaction.
type TxManager struct {
	db TxBeginner
}

// NewTxManager creates a TxManager.
func NewTxManager(db TxBeginner) *TxManager {
	return &TxManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise, including on
// panic. Retryable failures wrap domain.ErrTransient; a failed commit wraps
// domain.ErrCommitUncertain since the server may have applied it.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", markTransient(err))
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("rollback: %w (after: %w)", rbErr, markTransient(err))
		}
		return markTransient(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrCommitUncertain, err)
	}
	return nil
}

const eventLockSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

// RunInEventTx is RunInTx under the event's advisory transaction lock.
// Writers of one event serialize across processes until commit or rollback.
func (m *TxManager) RunInEventTx(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context) error) error {
	return m.RunInTx(ctx, func(txCtx context.Context) error {
		tx, _ := txFromCtx(txCtx)
		if _, err := tx.Exec(txCtx, eventLockSQL, eventID.String()); err != nil {
			return fmt.Errorf("lock event %s: %w", eventID, err)
		}
		return fn(txCtx)
	})
}
