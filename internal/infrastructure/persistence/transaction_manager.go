package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lqor/igorforce/internal/infrastructure/database"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods take a DBTX so the same code serves plain reads and
// transactional cascades.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TransactionManager wraps every multi-step mutation in one transaction so
// cascades and auto-numbered inserts are indivisible.
type TransactionManager struct {
	db *sql.DB
}

// NewTransactionManager creates a new TransactionManager
func NewTransactionManager(conn *database.Connection) *TransactionManager {
	return &TransactionManager{db: conn.DB()}
}

// WithTransaction executes a function within a database transaction.
// The transaction is rolled back if the function returns an error or panics,
// and committed if the function returns nil.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // re-throw after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
