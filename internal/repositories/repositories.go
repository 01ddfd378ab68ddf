package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/shared"
)

var (
	_ models.Repository[*models.User]  = (*UserRepository)(nil)
	_ models.Repository[*models.Movie] = (*MovieRepository)(nil)
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// base holds the connection and driver shared by the repositories.
type base struct {
	db     *sql.DB
	driver string
}

func (b base) q(query string) string {
	return shared.Rebind(b.driver, query)
}

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func (b base) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (b base) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (b base) deleteAll(ctx context.Context, exec querier, table string) (int64, error) {
	result, err := exec.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
