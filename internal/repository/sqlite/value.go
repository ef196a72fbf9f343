package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/account-client/internal/model"
)

// Ensure ValueRepository implements the model.LocalStorage interface.
var _ model.LocalStorage = (*ValueRepository)(nil)

// ValueRepository keeps small named client values, the local storage of the CLI.
type ValueRepository struct {
	db *Connection
}

// NewValueRepository creates new ValueRepository instance.
func NewValueRepository(db *Connection) *ValueRepository {
	return &ValueRepository{db: db}
}

// Get returns the value of key, or model.ErrNotFound.
func (r *ValueRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM local_values WHERE key = ?`

	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get local value: %w", err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *ValueRepository) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO local_values (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE SET
            value = excluded.value,
            updated_at = CURRENT_TIMESTAMP
    `
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set local value: %w", err)
	}
	return nil
}

// Remove deletes keys in one transaction. Missing keys are ignored.
func (r *ValueRepository) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `DELETE FROM local_values WHERE key = ?`
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("failed to remove local value %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
