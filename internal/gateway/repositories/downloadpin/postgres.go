// Package downloadpin stores the singleton global download PIN.
package downloadpin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (string, error) {
	var pin string
	if err := r.db.QueryRowContext(ctx, `SELECT pin FROM download_pin WHERE id`).Scan(&pin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return pin, nil
}

// Set upserts the single row, so at most one PIN is active.
func (r *PostgresRepository) Set(ctx context.Context, pin string) error {
	query :=
		`INSERT INTO download_pin (id, pin, updated_at)
		 VALUES (TRUE, $1, now())
		 ON CONFLICT (id) DO UPDATE SET pin = EXCLUDED.pin, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, pin); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
