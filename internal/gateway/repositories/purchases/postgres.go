// Package purchases stores premium download requests.
package purchases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
)

const columns = `id, user_id, image_id, status, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending request.
func (r *PostgresRepository) Create(ctx context.Context, userID, imageID string) (*models.PurchaseRequest, error) {
	query :=
		`INSERT INTO purchase_requests (user_id, image_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING ` + columns

	return scanOne(r.db.QueryRowContext(ctx, query, userID, imageID))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.PurchaseRequest, error) {
	query :=
		`SELECT ` + columns + ` FROM purchase_requests
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.PurchaseRequest, error) {
	query :=
		`SELECT ` + columns + ` FROM purchase_requests
		 ORDER BY created_at DESC`

	return r.list(ctx, query)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	query := `SELECT ` + columns + ` FROM purchase_requests WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Resolve moves a pending request to status. A request that is no longer
// pending is left untouched and reported as common.ErrStatusTransition.
func (r *PostgresRepository) Resolve(ctx context.Context, id, status string) (*models.PurchaseRequest, error) {
	query :=
		`UPDATE purchase_requests SET status = $2
		 WHERE id = $1 AND status = 'pending'
		 RETURNING ` + columns

	pr, err := scanOne(r.db.QueryRowContext(ctx, query, id, status))
	if errors.Is(err, common.ErrorNotFound) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, common.ErrStatusTransition
	}
	return pr, err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.PurchaseRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PurchaseRequest
	for rows.Next() {
		pr := &models.PurchaseRequest{}
		if err := rows.Scan(&pr.ID, &pr.UserID, &pr.ImageID, &pr.Status, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func scanOne(row *sql.Row) (*models.PurchaseRequest, error) {
	pr := &models.PurchaseRequest{}
	if err := row.Scan(&pr.ID, &pr.UserID, &pr.ImageID, &pr.Status, &pr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pr, nil
}
