// Package images stores image rows. The bytes live in object storage under
// StorageKey.
package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (collection_id, title, storage_key, url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, img.CollectionID, img.Title, img.StorageKey, img.URL).
		Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) ListByCollection(ctx context.Context, collectionID string) ([]*models.Image, error) {
	query :=
		`SELECT id, collection_id, title, storage_key, url, created_at FROM images
		 WHERE collection_id = $1
		 ORDER BY created_at DESC`

	return r.list(ctx, query, collectionID)
}

// ListRecent feeds the public gallery.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.Image, error) {
	query :=
		`SELECT id, collection_id, title, storage_key, url, created_at FROM images
		 ORDER BY created_at DESC
		 LIMIT $1`

	return r.list(ctx, query, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Image
	for rows.Next() {
		img := &models.Image{}
		if err := rows.Scan(&img.ID, &img.CollectionID, &img.Title, &img.StorageKey, &img.URL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Delete removes the row and returns it so the caller can drop the object.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Image, error) {
	query :=
		`DELETE FROM images WHERE id = $1
		 RETURNING id, collection_id, title, storage_key, url, created_at`

	img := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&img.ID, &img.CollectionID, &img.Title, &img.StorageKey, &img.URL, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}
