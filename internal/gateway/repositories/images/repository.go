package images

import (
	"context"

	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	ListByCollection(ctx context.Context, collectionID string) ([]*models.Image, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Image, error)
	Delete(ctx context.Context, id string) (*models.Image, error)
}
