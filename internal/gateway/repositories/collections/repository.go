package collections

import (
	"context"

	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Collection) (*models.Collection, error)
	List(ctx context.Context) ([]*models.Collection, error)
	PinHash(ctx context.Context, id string) (string, error)
	SetPinHash(ctx context.Context, id string, hash string) error
}
