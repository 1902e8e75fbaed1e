package purchases

import (
	"context"

	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
)

type Repository interface {
	Create(ctx context.Context, userID, imageID string) (*models.PurchaseRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*models.PurchaseRequest, error)
	ListAll(ctx context.Context) ([]*models.PurchaseRequest, error)
	Get(ctx context.Context, id string) (*models.PurchaseRequest, error)
	Resolve(ctx context.Context, id, status string) (*models.PurchaseRequest, error)
}
