package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/repomanager"
	"github.com/dmitrijs2005/photoportal/internal/logging"
)

type PurchaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      realtime.Publisher
	logger      logging.Logger
}

func NewPurchaseService(db *sql.DB, m repomanager.RepositoryManager, p realtime.Publisher, l logging.Logger) *PurchaseService {
	return &PurchaseService{db: db, repomanager: m, events: p, logger: l.With("module", "purchase_service")}
}

// Create records a pending request by userID for imageID.
func (s *PurchaseService) Create(ctx context.Context, userID, imageID string) (*models.PurchaseRequest, error) {
	if imageID == "" {
		return nil, fmt.Errorf("%w: image id is required", common.ErrorValidation)
	}
	if err := checkID("image", imageID); err != nil {
		return nil, err
	}
	pr, err := s.repomanager.Purchases(s.db).Create(ctx, userID, imageID)
	if err != nil {
		return nil, fmt.Errorf("error creating purchase request: %w", err)
	}
	announce(ctx, s.events, s.logger, common.TablePurchaseRequests, api.EventInsert, pr.ID)
	return pr, nil
}

func (s *PurchaseService) ListForUser(ctx context.Context, userID string) ([]*models.PurchaseRequest, error) {
	return s.repomanager.Purchases(s.db).ListByUser(ctx, userID)
}

func (s *PurchaseService) ListAll(ctx context.Context) ([]*models.PurchaseRequest, error) {
	return s.repomanager.Purchases(s.db).ListAll(ctx)
}

// UpdateStatus resolves a pending request to approved or denied. Resolved
// requests never change again.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id, status string) (*models.PurchaseRequest, error) {
	if status != api.StatusApproved && status != api.StatusDenied {
		return nil, common.ErrInvalidStatus
	}
	if err := checkID("purchase request", id); err != nil {
		return nil, err
	}
	pr, err := s.repomanager.Purchases(s.db).Resolve(ctx, id, status)
	if err != nil {
		return nil, err
	}
	announce(ctx, s.events, s.logger, common.TablePurchaseRequests, api.EventUpdate, pr.ID)
	return pr, nil
}
