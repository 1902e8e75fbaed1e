package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/repomanager"
	"github.com/dmitrijs2005/photoportal/internal/logging"
)

// SettingsService owns the global download PIN.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	defaultPin  string
	events      realtime.Publisher
	logger      logging.Logger
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, defaultPin string, p realtime.Publisher, l logging.Logger) *SettingsService {
	if defaultPin == "" {
		defaultPin = common.DefaultDownloadPin
	}
	return &SettingsService{db: db, repomanager: m, defaultPin: defaultPin, events: p, logger: l.With("module", "settings_service")}
}

// GetDownloadPin returns the stored PIN, or the default while none is set.
// The value is returned in plaintext; portals compare against it locally.
func (s *SettingsService) GetDownloadPin(ctx context.Context) (string, error) {
	pin, err := s.repomanager.DownloadPin(s.db).Get(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return s.defaultPin, nil
	}
	return pin, err
}

func (s *SettingsService) SetDownloadPin(ctx context.Context, pin string) error {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return common.ErrEmptyPin
	}
	if err := s.repomanager.DownloadPin(s.db).Set(ctx, pin); err != nil {
		return err
	}
	announce(ctx, s.events, s.logger, common.TableDownloadPin, api.EventUpdate, "global")
	return nil
}
