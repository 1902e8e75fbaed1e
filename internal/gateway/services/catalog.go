package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/cryptox"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/repomanager"
	"github.com/dmitrijs2005/photoportal/internal/gateway/storage"
	"github.com/dmitrijs2005/photoportal/internal/logging"
)

// Gallery page sizes.
const (
	DefaultGalleryLimit = 24
	MaxGalleryLimit     = 100
)

// MaxSignedURLTTL caps the lifetime of presigned links.
const MaxSignedURLTTL = time.Hour

// ObjectStore is the slice of object storage the catalog needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// newKey is a seam for tests.
var newKey = storage.NewKey

type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	events      realtime.Publisher
	logger      logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, p realtime.Publisher, l logging.Logger) *CatalogService {
	return &CatalogService{
		db:          db,
		repomanager: m,
		store:       store,
		events:      p,
		logger:      l.With("module", "catalog_service"),
	}
}

// ListCollections returns collections without their PIN hashes.
func (s *CatalogService) ListCollections(ctx context.Context) ([]*models.Collection, error) {
	cs, err := s.repomanager.Collections(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		c.PinHash = ""
	}
	return cs, nil
}

func (s *CatalogService) CreateCollection(ctx context.Context, title, description, pin string) (*models.Collection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if pin == "" {
		return nil, common.ErrEmptyPin
	}

	hash, err := cryptox.HashPin(pin)
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Collections(s.db).Create(ctx, &models.Collection{
		Title:       title,
		Description: strings.TrimSpace(description),
		PinHash:     hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating collection: %w", err)
	}

	announce(ctx, s.events, s.logger, common.TableCollections, api.EventInsert, c.ID)
	c.PinHash = ""
	return c, nil
}

// SetCollectionPin replaces the PIN. Sessions that already unlocked the
// collection are not affected.
func (s *CatalogService) SetCollectionPin(ctx context.Context, collectionID, pin string) error {
	if pin == "" {
		return common.ErrEmptyPin
	}
	if err := checkID("collection", collectionID); err != nil {
		return err
	}
	hash, err := cryptox.HashPin(pin)
	if err != nil {
		return err
	}
	if err := s.repomanager.Collections(s.db).SetPinHash(ctx, collectionID, hash); err != nil {
		return err
	}
	announce(ctx, s.events, s.logger, common.TableCollections, api.EventUpdate, collectionID)
	return nil
}

// VerifyCollectionPin compares candidate against the stored hash. There is
// no attempt counter.
func (s *CatalogService) VerifyCollectionPin(ctx context.Context, collectionID, candidate string) (bool, error) {
	if candidate == "" {
		return false, common.ErrEmptyPin
	}
	if err := checkID("collection", collectionID); err != nil {
		return false, err
	}
	hash, err := s.repomanager.Collections(s.db).PinHash(ctx, collectionID)
	if err != nil {
		return false, err
	}
	return cryptox.ComparePin(hash, candidate)
}

func (s *CatalogService) ListImages(ctx context.Context, collectionID string) ([]*models.Image, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is required", common.ErrorValidation)
	}
	if err := checkID("collection", collectionID); err != nil {
		return nil, err
	}
	return s.repomanager.Images(s.db).ListByCollection(ctx, collectionID)
}

// ListGallery returns the newest images across all collections.
func (s *CatalogService) ListGallery(ctx context.Context, limit int) ([]*models.Image, error) {
	switch {
	case limit <= 0:
		limit = DefaultGalleryLimit
	case limit > MaxGalleryLimit:
		limit = MaxGalleryLimit
	}
	return s.repomanager.Images(s.db).ListRecent(ctx, limit)
}

// UploadImage stores content and records the image row. If the row cannot
// be written the object is removed again.
func (s *CatalogService) UploadImage(ctx context.Context, collectionID, title, fileName, contentType string, content []byte) (*models.Image, error) {
	if collectionID == "" || len(content) == 0 {
		return nil, fmt.Errorf("%w: collection id and content are required", common.ErrorValidation)
	}
	if err := checkID("collection", collectionID); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := newKey(collectionID, fileName)
	if err := s.store.Upload(ctx, key, content, contentType); err != nil {
		return nil, err
	}

	img, err := s.repomanager.Images(s.db).Create(ctx, &models.Image{
		CollectionID: collectionID,
		Title:        strings.TrimSpace(title),
		StorageKey:   key,
		URL:          s.store.PublicURL(key),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "Removing orphaned object failed", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error creating image: %w", err)
	}

	announce(ctx, s.events, s.logger, common.TableImages, api.EventInsert, img.ID)
	return img, nil
}

// DeleteImage removes the row, then the object. An object that cannot be
// removed is logged and left behind.
func (s *CatalogService) DeleteImage(ctx context.Context, id string) error {
	if err := checkID("image", id); err != nil {
		return err
	}
	img, err := s.repomanager.Images(s.db).Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, img.StorageKey); err != nil {
		s.logger.Warn(ctx, "Removing object failed", "key", img.StorageKey, "error", err)
	}
	announce(ctx, s.events, s.logger, common.TableImages, api.EventDelete, id)
	return nil
}

// SignedURL mints a link to path that expires after ttl. A non-positive ttl
// means common.DefaultSignedURLTTL.
func (s *CatalogService) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", time.Time{}, fmt.Errorf("%w: path is required", common.ErrorValidation)
	}
	if strings.Contains(path, "..") {
		return "", time.Time{}, fmt.Errorf("%w: invalid path", common.ErrorValidation)
	}
	switch {
	case ttl <= 0:
		ttl = common.DefaultSignedURLTTL
	case ttl > MaxSignedURLTTL:
		ttl = MaxSignedURLTTL
	}
	url, expires, err := s.store.SignedURL(ctx, path, ttl)
	if err != nil {
		return "", time.Time{}, errors.Join(common.ErrorInternal, err)
	}
	return url, expires, nil
}
