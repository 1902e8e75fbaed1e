package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/services"
)

type fakeUsers struct {
	result  *services.AuthResult
	err     error
	user    *models.User
	list    []*models.User
	deleted string
}

func (f *fakeUsers) SignUp(context.Context, string, string, string) (*services.AuthResult, error) {
	return f.result, f.err
}
func (f *fakeUsers) SignIn(context.Context, string, string) (*services.AuthResult, error) {
	return f.result, f.err
}
func (f *fakeUsers) RefreshToken(context.Context, string) (*services.AuthResult, error) {
	return f.result, f.err
}
func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, common.ErrorNotFound
	}
	return f.user, nil
}
func (f *fakeUsers) ListUsers(context.Context) ([]*models.User, error) { return f.list, f.err }
func (f *fakeUsers) DeleteUser(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

type fakeCatalog struct {
	collections []*models.Collection
	images      []*models.Image
	valid       bool
	err         error
	lastTTL     time.Duration
	lastLimit   int
}

func (f *fakeCatalog) ListCollections(context.Context) ([]*models.Collection, error) {
	return f.collections, f.err
}
func (f *fakeCatalog) CreateCollection(_ context.Context, title, description, _ string) (*models.Collection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Collection{ID: "c-1", Title: title, Description: description, PinHash: "secret-hash"}, nil
}
func (f *fakeCatalog) SetCollectionPin(context.Context, string, string) error { return f.err }
func (f *fakeCatalog) VerifyCollectionPin(context.Context, string, string) (bool, error) {
	return f.valid, f.err
}
func (f *fakeCatalog) ListImages(context.Context, string) ([]*models.Image, error) {
	return f.images, f.err
}
func (f *fakeCatalog) ListGallery(_ context.Context, limit int) ([]*models.Image, error) {
	f.lastLimit = limit
	return f.images, f.err
}
func (f *fakeCatalog) UploadImage(_ context.Context, collectionID, title, _, _ string, _ []byte) (*models.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Image{ID: "i-1", CollectionID: collectionID, Title: title, StorageKey: "images/k.jpg", URL: "http://cdn/images/k.jpg"}, nil
}
func (f *fakeCatalog) DeleteImage(context.Context, string) error { return f.err }
func (f *fakeCatalog) SignedURL(_ context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	f.lastTTL = ttl
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "http://minio/" + path + "?sig", time.Unix(1700000000, 0).UTC(), nil
}

type fakePurchases struct {
	created   *models.PurchaseRequest
	all, mine []*models.PurchaseRequest
	err       error
	userID    string
}

func (f *fakePurchases) Create(_ context.Context, userID, imageID string) (*models.PurchaseRequest, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	f.created = &models.PurchaseRequest{ID: "p-1", UserID: userID, ImageID: imageID, Status: "pending"}
	return f.created, nil
}
func (f *fakePurchases) ListForUser(_ context.Context, userID string) ([]*models.PurchaseRequest, error) {
	f.userID = userID
	return f.mine, f.err
}
func (f *fakePurchases) ListAll(context.Context) ([]*models.PurchaseRequest, error) {
	return f.all, f.err
}
func (f *fakePurchases) UpdateStatus(_ context.Context, id, status string) (*models.PurchaseRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PurchaseRequest{ID: id, Status: status}, nil
}

type fakeSettings struct {
	pin string
	err error
}

func (f *fakeSettings) GetDownloadPin(context.Context) (string, error) { return f.pin, f.err }
func (f *fakeSettings) SetDownloadPin(_ context.Context, pin string) error {
	if f.err != nil {
		return f.err
	}
	f.pin = pin
	return nil
}
