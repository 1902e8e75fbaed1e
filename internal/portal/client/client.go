// Package client is the portal's view of the backend gateway: sessions and
// auth events, realtime row deletions, typed table operations, the one-way
// PIN comparison and object links.
package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
)

// Identity is the signed-in account as the portal sees it.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == api.RoleAdmin
}

type AuthEventType int

const (
	AuthSignedIn AuthEventType = iota
	AuthSignedOut
	AuthTokenRefreshed
)

func (t AuthEventType) String() string {
	switch t {
	case AuthSignedIn:
		return "SIGNED_IN"
	case AuthSignedOut:
		return "SIGNED_OUT"
	case AuthTokenRefreshed:
		return "TOKEN_REFRESHED"
	}
	return "UNKNOWN"
}

// AuthEvent is delivered to OnAuthStateChange listeners. Identity is nil
// for AuthSignedOut.
type AuthEvent struct {
	Type     AuthEventType
	Identity *Identity
}

// Gateway is everything the portal asks of the backend.
type Gateway interface {
	Close() error
	Ping(ctx context.Context) error

	GetSession(ctx context.Context) (*Identity, error)
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
	OnRowDeleted(ctx context.Context, table, matchID string, fn func(rowID string)) (unsubscribe func(), err error)
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error

	ListCollections(ctx context.Context) ([]*api.Collection, error)
	ListImages(ctx context.Context, collectionID string) ([]*api.Image, error)
	ListGallery(ctx context.Context, limit int) ([]*api.Image, error)
	VerifyCollectionPin(ctx context.Context, collectionID, candidate string) (bool, error)
	GetDownloadPin(ctx context.Context) (string, error)
	ListPurchaseRequests(ctx context.Context, all bool) ([]*api.PurchaseRequest, error)
	CreatePurchaseRequest(ctx context.Context, imageID string) (*api.PurchaseRequest, error)
	CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Admin operations.
	CreateCollection(ctx context.Context, title, description, pin string) (*api.Collection, error)
	SetCollectionPin(ctx context.Context, collectionID, pin string) error
	UploadImage(ctx context.Context, collectionID, title, fileName, contentType string, content []byte) (*api.Image, error)
	DeleteImage(ctx context.Context, id string) error
	SetDownloadPin(ctx context.Context, pin string) error
	UpdatePurchaseRequestStatus(ctx context.Context, id, status string) (*api.PurchaseRequest, error)
	ListUsers(ctx context.Context) ([]*api.User, error)
	DeleteUser(ctx context.Context, id string) error
}
