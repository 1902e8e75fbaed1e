package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexedwards/argon2id"
	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/cryptox"
	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/collections"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/downloadpin"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/images"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/purchases"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/refreshtokens"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	cryptox.PinParams = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	cryptox.PasswordCost = bcrypt.MinCost
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// ---- repositories ----

type fakeUsers struct {
	byID      map[string]*models.User
	createErr error
	seq       int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.seq++
	u.ID = fakeID('u', f.seq)
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRefresh struct {
	tokens     map[string]*models.RefreshToken
	createErr  error
	consumeErr error
}

func newFakeRefresh() *fakeRefresh { return &fakeRefresh{tokens: map[string]*models.RefreshToken{}} }

func (f *fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefresh) Consume(_ context.Context, token string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	if _, ok := f.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeCollections struct {
	rows map[string]*models.Collection
	seq  int
}

func newFakeCollections() *fakeCollections {
	return &fakeCollections{rows: map[string]*models.Collection{}}
}

func (f *fakeCollections) Create(_ context.Context, c *models.Collection) (*models.Collection, error) {
	f.seq++
	c.ID = fakeID('c', f.seq)
	cp := *c
	f.rows[c.ID] = &cp
	return c, nil
}

func (f *fakeCollections) List(context.Context) ([]*models.Collection, error) {
	var out []*models.Collection
	for _, c := range f.rows {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCollections) PinHash(_ context.Context, id string) (string, error) {
	if c, ok := f.rows[id]; ok {
		return c.PinHash, nil
	}
	return "", common.ErrorNotFound
}

func (f *fakeCollections) SetPinHash(_ context.Context, id, hash string) error {
	c, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.PinHash = hash
	return nil
}

type fakeImages struct {
	rows      map[string]*models.Image
	createErr error
	lastLimit int
	seq       int
}

func newFakeImages() *fakeImages { return &fakeImages{rows: map[string]*models.Image{}} }

func (f *fakeImages) Create(_ context.Context, img *models.Image) (*models.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	img.ID = fakeID('i', f.seq)
	f.rows[img.ID] = img
	return img, nil
}

func (f *fakeImages) ListByCollection(_ context.Context, collectionID string) ([]*models.Image, error) {
	var out []*models.Image
	for _, img := range f.rows {
		if img.CollectionID == collectionID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImages) ListRecent(_ context.Context, limit int) ([]*models.Image, error) {
	f.lastLimit = limit
	return nil, nil
}

func (f *fakeImages) Delete(_ context.Context, id string) (*models.Image, error) {
	img, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, id)
	return img, nil
}

type fakePurchases struct {
	rows map[string]*models.PurchaseRequest
	seq  int
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{rows: map[string]*models.PurchaseRequest{}}
}

func (f *fakePurchases) Create(_ context.Context, userID, imageID string) (*models.PurchaseRequest, error) {
	f.seq++
	pr := &models.PurchaseRequest{ID: fakeID('p', f.seq), UserID: userID, ImageID: imageID, Status: api.StatusPending}
	f.rows[pr.ID] = pr
	return pr, nil
}

func (f *fakePurchases) ListByUser(_ context.Context, userID string) ([]*models.PurchaseRequest, error) {
	var out []*models.PurchaseRequest
	for _, pr := range f.rows {
		if pr.UserID == userID {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (f *fakePurchases) ListAll(context.Context) ([]*models.PurchaseRequest, error) {
	var out []*models.PurchaseRequest
	for _, pr := range f.rows {
		out = append(out, pr)
	}
	return out, nil
}

func (f *fakePurchases) Get(_ context.Context, id string) (*models.PurchaseRequest, error) {
	if pr, ok := f.rows[id]; ok {
		return pr, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePurchases) Resolve(_ context.Context, id, status string) (*models.PurchaseRequest, error) {
	pr, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if pr.Status != api.StatusPending {
		return nil, common.ErrStatusTransition
	}
	pr.Status = status
	return pr, nil
}

type fakePin struct {
	pin    string
	getErr error
}

func (f *fakePin) Get(context.Context) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if f.pin == "" {
		return "", common.ErrorNotFound
	}
	return f.pin, nil
}

func (f *fakePin) Set(_ context.Context, pin string) error {
	f.pin = pin
	return nil
}

type fakeRepoManager struct {
	users       *fakeUsers
	refresh     *fakeRefresh
	collections *fakeCollections
	images      *fakeImages
	purchases   *fakePurchases
	pin         *fakePin
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       newFakeUsers(),
		refresh:     newFakeRefresh(),
		collections: newFakeCollections(),
		images:      newFakeImages(),
		purchases:   newFakePurchases(),
		pin:         &fakePin{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Collections(dbx.DBTX) collections.Repository     { return m.collections }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository               { return m.images }
func (m *fakeRepoManager) Purchases(dbx.DBTX) purchases.Repository         { return m.purchases }
func (m *fakeRepoManager) DownloadPin(dbx.DBTX) downloadpin.Repository     { return m.pin }

// ---- collaborators ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []api.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev api.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) last() api.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return api.ChangeEvent{}
	}
	return p.events[len(p.events)-1]
}

type fakeStore struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	signErr   error
	lastTTL   time.Duration
	deleted   []string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Upload(_ context.Context, key string, content []byte, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[key] = content
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string { return "http://cdn/" + key }

func (s *fakeStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	s.lastTTL = ttl
	if s.signErr != nil {
		return "", time.Time{}, s.signErr
	}
	return "http://minio/" + key + "?sig", time.Now().Add(ttl), nil
}

var (
	testCollectionID = fakeID('c', 1)
	testImageID      = fakeID('i', 1)
	testUserID       = fakeID('u', 1)
)

// fakeID builds a UUID-shaped id; kind keeps ids of different tables apart.
func fakeID(kind byte, n int) string {
	return fmt.Sprintf("%08x-0000-4000-8000-%012d", kind, n)
}
