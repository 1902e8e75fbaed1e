package accessgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/dmitrijs2005/photoportal/internal/portal/client"
)

type fakeGateway struct {
	mu          sync.Mutex
	pins        map[string]string
	images      map[string][]*api.Image
	globalPin   string
	purchases   []*api.PurchaseRequest
	verifyCalls int
	verifyErr   error
	listErr     error
	pinErr      error
	createErr   error
	onCreate    func()
	signErr     error
	lastPath    string
	lastTTL     time.Duration
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		pins:      map[string]string{"c-1": "5678"},
		images:    map[string][]*api.Image{"c-1": testImages()},
		globalPin: "1234",
	}
}

func testImages() []*api.Image {
	return []*api.Image{
		{ID: "i-1", CollectionID: "c-1", Title: "Dawn", StoragePath: "c-1/dawn.png", URL: "https://cdn/dawn.png"},
		{ID: "i-2", CollectionID: "c-1", Title: "Noon", StoragePath: "c-1/noon.jpg", URL: "https://cdn/noon.jpg"},
		{ID: "i-3", CollectionID: "c-1", Title: "", StoragePath: "c-1/dusk", URL: "https://cdn/dusk"},
	}
}

func (f *fakeGateway) ListImages(_ context.Context, collectionID string) ([]*api.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.images[collectionID], nil
}

func (f *fakeGateway) VerifyCollectionPin(_ context.Context, collectionID, candidate string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	pin, ok := f.pins[collectionID]
	return ok && pin == candidate, nil
}

func (f *fakeGateway) GetDownloadPin(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.globalPin, f.pinErr
}

func (f *fakeGateway) ListPurchaseRequests(context.Context, bool) ([]*api.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*api.PurchaseRequest, 0, len(f.purchases))
	for _, pr := range f.purchases {
		cp := *pr
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeGateway) CreatePurchaseRequest(_ context.Context, imageID string) (*api.PurchaseRequest, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	pr := &api.PurchaseRequest{
		ID:      fmt.Sprintf("pr-%d", len(f.purchases)+1),
		UserID:  "u-1",
		ImageID: imageID,
		Status:  api.StatusPending,
	}
	f.purchases = append([]*api.PurchaseRequest{pr}, f.purchases...)
	cp := *pr
	return &cp, nil
}

func (f *fakeGateway) CreateSignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPath, f.lastTTL = path, ttl
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://signed/" + path, nil
}

func (f *fakeGateway) setStatus(imageID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pr := range f.purchases {
		if pr.ImageID == imageID {
			pr.Status = status
		}
	}
}

type download struct {
	url  string
	name string
}

type fakeDownloader struct {
	mu        sync.Mutex
	content   map[string][]byte
	fetchErr  error
	saveErr   error
	failURLs  map[string]bool
	downloads []download
	saved     map[string][]byte
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{
		content:  map[string][]byte{"https://cdn/dawn.png": []byte("dawn-bytes")},
		failURLs: map[string]bool{},
		saved:    map[string][]byte{},
	}
}

func (d *fakeDownloader) Fetch(_ context.Context, url string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fetchErr != nil {
		return nil, d.fetchErr
	}
	return d.content[url], nil
}

func (d *fakeDownloader) Save(name string, data []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return "", d.saveErr
	}
	d.saved[name] = data
	return "/downloads/" + name, nil
}

func (d *fakeDownloader) Download(_ context.Context, url, name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.downloads = append(d.downloads, download{url: url, name: name})
	if d.failURLs[url] {
		return "", errors.New("connection reset")
	}
	return "/downloads/" + name, nil
}

type renderFunc func([]byte) ([]byte, error)

func (f renderFunc) Render(src []byte) ([]byte, error) { return f(src) }

type note struct {
	kind string
	msg  string
}

type recNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recNotifier) add(kind, msg string) {
	n.mu.Lock()
	n.notes = append(n.notes, note{kind, msg})
	n.mu.Unlock()
}

func (n *recNotifier) Success(msg string)  { n.add("success", msg) }
func (n *recNotifier) Error(msg string)    { n.add("error", msg) }
func (n *recNotifier) Warning(msg string)  { n.add("warning", msg) }
func (n *recNotifier) Degraded(msg string) { n.add("degraded", msg) }

func (n *recNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.notes))
	for _, nt := range n.notes {
		out = append(out, nt.kind)
	}
	return out
}

func (n *recNotifier) last() note {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

type harness struct {
	engine   *Engine
	gw       *fakeGateway
	dl       *fakeDownloader
	notifier *recNotifier
	sleeps   []time.Duration
}

var alice = &client.Identity{UserID: "u-1", Email: "alice@example.com", Role: api.RoleUser}

func newHarness() *harness {
	h := &harness{gw: newFakeGateway(), dl: newFakeDownloader(), notifier: &recNotifier{}}
	render := renderFunc(func(src []byte) ([]byte, error) {
		return append([]byte("wm:"), src...), nil
	})
	h.engine = NewEngine(h.gw, h.dl, render, h.notifier, logging.Nop{}, Options{})
	h.engine.sleep = func(d time.Duration) { h.sleeps = append(h.sleeps, d) }
	return h
}
