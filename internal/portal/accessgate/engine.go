// Package accessgate mediates every gated read and download in the portal:
// PIN unlock of collections, the tiered per-image download flow and the
// purchase request workflow around premium originals.
//
// Lock discipline: the engine mutex guards local state only and is never
// held across a gateway call, a download or a render.
package accessgate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/dmitrijs2005/photoportal/internal/portal/client"
)

const (
	DefaultCollectionDelay = 100 * time.Millisecond
	DefaultLinkTTL         = common.DefaultSignedURLTTL
)

var ErrAlreadyApproved = errors.New("premium download already approved")

// Gateway is the part of the backend the engine talks to.
type Gateway interface {
	ListImages(ctx context.Context, collectionID string) ([]*api.Image, error)
	VerifyCollectionPin(ctx context.Context, collectionID, candidate string) (bool, error)
	GetDownloadPin(ctx context.Context) (string, error)
	ListPurchaseRequests(ctx context.Context, all bool) ([]*api.PurchaseRequest, error)
	CreatePurchaseRequest(ctx context.Context, imageID string) (*api.PurchaseRequest, error)
	CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Downloader fetches remote objects and stores files for the user.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Save(name string, data []byte) (string, error)
	Download(ctx context.Context, url, name string) (string, error)
}

type Renderer interface {
	Render(src []byte) ([]byte, error)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Warning(msg string)
	Degraded(msg string)
}

type Options struct {
	CollectionDelay time.Duration
	LinkTTL         time.Duration
}

type prompt struct {
	action Action
	target string
}

type Engine struct {
	gw       Gateway
	dl       Downloader
	renderer Renderer
	notifier Notifier
	logger   logging.Logger

	delay   time.Duration
	linkTTL time.Duration
	sleep   func(time.Duration)

	mu          sync.Mutex
	user        *client.Identity
	unlocked    map[string]struct{}
	collections map[string]CollectionState
	current     string
	downloads   map[string]DownloadState
	pending     prompt
	globalPin   string
	pinLoaded   bool
	purchases   []*api.PurchaseRequest
}

func NewEngine(gw Gateway, dl Downloader, r Renderer, n Notifier, l logging.Logger, opts Options) *Engine {
	if opts.CollectionDelay <= 0 {
		opts.CollectionDelay = DefaultCollectionDelay
	}
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = DefaultLinkTTL
	}
	return &Engine{
		gw:          gw,
		dl:          dl,
		renderer:    r,
		notifier:    n,
		logger:      l.With("module", "accessgate"),
		delay:       opts.CollectionDelay,
		linkTTL:     opts.LinkTTL,
		sleep:       time.Sleep,
		unlocked:    make(map[string]struct{}),
		collections: make(map[string]CollectionState),
		downloads:   make(map[string]DownloadState),
	}
}

// SetUser binds the engine to the signed-in identity. Switching to a
// different user starts from a clean session.
func (e *Engine) SetUser(id *client.Identity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user != nil && id != nil && e.user.UserID == id.UserID {
		e.user = id
		return
	}
	e.resetLocked()
	e.user = id
}

// Reset forgets everything, including unlocked collections.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.user = nil
}

func (e *Engine) resetLocked() {
	e.unlocked = make(map[string]struct{})
	e.collections = make(map[string]CollectionState)
	e.downloads = make(map[string]DownloadState)
	e.current = ""
	e.pending = prompt{}
	e.globalPin, e.pinLoaded = "", false
	e.purchases = nil
}

// failed logs a gateway failure and surfaces msg to the user.
func (e *Engine) failed(ctx context.Context, msg string, err error, kv ...any) {
	e.logger.Error(ctx, msg, append(kv, "error", err)...)
	e.notifier.Error(msg)
}

func (e *Engine) CollectionState(id string) CollectionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collections[id]
}

// Current is the selected collection, or "" when none is open.
func (e *Engine) Current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) IsUnlocked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.unlocked[id]
	return ok
}

// SelectCollection opens a collection. A collection already in the
// unlocked set opens straight away and its images are returned; any other
// moves to PromptingPin and returns no images.
func (e *Engine) SelectCollection(ctx context.Context, id string) ([]*api.Image, CollectionState, error) {
	e.mu.Lock()
	e.leaveLocked()
	e.current = id
	if _, ok := e.unlocked[id]; !ok {
		e.collections[id] = PromptingPin
		e.mu.Unlock()
		return nil, PromptingPin, nil
	}
	e.collections[id] = Unlocked
	e.mu.Unlock()

	images, err := e.gw.ListImages(ctx, id)
	if err != nil {
		e.failed(ctx, "Could not load collection images", err, "collection_id", id)
		return nil, Unlocked, err
	}
	return images, Unlocked, nil
}

// VerifyCollectionPin asks the gateway to compare candidate with the
// collection's stored hash. Any failure counts as a mismatch.
func (e *Engine) VerifyCollectionPin(ctx context.Context, id, candidate string) bool {
	ok, err := e.verifyCollectionPin(ctx, id, candidate)
	return err == nil && ok
}

func (e *Engine) verifyCollectionPin(ctx context.Context, id, candidate string) (bool, error) {
	if strings.TrimSpace(candidate) == "" {
		e.notifier.Error("Please enter the collection PIN")
		return false, common.ErrEmptyPin
	}
	ok, err := e.gw.VerifyCollectionPin(ctx, id, candidate)
	if err != nil {
		e.failed(ctx, "Could not verify the PIN", err, "collection_id", id)
		return false, err
	}
	return ok, nil
}

// UnlockCollection verifies candidate for the collection awaiting a PIN.
// Unlock state only changes after the gateway has answered. A wrong PIN
// leaves the prompt open with no limit on further attempts.
func (e *Engine) UnlockCollection(ctx context.Context, id, candidate string) ([]*api.Image, error) {
	e.mu.Lock()
	if e.current != id || e.collections[id] != PromptingPin {
		e.mu.Unlock()
		return nil, common.ErrNoActiveCollectionPin
	}
	e.mu.Unlock()

	ok, err := e.verifyCollectionPin(ctx, id, candidate)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.notifier.Error("Incorrect PIN, please try again")
		return nil, common.ErrInvalidPin
	}

	e.mu.Lock()
	e.unlocked[id] = struct{}{}
	if e.current == id {
		e.collections[id] = Unlocked
	} else {
		e.collections[id] = LockedCached
	}
	e.mu.Unlock()

	e.notifier.Success("Collection unlocked")

	images, err := e.gw.ListImages(ctx, id)
	if err != nil {
		e.failed(ctx, "Could not load collection images", err, "collection_id", id)
		return nil, err
	}
	return images, nil
}

// LeaveCollection closes the selected collection.
func (e *Engine) LeaveCollection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leaveLocked()
}

func (e *Engine) leaveLocked() {
	if e.current == "" {
		return
	}
	switch e.collections[e.current] {
	case Unlocked:
		e.collections[e.current] = LockedCached
	case PromptingPin:
		e.collections[e.current] = Locked
	}
	e.current = ""
}
