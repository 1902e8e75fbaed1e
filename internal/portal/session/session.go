// Package session holds the portal's current identity. It follows gateway
// auth events and the realtime deletion of the signed-in user's row, and
// asks the views to go back to sign-in when the identity goes away.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/dmitrijs2005/photoportal/internal/portal/client"
)

type View int

const (
	ViewSignIn View = iota
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewSignIn:
		return "sign-in"
	case ViewDashboard:
		return "dashboard"
	}
	return "unknown"
}

// NavigateTo is a command for the presentation layer.
type NavigateTo struct {
	View View
}

// State is a snapshot of the holder.
type State struct {
	Identity *client.Identity
	Role     string
	Loading  bool
}

type Holder struct {
	gw     client.Gateway
	logger logging.Logger
	nav    chan NavigateTo

	mu        sync.Mutex
	state     State
	watching  string
	unsubAuth func()
	unsubRow  func()
}

func NewHolder(gw client.Gateway, l logging.Logger) *Holder {
	return &Holder{
		gw:     gw,
		logger: l.With("module", "session"),
		nav:    make(chan NavigateTo, 1),
		state:  State{Loading: true},
	}
}

func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Navigation delivers NavigateTo commands. Commands are dropped while an
// earlier one is still unread.
func (h *Holder) Navigation() <-chan NavigateTo {
	return h.nav
}

// Init subscribes to auth changes and loads the current session. The
// subscription is made first so a sign-in racing the fetch is not lost.
func (h *Holder) Init(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	unsub := h.gw.OnAuthStateChange(func(ev client.AuthEvent) {
		h.onAuthEvent(ctx, ev)
	})
	h.mu.Lock()
	h.unsubAuth = unsub
	h.mu.Unlock()

	id, err := h.gw.GetSession(ctx)
	if err != nil {
		h.logger.Error(ctx, "Failed to load session", "error", err)
		h.mu.Lock()
		h.state.Loading = false
		h.mu.Unlock()
		return err
	}

	if id == nil {
		h.mu.Lock()
		h.state.Loading = false
		h.mu.Unlock()
		return nil
	}

	h.setIdentity(ctx, id)
	return nil
}

// Teardown drops both subscriptions. It is safe to call more than once.
func (h *Holder) Teardown() {
	h.mu.Lock()
	unsubAuth, unsubRow := h.unsubAuth, h.unsubRow
	h.unsubAuth, h.unsubRow, h.watching = nil, nil, ""
	h.mu.Unlock()

	if unsubAuth != nil {
		unsubAuth()
	}
	if unsubRow != nil {
		unsubRow()
	}
}

func (h *Holder) onAuthEvent(ctx context.Context, ev client.AuthEvent) {
	switch ev.Type {
	case client.AuthSignedIn, client.AuthTokenRefreshed:
		if ev.Identity != nil {
			h.setIdentity(ctx, ev.Identity)
		}
	case client.AuthSignedOut:
		h.revoke(ctx, "")
	}
}

// setIdentity records id and watches its users row. Setting the identity
// that is already held only clears Loading.
func (h *Holder) setIdentity(ctx context.Context, id *client.Identity) {
	h.mu.Lock()
	h.state.Loading = false
	if h.state.Identity != nil && h.state.Identity.UserID == id.UserID {
		h.state.Identity, h.state.Role = id, id.Role
		h.mu.Unlock()
		return
	}
	h.state.Identity, h.state.Role = id, id.Role
	old := h.unsubRow
	h.unsubRow, h.watching = nil, id.UserID
	h.mu.Unlock()

	if old != nil {
		old()
	}

	unsub, err := h.gw.OnRowDeleted(ctx, common.TableUsers, id.UserID, func(rowID string) {
		h.onRowDeleted(ctx, rowID)
	})
	if err != nil {
		h.logger.Warn(ctx, "Failed to watch account deletion", "user_id", id.UserID, "error", err)
		return
	}

	h.mu.Lock()
	if h.watching == id.UserID && h.unsubRow == nil {
		h.unsubRow = unsub
		unsub = nil
	}
	h.mu.Unlock()

	// The identity changed while subscribing.
	if unsub != nil {
		unsub()
	}
}

func (h *Holder) onRowDeleted(ctx context.Context, rowID string) {
	if !h.revoke(ctx, rowID) {
		return
	}
	h.logger.Info(ctx, "Account removed, signing out", "user_id", rowID)
	if err := h.gw.SignOut(ctx); err != nil {
		h.logger.Warn(ctx, "Sign out failed", "error", err)
	}
}

// revoke clears the identity and requests the sign-in view. With a non-empty
// userID only that identity is cleared. It reports whether anything changed.
func (h *Holder) revoke(ctx context.Context, userID string) bool {
	h.mu.Lock()
	h.state.Loading = false
	cur := h.state.Identity
	if cur == nil || (userID != "" && cur.UserID != userID) {
		h.mu.Unlock()
		return false
	}
	h.state.Identity, h.state.Role = nil, ""
	unsub := h.unsubRow
	h.unsubRow, h.watching = nil, ""
	h.mu.Unlock()

	if unsub != nil {
		unsub()
	}

	h.logger.Debug(ctx, "Identity cleared", "user_id", cur.UserID)
	select {
	case h.nav <- NavigateTo{View: ViewSignIn}:
	default:
	}
	return true
}
