// Package cli is the portal's interactive front end. It stands in for the
// browser views: a read-eval-print loop with dashboard tabs, the gallery
// and collections views, download actions and admin tools.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/dmitrijs2005/photoportal/internal/portal/accessgate"
	"github.com/dmitrijs2005/photoportal/internal/portal/client"
	"github.com/dmitrijs2005/photoportal/internal/portal/config"
	"github.com/dmitrijs2005/photoportal/internal/portal/download"
	"github.com/dmitrijs2005/photoportal/internal/portal/notify"
	"github.com/dmitrijs2005/photoportal/internal/portal/session"
	"github.com/dmitrijs2005/photoportal/internal/portal/watermark"
)

// getSimpleText and getSecret point at the interactive input helpers and
// are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

type App struct {
	config   *config.Config
	gw       client.Gateway
	session  *session.Holder
	engine   *accessgate.Engine
	notifier *notify.Notifier
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	tab         Tab
	mode        ViewMode
	collections []*api.Collection
	listed      []*api.Image
	listing     listing
	requests    []*api.PurchaseRequest
	users       []*api.User
}

// NewApp connects to the gateway and assembles the portal.
func NewApp(c *config.Config, l logging.Logger) (*App, error) {
	gw, err := client.NewGRPCClient(c.GatewayEndpoint, c.GatewayKey, l)
	if err != nil {
		return nil, fmt.Errorf("gateway client: %w", err)
	}

	dl, err := download.New(c.DownloadsDir, &http.Client{Timeout: c.RequestTimeout}, l)
	if err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("downloads dir: %w", err)
	}

	r, err := watermark.New(c.WatermarkText)
	if err != nil {
		_ = gw.Close()
		return nil, err
	}

	return newApp(c, gw, dl, r, os.Stdin, os.Stdout, l), nil
}

func newApp(c *config.Config, gw client.Gateway, dl accessgate.Downloader, r accessgate.Renderer, in io.Reader, out io.Writer, l logging.Logger) *App {
	n := notify.New(out)
	return &App{
		config:  c,
		gw:      gw,
		session: session.NewHolder(gw, l),
		engine: accessgate.NewEngine(gw, dl, r, n, l, accessgate.Options{
			CollectionDelay: c.CollectionDownloadDelay,
			LinkTTL:         c.SignedURLTTL,
		}),
		notifier: n,
		logger:   l.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run loads the session and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.gw.Ping(ctx); err != nil {
		a.logger.Warn(ctx, "Gateway is not reachable", "error", err)
		a.notifier.Warning("Gateway is not reachable, retry once it is back")
	}

	if err := a.session.Init(ctx); err != nil {
		a.notifier.Error("Could not restore the session")
	}
	a.syncIdentity(ctx)

	printlnFn("Welcome to the portfolio portal (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) Close() {
	a.session.Teardown()
	if err := a.gw.Close(); err != nil {
		a.logger.Warn(context.Background(), "Closing gateway client", "error", err)
	}
}

func (a *App) identity() *client.Identity {
	return a.session.State().Identity
}

func (a *App) isSignedIn() bool {
	return a.identity() != nil
}

func (a *App) isAdmin() bool {
	return a.identity().IsAdmin()
}

// syncIdentity points the engine at the current identity and reloads the
// dashboard data.
func (a *App) syncIdentity(ctx context.Context) {
	id := a.identity()
	a.engine.SetUser(id)
	if id != nil {
		_ = a.engine.Refresh(ctx)
	}
}

// handleNavigation applies pending navigation commands from the session.
func (a *App) handleNavigation() {
	for {
		select {
		case nav := <-a.session.Navigation():
			if nav.View == session.ViewSignIn {
				a.engine.Reset()
				a.tab, a.mode = TabProfile, ModeGallery
				a.collections, a.listed, a.requests, a.users = nil, nil, nil, nil
				a.listing = listingNone
				a.notifier.Warning("You have been signed out, please sign in again")
			}
		default:
			return
		}
	}
}

func (a *App) status() string {
	s := "guest"
	if id := a.identity(); id != nil {
		s = id.Email
		if id.IsAdmin() {
			s += " admin"
		}
	}
	return fmt.Sprintf("(%s) [%s/%s]", s, a.tab, a.mode)
}

// fail logs a failed gateway call and shows msg to the user.
func (a *App) fail(ctx context.Context, msg string, err error) error {
	a.logger.Error(ctx, msg, "error", err)
	a.notifier.Error(msg + ": " + userMessage(err))
	return err
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "gateway unavailable"
	case err == nil:
		return ""
	}
	return err.Error()
}

func (a *App) requireSignIn() error {
	if !a.isSignedIn() {
		printlnFn("Please sign in first")
		return errNotSignedIn
	}
	return nil
}

func (a *App) requireAdmin() error {
	if !a.isAdmin() {
		printlnFn("This command is for admins only")
		return errNotAdmin
	}
	return nil
}

// listing records which view filled App.listed.
type listing int

const (
	listingNone listing = iota
	listingGallery
	listingCollection
)

var (
	errNotSignedIn = errors.New("not signed in")
	errNotAdmin    = errors.New("admin only")
	errBadArgument = errors.New("bad argument")
)
