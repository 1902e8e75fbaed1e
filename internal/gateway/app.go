// Package gateway assembles the backend gateway: PostgreSQL repositories,
// S3 object storage, the realtime hub with its optional Redis relay, the
// business services and the gRPC endpoint.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/config"
	gs "github.com/dmitrijs2005/photoportal/internal/gateway/grpc"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/repomanager"
	"github.com/dmitrijs2005/photoportal/internal/gateway/services"
	"github.com/dmitrijs2005/photoportal/internal/gateway/storage"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

// Seams for tests.
var (
	openDB         = dbx.OpenPostgres
	newObjectStore = func(ctx context.Context, o storage.Options) (services.ObjectStore, error) {
		return storage.NewS3Storage(ctx, o)
	}
	newRedisClient = realtime.NewRedisClient
)

// tokenPurgeInterval is how often expired refresh tokens are deleted.
var tokenPurgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *realtime.Hub
	rdb         *redis.Client
	relay       *realtime.RedisRelay

	userService     *services.UserService
	catalogService  *services.CatalogService
	purchaseService *services.PurchaseService
	settingsService *services.SettingsService
}

// NewApp connects to PostgreSQL, object storage and, when configured,
// Redis, and builds the services on top of them.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	app := &App{config: c, logger: l, repomanager: repomanager.NewPostgresRepositoryManager(), hub: realtime.NewHub(64)}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	store, err := newObjectStore(ctx, storage.Options{
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("storage init error: %w", err), app.Close())
	}

	var publisher realtime.Publisher = app.hub
	if c.RedisURL != "" {
		rdb, err := newRedisClient(ctx, c.RedisURL)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("redis init error: %w", err), app.Close())
		}
		app.rdb = rdb
		app.relay = realtime.NewRedisRelay(rdb, app.hub, l)
		publisher = app.relay
	}

	ts := services.TokenSettings{
		Secret:          []byte(c.SecretKey),
		AccessValidity:  c.AccessTokenValidityDuration,
		RefreshValidity: c.RefreshTokenValidityDuration,
	}
	app.userService = services.NewUserService(db, app.repomanager, ts, publisher, l)
	app.catalogService = services.NewCatalogService(db, app.repomanager, store, publisher, l)
	app.purchaseService = services.NewPurchaseService(db, app.repomanager, publisher, l)
	app.settingsService = services.NewSettingsService(db, app.repomanager, c.DefaultDownloadPin, publisher, l)

	return app, nil
}

// Migrate applies pending schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	app.logger.Info(ctx, "Migrations applied")
	return nil
}

// CreateAdmin seeds an administrator account.
func (app *App) CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	return app.userService.CreateAdmin(ctx, email, password, name)
}

// Close releases the database and Redis connections.
func (app *App) Close() error {
	var err error
	if app.rdb != nil {
		err = multierr.Append(err, app.rdb.Close())
	}
	if app.db != nil {
		err = multierr.Append(err, app.db.Close())
	}
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newGRPCServer() *gs.GRPCServer {
	return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, gs.Services{
		Users:     app.userService,
		Catalog:   app.catalogService,
		Purchases: app.purchaseService,
		Settings:  app.settingsService,
		Events:    app.hub,
	}, app.config.SecretKey, app.config.APIKey)
}

func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "Purging refresh tokens failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "Purged refresh tokens", "count", n)
		}
	}
}

// Run serves until SIGINT/SIGTERM or until ctx is done. A failing
// component stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	fail := func(err error) {
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.newGRPCServer().Run(ctx); err != nil {
			app.logger.Error(ctx, "gRPC server failed", "error", err)
			fail(err)
		}
	}()

	if app.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.relay.Run(ctx); err != nil && ctx.Err() == nil {
				app.logger.Error(ctx, "Realtime relay failed", "error", err)
				fail(err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return errs
}
