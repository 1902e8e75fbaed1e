package gateway

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/photoportal/internal/gateway/config"
	"github.com/dmitrijs2005/photoportal/internal/gateway/services"
	"github.com/dmitrijs2005/photoportal/internal/gateway/storage"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopStore struct{ services.ObjectStore }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func stubSeams(t *testing.T, db *sql.DB, dbErr, storeErr error) {
	t.Helper()
	origDB, origStore := openDB, newObjectStore
	t.Cleanup(func() { openDB, newObjectStore = origDB, origStore })

	openDB = func(context.Context, string) (*sql.DB, error) { return db, dbErr }
	newObjectStore = func(context.Context, storage.Options) (services.ObjectStore, error) {
		return nopStore{}, storeErr
	}
}

func TestNewApp_DBError(t *testing.T) {
	stubSeams(t, nil, errors.New("connection refused"), nil)

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.ErrorContains(t, err, "db init error")
	require.ErrorContains(t, err, "connection refused")
}

func TestNewApp_StorageErrorClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	stubSeams(t, db, nil, errors.New("bad endpoint"))

	_, err = NewApp(context.Background(), testConfig(), logging.Nop{})
	require.ErrorContains(t, err, "storage init error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_WithoutRedisUsesHub(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	stubSeams(t, db, nil, nil)

	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.Nil(t, app.relay)
	assert.NotNil(t, app.userService)

	mock.ExpectClose()
	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_AggregatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose().WillReturnError(errors.New("close failed"))

	app := &App{db: db}
	require.ErrorContains(t, app.Close(), "close failed")
}

func TestRun_StopsOnCancel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	stubSeams(t, db, nil, nil)

	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRun_ReportsServerFailure(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	stubSeams(t, db, nil, nil)

	cfg := testConfig()
	cfg.EndpointAddrGRPC = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	select {
	case err := <-runAsync(app):
		require.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func runAsync(app *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	return done
}
