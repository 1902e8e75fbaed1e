package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/collections"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/downloadpin"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/images"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/purchases"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/refreshtokens"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/users"
)

// RepositoryManager vends repositories bound to a *sql.DB or an open *sql.Tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Collections(db dbx.DBTX) collections.Repository
	Images(db dbx.DBTX) images.Repository
	Purchases(db dbx.DBTX) purchases.Repository
	DownloadPin(db dbx.DBTX) downloadpin.Repository
}
