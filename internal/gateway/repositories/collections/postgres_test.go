package collections

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+collections\s*\(title,\s*description,\s*pin_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at$`
	mock.ExpectQuery(q).
		WithArgs("Wedding", "June", "$argon2id$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c-1", time.Now()))

	got, err := repo.Create(context.Background(), &models.Collection{Title: "Wedding", Description: "June", PinHash: "$argon2id$hash"})
	require.NoError(t, err)
	assert.Equal(t, "c-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_OmitsPinHash(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*title,\s*description,\s*created_at\s+FROM\s+collections\s+ORDER\s+BY\s+created_at\s+DESC$`
	mock.ExpectQuery(q).WillReturnRows(
		sqlmock.NewRows([]string{"id", "title", "description", "created_at"}).
			AddRow("c-2", "Portraits", "", time.Now()).
			AddRow("c-1", "Wedding", "June", time.Now()))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c-2", got[0].ID)
	for _, c := range got {
		assert.Empty(t, c.PinHash)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	require.ErrorContains(t, err, "db error: db down")
}

func TestPinHash(t *testing.T) {
	q := `(?s)^SELECT\s+pin_hash\s+FROM\s+collections\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("c-1").WillReturnRows(sqlmock.NewRows([]string{"pin_hash"}).AddRow("h"))

		got, err := repo.PinHash(context.Background(), "c-1")
		require.NoError(t, err)
		assert.Equal(t, "h", got)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("c-9").WillReturnError(sql.ErrNoRows)

		_, err := repo.PinHash(context.Background(), "c-9")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestSetPinHash(t *testing.T) {
	q := `(?s)^UPDATE\s+collections\s+SET\s+pin_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("updated", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("c-1", "h2").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SetPinHash(context.Background(), "c-1", "h2"))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("c-1", "h2").WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.SetPinHash(context.Background(), "c-1", "h2"), common.ErrorNotFound)
	})
}
