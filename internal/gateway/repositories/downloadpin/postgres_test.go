package downloadpin

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/photoportal/internal/common"
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

func TestGet(t *testing.T) {
	q := `^SELECT\s+pin\s+FROM\s+download_pin\s+WHERE\s+id$`

	t.Run("stored", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"pin"}).AddRow("4321"))

		pin, err := repo.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "4321", pin)
	})

	t.Run("unset", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background())
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(errors.New("down"))

		_, err := repo.Get(context.Background())
		require.ErrorContains(t, err, "db error: down")
	})
}

func TestSet_Upserts(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+download_pin\s*\(id,\s*pin,\s*updated_at\)\s*VALUES\s*\(TRUE,\s*\$1,\s*now\(\)\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE`
	mock.ExpectExec(q).WithArgs("9999").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), "9999"))
	require.NoError(t, mock.ExpectationsWereMet())
}
