package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/auth"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = TokenSettings{Secret: []byte("k"), AccessValidity: time.Hour, RefreshValidity: 2 * time.Hour}

func newUserService(t *testing.T) (*UserService, *fakeRepoManager, *recordingPublisher) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	pub := &recordingPublisher{}
	return NewUserService(db, rm, testTokens, pub, logging.Nop{}), rm, pub
}

func TestSignUp_CreatesUserAndTokens(t *testing.T) {
	s, rm, pub := newUserService(t)

	res, err := s.SignUp(context.Background(), " Alice@Example.com ", "pw", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, api.RoleUser, res.User.Role)
	assert.NotEqual(t, []byte("pw"), res.User.PasswordHash)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Contains(t, rm.refresh.tokens, res.Tokens.RefreshToken)

	id, err := auth.ParseToken(res.Tokens.AccessToken, testTokens.Secret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, api.RoleUser, id.Role)

	assert.Equal(t, api.ChangeEvent{Table: "users", Type: api.EventInsert, RowID: res.User.ID}, withoutTime(pub.last()))
}

func TestSignUp_Validation(t *testing.T) {
	s, _, _ := newUserService(t)

	_, err := s.SignUp(context.Background(), "", "pw", "")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.SignUp(context.Background(), "a@x.io", "", "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestSignUp_Duplicate(t *testing.T) {
	s, _, _ := newUserService(t)

	_, err := s.SignUp(context.Background(), "a@x.io", "pw", "")
	require.NoError(t, err)

	_, err = s.SignUp(context.Background(), "a@x.io", "pw2", "")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSignIn(t *testing.T) {
	s, _, _ := newUserService(t)
	_, err := s.SignUp(context.Background(), "a@x.io", "right", "")
	require.NoError(t, err)

	res, err := s.SignIn(context.Background(), "A@x.io", "right")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = s.SignIn(context.Background(), "a@x.io", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.SignIn(context.Background(), "ghost@x.io", "right")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestCreateAdmin(t *testing.T) {
	s, _, _ := newUserService(t)

	u, err := s.CreateAdmin(context.Background(), "boss@x.io", "pw", "Boss")
	require.NoError(t, err)
	assert.Equal(t, api.RoleAdmin, u.Role)

	res, err := s.SignIn(context.Background(), "boss@x.io", "pw")
	require.NoError(t, err)
	id, err := auth.ParseToken(res.Tokens.AccessToken, testTokens.Secret)
	require.NoError(t, err)
	assert.Equal(t, api.RoleAdmin, id.Role)
}

func TestRefreshToken_Rotates(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := NewUserService(db, rm, testTokens, nil, logging.Nop{})

	u, err := rm.users.Create(context.Background(), &models.User{Email: "a@x.io", Role: api.RoleUser})
	require.NoError(t, err)
	require.NoError(t, rm.refresh.Create(context.Background(), u.ID, "old", time.Minute))

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := s.RefreshToken(context.Background(), "old")
	require.NoError(t, err)
	assert.NotEqual(t, "old", res.Tokens.RefreshToken)
	assert.NotContains(t, rm.refresh.tokens, "old")
	assert.Contains(t, rm.refresh.tokens, res.Tokens.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Errors(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		s, _, _ := newUserService(t)
		_, err := s.RefreshToken(context.Background(), "nope")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		s, rm, _ := newUserService(t)
		rm.refresh.tokens["old"] = &models.RefreshToken{UserID: "u-1", Expires: time.Now().Add(-time.Second)}
		_, err := s.RefreshToken(context.Background(), "old")
		require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	})

	t.Run("consume fails rolls back", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		rm := newFakeRepoManager()
		rm.refresh.tokens["old"] = &models.RefreshToken{UserID: "u-1", Expires: time.Now().Add(time.Minute)}
		rm.refresh.consumeErr = errors.New("db down")
		s := NewUserService(db, rm, testTokens, nil, logging.Nop{})

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.RefreshToken(context.Background(), "old")
		require.ErrorContains(t, err, "db down")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user deleted", func(t *testing.T) {
		db, mock := newSQLMockDB(t)
		rm := newFakeRepoManager()
		rm.refresh.tokens["old"] = &models.RefreshToken{UserID: "gone", Expires: time.Now().Add(time.Minute)}
		s := NewUserService(db, rm, testTokens, nil, logging.Nop{})

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.RefreshToken(context.Background(), "old")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

func TestDeleteUser_Announces(t *testing.T) {
	s, rm, pub := newUserService(t)
	u, err := rm.users.Create(context.Background(), &models.User{Email: "a@x.io"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(context.Background(), u.ID))
	assert.Equal(t, api.ChangeEvent{Table: "users", Type: api.EventDelete, RowID: u.ID}, withoutTime(pub.last()))

	require.ErrorIs(t, s.DeleteUser(context.Background(), u.ID), common.ErrorNotFound)
}

func TestUsers_MalformedIDsAreValidationErrors(t *testing.T) {
	s, _, pub := newUserService(t)

	_, err := s.GetUser(context.Background(), "abc")
	require.ErrorIs(t, err, common.ErrorValidation)
	require.ErrorIs(t, s.DeleteUser(context.Background(), "abc"), common.ErrorValidation)
	assert.Empty(t, pub.events)
}

func TestDeleteUser_PublishFailureIsNotFatal(t *testing.T) {
	s, rm, pub := newUserService(t)
	pub.err = errors.New("relay down")
	u, _ := rm.users.Create(context.Background(), &models.User{Email: "a@x.io"})

	require.NoError(t, s.DeleteUser(context.Background(), u.ID))
}

func TestPurgeExpiredTokens(t *testing.T) {
	s, rm, _ := newUserService(t)
	rm.refresh.tokens["a"] = &models.RefreshToken{Expires: time.Now().Add(-time.Minute)}
	rm.refresh.tokens["b"] = &models.RefreshToken{Expires: time.Now().Add(time.Minute)}

	n, err := s.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, rm.refresh.tokens, "b")
}

func withoutTime(ev api.ChangeEvent) api.ChangeEvent {
	ev.At = time.Time{}
	return ev
}
