// Package services holds the gateway's business logic: accounts and tokens,
// the collection and image catalog, purchase requests and the global
// download PIN. Every row change is announced on the realtime publisher.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/cryptox"
	"github.com/dmitrijs2005/photoportal/internal/dbx"
	"github.com/dmitrijs2005/photoportal/internal/gateway/auth"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/repositories/repomanager"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by sign-up, sign-in and refresh.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// TokenSettings configures token minting.
type TokenSettings struct {
	Secret          []byte
	AccessValidity  time.Duration
	RefreshValidity time.Duration
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenSettings
	events      realtime.Publisher
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ts TokenSettings, p realtime.Publisher, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      ts,
		events:      p,
		logger:      l.With("module", "user_service"),
	}
}

// SignUp creates a regular user and signs them in.
func (s *UserService) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	u, err := s.create(ctx, email, password, name, api.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u, s.db)
}

// CreateAdmin creates a user with the admin role. It does not sign in.
func (s *UserService) CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.create(ctx, email, password, name, api.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, email, password, name, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.publish(ctx, common.TableUsers, api.EventInsert, u.ID)
	return u, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.CheckPassword(u.PasswordHash, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}
	return s.issue(ctx, u, s.db)
}

// RefreshToken consumes refreshToken and mints a new pair in one
// transaction. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		u, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}
		result, err = s.issue(ctx, u, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := checkID("user", id); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// DeleteUser removes the account and announces the deletion so any open
// session for it is revoked.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := checkID("user", id); err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, common.TableUsers, api.EventDelete, id)
	return nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

func (s *UserService) issue(ctx context.Context, u *models.User, tx dbx.DBTX) (*AuthResult, error) {
	access, err := auth.GenerateToken(auth.Identity{UserID: u.ID, Role: u.Role}, s.tokens.Secret, s.tokens.AccessValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, u.ID, refresh, s.tokens.RefreshValidity); err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: u, Tokens: TokenPair{AccessToken: access, RefreshToken: refresh}}, nil
}

func (s *UserService) publish(ctx context.Context, table, typ, id string) {
	announce(ctx, s.events, s.logger, table, typ, id)
}

// announce publishes a change event. Failures are logged: the row change
// has already been committed.
func announce(ctx context.Context, p realtime.Publisher, l logging.Logger, table, typ, id string) {
	if p == nil {
		return
	}
	ev := api.ChangeEvent{Table: table, Type: typ, RowID: id, At: time.Now()}
	if err := p.Publish(ctx, ev); err != nil {
		l.Error(ctx, "Publishing change event failed", "table", table, "type", typ, "row_id", id, "error", err)
	}
}

// checkID rejects ids that are not UUIDs before they reach the database.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid %s id %q", common.ErrorValidation, kind, id)
	}
	return nil
}
