package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidAPIKey       = errors.New("invalid api key")

	// Gated access errors.
	ErrInvalidPin            = errors.New("invalid pin")
	ErrEmptyPin              = errors.New("pin is required")
	ErrCollectionLocked      = errors.New("collection is locked")
	ErrPremiumNotApproved    = errors.New("premium download not approved")
	ErrInvalidStatus         = errors.New("invalid purchase request status")
	ErrStatusTransition      = errors.New("purchase request status cannot change")
	ErrNoActiveDownloadFlow  = errors.New("no download awaiting a pin")
	ErrNoActiveCollectionPin = errors.New("collection is not awaiting a pin")
)
