package common

import (
	"errors"
	"fmt"
)

// Error kinds. Callers should match them with errors.Is; every
// operation-specific error below wraps exactly one kind.
var (
	ErrorNotFound              = errors.New("not found")
	ErrorInternal              = errors.New("internal error")
	ErrorUnauthenticated       = errors.New("unauthenticated")
	ErrorForbidden             = errors.New("forbidden")
	ErrorConflict              = errors.New("conflict")
	ErrorInvalidInput          = errors.New("invalid input")
	ErrorInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// Token errors returned by the session token service.
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrMissingSigningSecret = errors.New("signing secret is not configured")
)

// Operation-specific errors.
var (
	ErrUserNotFound       = fmt.Errorf("no such user found: %w", ErrorNotFound)
	ErrDuplicateEmail     = fmt.Errorf("email already registered: %w", ErrorConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid password: %w", ErrorUnauthenticated)
	ErrLoginRequired      = fmt.Errorf("you must be logged in: %w", ErrorUnauthenticated)
	ErrPasswordMismatch   = fmt.Errorf("passwords don't match: %w", ErrorInvalidInput)
	ErrUnknownPermission  = fmt.Errorf("unknown permission: %w", ErrorInvalidInput)
	ErrResetTokenInvalid  = fmt.Errorf("reset token is either invalid or expired: %w", ErrorInvalidOrExpiredToken)
	ErrItemNotFound       = fmt.Errorf("no item found: %w", ErrorNotFound)
	ErrCartItemNotFound   = fmt.Errorf("no cart item found: %w", ErrorNotFound)
	ErrNotificationFailed = errors.New("notification delivery failed")
)
