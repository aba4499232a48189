// Package common contains sentinel errors and small shared helpers used
// across server components.
package common

import (
	"errors"
	"fmt"
)

var (
	// repository specific errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// service specific errors
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Refresh-token failure taxonomy. The three kinds are distinguished for
// diagnostics but each unwraps to ErrUnauthorized, so the HTTP layer maps
// all of them to a single 401 without leaking token state.
var (
	ErrTokenInvalid = fmt.Errorf("%w: unknown refresh token", ErrUnauthorized)
	ErrTokenRevoked = fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
)
