// Package common defines shared constants and sentinel errors used across
// accountd components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorInactiveAccount is folded into the generic login failure at the API
	// boundary; it exists as a distinct value so the audit log can name it.
	ErrorInactiveAccount = errors.New("account is inactive")

	// Token lifecycle errors. ErrInvalidToken is the umbrella value; the
	// specific reasons below wrap it, so errors.Is(err, ErrInvalidToken)
	// matches any of them.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = fmt.Errorf("malformed token: %w", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("token expired: %w", ErrInvalidToken)
	ErrTokenRevoked   = fmt.Errorf("token revoked: %w", ErrInvalidToken)
)
