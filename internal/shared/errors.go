package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account exists but is disabled.
	ErrInactiveAccount = errors.New("account inactive")
	// ErrTokenRevoked occurs when a bearer token was logged out.
	ErrTokenRevoked = errors.New("token revoked")
)
