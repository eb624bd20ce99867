package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession occurs when an operation needs an authenticated session.
	ErrNoSession = errors.New("no authenticated session")
)
