package domain

import "errors"

// The two error kinds that originate inside the application core. Everything
// else is a collaborator failure and gets wrapped on its way up.
var (
	// ErrInvalidInput marks input rejected at a service boundary
	// (empty message text, out-of-range mood intensity, ...). The
	// operation had no effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup by identifier that resolved nothing.
	ErrNotFound = errors.New("not found")
)
