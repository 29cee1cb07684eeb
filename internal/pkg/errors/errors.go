// Package errors holds the sentinels that the HTTP layer maps to status
// codes. Wrap them with fmt.Errorf("...: %w", ...) or implement Is on typed
// errors; never compare messages.
package errors

import "errors"

var (
	// ErrNotFound: unknown cohort, CDM variable or import job. 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: missing or wrong Basic credentials. 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument: malformed uploads, missing columns, empty requests. 400.
	ErrInvalidArgument = errors.New("invalid argument")
)
