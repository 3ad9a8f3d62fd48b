// Package apperr defines the categorical errors shared by services,
// repositories and the HTTP layer. Callers classify failures with
// errors.Is and never branch on error strings.
package apperr

import "errors"

var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden maps to 403: authenticated but not permitted.
	ErrForbidden = errors.New("not authorized")
	// ErrUnauthenticated maps to 401.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrConflict maps to 409, typically a uniqueness violation.
	ErrConflict = errors.New("conflict")
)
