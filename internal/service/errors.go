// Package service provides the business logic for accounts, notes, tags and
// the shared-note access log, delegating persistence to repository interfaces.
package service

import "errors"

var (
	// ErrNotFound indicates the entity is absent or not visible to the
	// requester. The two cases are deliberately indistinguishable so that
	// the existence of other users' private notes does not leak.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the requester lacks ownership rights over a
	// resource it can see.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates a failed login. It never says which
	// of email or password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// fieldErrors accumulates validation messages and builds a ValidationError.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
