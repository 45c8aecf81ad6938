// Package common defines shared constants and sentinel errors used across
// client and server layers of outreach. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrStore      = errors.New("store error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("not authenticated")

	// Registration / login errors. Messages are user facing.
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Password hasher input errors (empty or longer than 72 bytes).
	ErrInvalidInput = errors.New("invalid password input")

	// Session cookie could not be decoded or its signature did not verify.
	ErrDecode = errors.New("malformed session")
)

// ValidationError reports a request that is missing required fields or
// carries a field in the wrong shape. It matches ErrValidation via errors.Is.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	if e.Reason != "" {
		return e.Reason
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingFields returns a ValidationError listing the names whose values are
// empty, or nil when every value is present. Pairs are name, value. Values
// are not trimmed; callers trim the fields where whitespace is not content.
func MissingFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing}
}
