package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Repository when no mapping matches the lookup.
	ErrNotFound = errors.New("short url not found")

	// ErrCodeConflict is returned by a Repository when the short code is already taken.
	ErrCodeConflict = errors.New("short code already exists")

	// ErrRetryExhausted is returned when every generated code collided with an existing one.
	ErrRetryExhausted = errors.New("failed to generate unique short code after maximum retries")
)

// InvalidInputError reports a malformed or disallowed URL or short code.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// NotFoundError reports a lookup for a code that has no mapping.
type NotFoundError struct {
	Code Code
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("url not found for short code: %s", e.Code)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// PersistenceError wraps a repository failure the service does not act on.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
