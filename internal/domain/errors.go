package domain

import (
	"errors"
	"strings"
)

var (
	// ErrUserNotFound is returned by user lookups when no record exists
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput marks a request rejected at the boundary
	ErrInvalidInput = errors.New("invalid request")

	// ErrCircuitOpen is returned when a collaborator's breaker is open
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrDataStoreUnavailable is returned when an assessment cannot read user data at all
	ErrDataStoreUnavailable = errors.New("data store unavailable")
)

// ValidationError lists every problem found in a request
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
