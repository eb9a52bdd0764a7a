package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operation outcomes the API distinguishes.
// Handlers map these to HTTP status codes; everything else is a 500.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a formatted reason.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Status is the confirmation body returned by mutating endpoints.
type Status struct {
	Message string `json:"message"`
}
