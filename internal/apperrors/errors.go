// Package apperrors defines the sentinel errors shared by the service
// layer. Handlers translate them into HTTP status codes; everything the
// store throws that is not one of these surfaces as a 500 without detail.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrValidation covers bad or missing input, including amounts out of
// bounds. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned when a user, plan, investment, deposit or
// withdrawal id cannot be resolved. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrStateConflict signals an operation against a record in the wrong
// state: reviewing a non-pending request, activating while already
// invested, deleting a plan with running investments. Handlers map it
// to 409.
var ErrStateConflict = errors.New("state conflict")

// ErrInsufficientFunds is returned by debits larger than the spendable
// balance. Handlers map it to 400.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnauthorized covers privilege violations such as blocking an admin.
// Handlers map it to 403.
var ErrUnauthorized = errors.New("unauthorized")

// Validationf wraps ErrValidation with a caller-facing message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with the entity that failed to resolve.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrStateConflict with a caller-facing message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrStateConflict}, args...)...)
}
