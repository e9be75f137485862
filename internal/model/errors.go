package model

import "errors"

// Error kinds surfaced by the store and mapped to HTTP statuses in the API
// layer. Callers inspect them with errors.Is; store funcs wrap them with
// detail via fmt.Errorf and %w.
var (
	// ErrNotFound means a referenced item, movement, user or invitation
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a constraint violation: empty name, negative
	// quantity, missing required field, bad category/quantity combination.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock means a checkout asked for more than is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidState means an operation was attempted on a record in the
	// wrong lifecycle state, e.g. checking in a consumed movement.
	ErrInvalidState = errors.New("invalid state")

	// ErrForbidden means the caller is authenticated but its role is
	// insufficient for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized means there is no authenticated caller at all.
	ErrUnauthorized = errors.New("unauthorized")
)
