package entities

import "errors"

// Error kinds surfaced by the store. Callers distinguish outcomes with
// errors.Is; none of these are retried internally since they are
// deterministic functions of input and current state.
var (
	// ErrValidation indicates malformed or type-mismatched input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates an absent entity, relationship, or collection.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate key within a collection on create.
	ErrConflict = errors.New("key already exists")

	// ErrReference indicates a relationship endpoint that does not exist.
	ErrReference = errors.New("referenced entity not found")

	// ErrPermissionDenied indicates the actor satisfies none of the
	// owner/read/write rules for the requested operation.
	ErrPermissionDenied = errors.New("permission denied")
)
