package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidTransition is returned when a state machine rejects a move.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrNoUsableInput marks runs that cannot produce any meaningful partial result.
	ErrNoUsableInput = errors.New("no usable input")
)
