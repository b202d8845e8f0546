package models

import "errors"

// Error taxonomy shared by every session component. Callers match with errors.Is.
var (
	// ErrValidation is returned when input is rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned for unknown room codes or entity ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a command is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrForbidden is returned when a participant issues a host-only command.
	ErrForbidden = errors.New("forbidden")
)
