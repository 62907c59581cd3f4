package core

import (
	"errors"
)

var (
	// ErrTopologyInvalid marks a board candidate that failed the arity checks.
	ErrTopologyInvalid = errors.New("board topology invalid")
	// ErrPoolExhausted is returned when every splinter slot is in use.
	ErrPoolExhausted = errors.New("splinter pool exhausted")
	// ErrInvariantViolation signals corrupted mesh data or a programming error.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrUnknownGroup       = errors.New("unknown board group")
	ErrUnknownObject      = errors.New("unknown wood object")
	ErrDamageQueueFull    = errors.New("damage queue full")
	ErrUnknown            = errors.New("unknown")
)
