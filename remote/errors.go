package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProperty is returned when a name is not part of the object's schema.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrClosed is returned by mutators after Close.
	ErrClosed = errors.New("remote object closed")

	// ErrUnconfirmed is reported through CommandFailed when an acknowledged
	// command is never observed in a status read before its deadline.
	ErrUnconfirmed = errors.New("command not confirmed by remote")
)

// ValidationError reports a value outside a property's declared domain.
// Local state is left untouched and nothing is dispatched.
type ValidationError struct {
	Property string
	Value    any
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Property, e.Reason)
}

// ImmutablePropertyError reports a write to a read-only property.
type ImmutablePropertyError struct {
	Property string
}

func (e *ImmutablePropertyError) Error() string {
	return fmt.Sprintf("property %s is read-only", e.Property)
}

// StaleCommandError describes a pending command superseded by a later local
// write or by a conflicting snapshot. It is logged, never returned to callers.
type StaleCommandError struct {
	Property string
	Command  string
	Seq      uint64
	Cause    string
}

func (e *StaleCommandError) Error() string {
	return fmt.Sprintf("stale command %s #%d for %s: %s", e.Command, e.Seq, e.Property, e.Cause)
}
