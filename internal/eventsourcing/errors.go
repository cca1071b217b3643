package eventsourcing

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamNotFound is returned when a stream has never been written to.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrUnregisteredEvent is returned when appending an event whose type
	// has no wire name in the registry.
	ErrUnregisteredEvent = errors.New("event type not registered")
)

// InvalidStateTransitionError reports a business rule violated while applying
// an event to an aggregate.
type InvalidStateTransitionError struct {
	Aggregate Aggregate
	Event     Event
	Message   string
	// Field names the offending input field, empty when not attributable.
	Field string
}

// NewInvalidStateTransition builds an InvalidStateTransitionError.
func NewInvalidStateTransition(agg Aggregate, event Event, message string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Aggregate: agg, Event: event, Message: message}
}

// WithField tags the error with the offending field.
func (e *InvalidStateTransitionError) WithField(field string) *InvalidStateTransitionError {
	e.Field = field
	return e
}

func (e *InvalidStateTransitionError) Error() string {
	return e.Message
}

// ConcurrencyError is returned by Append when another writer advanced the
// stream after the aggregate was loaded.
type ConcurrencyError struct {
	Aggregate       Aggregate
	Event           Event
	ExpectedVersion uint64
	ActualVersion   uint64
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrency conflict: expected version %d, actual version %d",
		e.ExpectedVersion, e.ActualVersion)
}

// TransportError wraps a failure talking to the log.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("event log %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// WrongExpectedRevisionError is returned by a Log when the append
// precondition does not match the stream head.
type WrongExpectedRevisionError struct {
	Stream   string
	Expected ExpectedRevision
	// Actual is the current revision of the last event; meaningless when
	// StreamExists is false.
	Actual       uint64
	StreamExists bool
}

func (e *WrongExpectedRevisionError) Error() string {
	if !e.StreamExists {
		return fmt.Sprintf("stream %s: expected revision %s, stream does not exist", e.Stream, e.Expected)
	}
	return fmt.Sprintf("stream %s: expected revision %s, actual %d", e.Stream, e.Expected, e.Actual)
}
