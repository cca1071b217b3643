// Package eventsourcing contains the client side of the event log: the event
// registry, stream naming, append with optimistic concurrency, stream replay
// and the catch-up/live subscription over the global log.
package eventsourcing

import "time"

// Metadata is carried by every event. EventID is assigned by the writer,
// EventDateTime by the log when the event is appended.
type Metadata struct {
	EventID       string    `json:"-"`
	EventDateTime time.Time `json:"-"`
}

// Meta returns the metadata so embedding types satisfy Event.
func (m *Metadata) Meta() *Metadata {
	return m
}

// Event is a domain event. Concrete events embed Metadata and serialize
// their payload as JSON.
type Event interface {
	Meta() *Metadata
	// AggregateID is the identifier of the entity owning the event's stream.
	AggregateID() string
}

// RecordedEvent is an event as read back from the log.
// Event is nil when the wire type is unknown to the registry or the payload
// could not be decoded; consumers skip such records.
type RecordedEvent struct {
	Event          Event
	Type           string
	StreamName     string
	StreamRevision uint64
	Position       uint64
}
