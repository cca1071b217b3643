package eventsourcing

import (
	"context"
	"fmt"
)

// Aggregate is state rebuilt by folding the events of one stream.
type Aggregate interface {
	// AggregateKind names the aggregate type; it drives stream naming.
	AggregateKind() string
	// CurrentVersion is the number of events applied so far.
	CurrentVersion() uint64
	// Apply validates the event against the current state and mutates the
	// state on success. It must leave the state untouched on error.
	Apply(Event) error
}

// AggregatePtr constrains P to be a pointer to T implementing Aggregate.
type AggregatePtr[T any] interface {
	*T
	Aggregate
}

// StreamReader reads one stream forward from its start.
type StreamReader interface {
	ReadStream(ctx context.Context, stream string) ([]RecordedEvent, error)
}

// Replay builds a fresh T and folds every event of stream into it in order.
// The returned version counts every record of the stream, including records
// that could not be decoded, so it can be used as an append precondition.
// When the stream does not exist the zero-value aggregate, version 0 and
// ErrStreamNotFound are returned.
func Replay[T any, P AggregatePtr[T]](ctx context.Context, r StreamReader, stream string) (P, uint64, error) {
	agg := P(new(T))

	records, err := r.ReadStream(ctx, stream)
	if err != nil {
		return agg, 0, err
	}

	var version uint64
	for _, rec := range records {
		version++
		if rec.Event == nil {
			continue
		}
		if err := agg.Apply(rec.Event); err != nil {
			return agg, version, fmt.Errorf("replay %s at revision %d: %w", stream, rec.StreamRevision, err)
		}
	}

	return agg, version, nil
}
