package eventsourcing

import (
	"context"
	"math"
	"strconv"
	"time"
)

// ExpectedRevision is the append precondition on a stream's current revision.
type ExpectedRevision uint64

// NoStream requires that the stream has no events yet.
const NoStream ExpectedRevision = math.MaxUint64

// ExpectedRevisionFor derives the append precondition from an aggregate
// version (the number of events in its stream when it was loaded).
func ExpectedRevisionFor(version uint64) ExpectedRevision {
	if version == 0 {
		return NoStream
	}
	return ExpectedRevision(version - 1)
}

func (r ExpectedRevision) String() string {
	if r == NoStream {
		return "no-stream"
	}
	return strconv.FormatUint(uint64(r), 10)
}

// ProposedEvent is an encoded event waiting to be appended.
type ProposedEvent struct {
	EventID string
	Type    string
	Data    []byte
}

// RawEvent is an encoded event stored in the log.
type RawEvent struct {
	EventID        string
	Type           string
	Data           []byte
	StreamName     string
	StreamRevision uint64
	// Position is the global position, starting at 1.
	Position  uint64
	CreatedAt time.Time
}

// Log is the durable, globally ordered append log.
type Log interface {
	// Append writes events to the end of a stream when its current revision
	// matches expected. A mismatch returns *WrongExpectedRevisionError.
	Append(ctx context.Context, stream string, expected ExpectedRevision, events ...ProposedEvent) ([]RawEvent, error)
	// ReadStream returns up to limit events of a stream starting at revision
	// from. ErrStreamNotFound is returned for a stream that was never written.
	ReadStream(ctx context.Context, stream string, from uint64, limit int) ([]RawEvent, error)
	// ReadAll returns up to limit events with a global position strictly
	// greater than after, in commit order.
	ReadAll(ctx context.Context, after uint64, limit int) ([]RawEvent, error)
	// WaitForAppend blocks until the log holds an event past position after.
	WaitForAppend(ctx context.Context, after uint64) error
}
