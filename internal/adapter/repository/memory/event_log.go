// Package memory provides in-process implementations of the event log and
// the projection store. Data lives only as long as the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

// EventLog is an in-memory eventsourcing.Log.
type EventLog struct {
	mu       sync.Mutex
	events   []eventsourcing.RawEvent
	streams  map[string][]int
	eventIDs map[string]struct{}
	appended chan struct{}
	now      func() time.Time
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{
		streams:  make(map[string][]int),
		eventIDs: make(map[string]struct{}),
		appended: make(chan struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Append implements eventsourcing.Log.
func (l *EventLog) Append(ctx context.Context, stream string, expected eventsourcing.ExpectedRevision, events ...eventsourcing.ProposedEvent) ([]eventsourcing.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	indexes := l.streams[stream]
	if !revisionMatches(expected, len(indexes)) {
		return nil, conflict(stream, expected, len(indexes))
	}
	for _, e := range events {
		if _, ok := l.eventIDs[e.EventID]; ok && e.EventID != "" {
			return nil, conflict(stream, expected, len(indexes))
		}
	}

	now := l.now()
	written := make([]eventsourcing.RawEvent, 0, len(events))
	for _, e := range events {
		raw := eventsourcing.RawEvent{
			EventID:        e.EventID,
			Type:           e.Type,
			Data:           append([]byte(nil), e.Data...),
			StreamName:     stream,
			StreamRevision: uint64(len(l.streams[stream])),
			Position:       uint64(len(l.events) + 1),
			CreatedAt:      now,
		}
		l.streams[stream] = append(l.streams[stream], len(l.events))
		l.events = append(l.events, raw)
		if e.EventID != "" {
			l.eventIDs[e.EventID] = struct{}{}
		}
		written = append(written, raw)
	}

	if len(written) > 0 {
		close(l.appended)
		l.appended = make(chan struct{})
	}

	return written, nil
}

// ReadStream implements eventsourcing.Log.
func (l *EventLog) ReadStream(ctx context.Context, stream string, from uint64, limit int) ([]eventsourcing.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	indexes, ok := l.streams[stream]
	if !ok {
		return nil, eventsourcing.ErrStreamNotFound
	}

	var out []eventsourcing.RawEvent
	for i := from; i < uint64(len(indexes)) && len(out) < limit; i++ {
		out = append(out, l.events[indexes[i]])
	}
	return out, nil
}

// ReadAll implements eventsourcing.Log.
func (l *EventLog) ReadAll(ctx context.Context, after uint64, limit int) ([]eventsourcing.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []eventsourcing.RawEvent
	for i := after; i < uint64(len(l.events)) && len(out) < limit; i++ {
		out = append(out, l.events[i])
	}
	return out, nil
}

// WaitForAppend implements eventsourcing.Log.
func (l *EventLog) WaitForAppend(ctx context.Context, after uint64) error {
	for {
		l.mu.Lock()
		head := uint64(len(l.events))
		appended := l.appended
		l.mu.Unlock()

		if head > after {
			return nil
		}

		select {
		case <-appended:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Head returns the global position of the last event.
func (l *EventLog) Head() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(len(l.events))
}

func conflict(stream string, expected eventsourcing.ExpectedRevision, length int) *eventsourcing.WrongExpectedRevisionError {
	wrong := &eventsourcing.WrongExpectedRevisionError{
		Stream:   stream,
		Expected: expected,
	}
	if length > 0 {
		wrong.Actual = uint64(length - 1)
		wrong.StreamExists = true
	}
	return wrong
}

func revisionMatches(expected eventsourcing.ExpectedRevision, length int) bool {
	if expected == eventsourcing.NoStream {
		return length == 0
	}
	return length > 0 && uint64(expected) == uint64(length-1)
}
