package eventsourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	defaultReadBatchSize = 500
)

// Client encodes events through a Registry and talks to a Log.
type Client struct {
	log       Log
	registry  *Registry
	logger    zerolog.Logger
	formats   map[string]string
	batchSize int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStreamNameFormat overrides the stream name of an aggregate kind. The
// format receives the aggregate id as its single %s argument.
func WithStreamNameFormat(kind, format string) ClientOption {
	return func(c *Client) {
		c.formats[kind] = format
	}
}

// WithBatchSize sets how many events are read per round trip.
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. The registry must not be modified afterwards.
func NewClient(log Log, registry *Registry, opts ...ClientOption) *Client {
	c := &Client{
		log:       log,
		registry:  registry,
		logger:    zerolog.Nop(),
		formats:   make(map[string]string),
		batchSize: defaultReadBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "eventlog_client").Logger()
	return c
}

// StreamNameFor returns the stream of an aggregate, "<kind>-<id>" in lower
// case unless a format was configured for the kind.
func (c *Client) StreamNameFor(kind, id string) string {
	if format, ok := c.formats[kind]; ok {
		return fmt.Sprintf(format, id)
	}
	return DefaultStreamName(kind, id)
}

// DefaultStreamName is the stream naming scheme used without overrides.
func DefaultStreamName(kind, id string) string {
	return strings.ToLower(kind) + "-" + id
}

// ReadStream reads a whole stream forward. Records that cannot be decoded
// are returned with a nil Event.
func (c *Client) ReadStream(ctx context.Context, stream string) ([]RecordedEvent, error) {
	var (
		out  []RecordedEvent
		from uint64
	)
	for {
		batch, err := c.log.ReadStream(ctx, stream, from, c.batchSize)
		if err != nil {
			if errors.Is(err, ErrStreamNotFound) {
				return nil, ErrStreamNotFound
			}
			return nil, &TransportError{Op: "read stream", Err: err}
		}
		for _, raw := range batch {
			out = append(out, c.decode(raw))
		}
		if len(batch) < c.batchSize {
			return out, nil
		}
		from = batch[len(batch)-1].StreamRevision + 1
	}
}

// Append writes event to stream. expectedVersion is the aggregate version
// read before the event was applied: zero means the stream must not exist
// yet, otherwise the stream must currently end at revision version-1.
// On success the event's EventDateTime is set from the log.
func (c *Client) Append(ctx context.Context, stream string, agg Aggregate, expectedVersion uint64, event Event) (RecordedEvent, error) {
	name, ok := c.registry.NameFor(event)
	if !ok {
		return RecordedEvent{}, fmt.Errorf("%w: %T", ErrUnregisteredEvent, event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return RecordedEvent{}, fmt.Errorf("encode %s: %w", name, err)
	}

	written, err := c.log.Append(ctx, stream, ExpectedRevisionFor(expectedVersion), ProposedEvent{
		EventID: event.Meta().EventID,
		Type:    name,
		Data:    data,
	})
	if err != nil {
		var wrong *WrongExpectedRevisionError
		if errors.As(err, &wrong) {
			actual := uint64(0)
			if wrong.StreamExists {
				actual = wrong.Actual + 1
			}
			return RecordedEvent{}, &ConcurrencyError{
				Aggregate:       agg,
				Event:           event,
				ExpectedVersion: expectedVersion,
				ActualVersion:   actual,
			}
		}
		return RecordedEvent{}, &TransportError{Op: "append", Err: err}
	}
	if len(written) != 1 {
		return RecordedEvent{}, &TransportError{Op: "append", Err: fmt.Errorf("log acknowledged %d events, want 1", len(written))}
	}

	raw := written[0]
	event.Meta().EventDateTime = raw.CreatedAt

	return RecordedEvent{
		Event:          event,
		Type:           name,
		StreamName:     raw.StreamName,
		StreamRevision: raw.StreamRevision,
		Position:       raw.Position,
	}, nil
}

func (c *Client) decode(raw RawEvent) RecordedEvent {
	rec := RecordedEvent{
		Type:           raw.Type,
		StreamName:     raw.StreamName,
		StreamRevision: raw.StreamRevision,
		Position:       raw.Position,
	}

	event, ok := c.registry.New(raw.Type)
	if !ok {
		c.logger.Warn().
			Str("event_type", raw.Type).
			Str("stream", raw.StreamName).
			Uint64("position", raw.Position).
			Msg("skipping event of unknown type")
		return rec
	}

	if err := json.Unmarshal(raw.Data, event); err != nil {
		c.logger.Warn().
			Err(err).
			Str("event_type", raw.Type).
			Str("stream", raw.StreamName).
			Uint64("position", raw.Position).
			Msg("skipping undecodable event")
		return rec
	}

	event.Meta().EventID = raw.EventID
	event.Meta().EventDateTime = raw.CreatedAt
	rec.Event = event
	return rec
}
