package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/eventsourcing"
	"github.com/iho/ledger-es/internal/infrastructure/postgres/generated"
)

const (
	// eventLogLockKey serializes appenders so global positions become
	// visible in commit order.
	eventLogLockKey int64 = 0x6c6564676572

	// AppendChannel is the LISTEN/NOTIFY channel signalled after each append.
	AppendChannel = "ledger_events"

	pgErrUniqueViolation = "23505"

	defaultPollInterval = time.Second
)

// notificationWaiter is a connection that has issued LISTEN.
type notificationWaiter interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

// EventLog implements eventsourcing.Log on the events table.
type EventLog struct {
	db           pgxPool
	listen       func(ctx context.Context) (notificationWaiter, error)
	pollInterval time.Duration
	logger       zerolog.Logger
}

// EventLogOption configures an EventLog.
type EventLogOption func(*EventLog)

// WithPollInterval bounds how long WaitForAppend sleeps between head checks.
func WithPollInterval(d time.Duration) EventLogOption {
	return func(l *EventLog) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithEventLogLogger sets the logger.
func WithEventLogLogger(logger zerolog.Logger) EventLogOption {
	return func(l *EventLog) {
		l.logger = logger
	}
}

// NewEventLog creates an EventLog that wakes subscribers through
// LISTEN/NOTIFY and falls back to polling.
func NewEventLog(pool *pgxpool.Pool, opts ...EventLogOption) *EventLog {
	l := newEventLogWithPool(pool, opts...)
	l.listen = func(ctx context.Context) (notificationWaiter, error) {
		return listenOn(ctx, pool)
	}
	return l
}

func newEventLogWithPool(db pgxPool, opts ...EventLogOption) *EventLog {
	l := &EventLog{
		db:           db,
		pollInterval: defaultPollInterval,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "event_log").Logger()
	return l
}

// Append implements eventsourcing.Log.
func (l *EventLog) Append(ctx context.Context, stream string, expected eventsourcing.ExpectedRevision, events ...eventsourcing.ProposedEvent) ([]eventsourcing.RawEvent, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	q := generated.New(tx)

	if err := q.LockEventLog(ctx, eventLogLockKey); err != nil {
		return nil, fmt.Errorf("lock event log: %w", err)
	}

	head, err := q.GetStreamHead(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("read stream head: %w", err)
	}
	if !revisionMatches(expected, head) {
		return nil, conflict(stream, expected, head)
	}

	written := make([]eventsourcing.RawEvent, 0, len(events))
	for i, e := range events {
		revision := head + 1 + int64(i)
		row, err := q.InsertEvent(ctx, generated.InsertEventParams{
			EventID:        e.EventID,
			StreamName:     stream,
			StreamRevision: revision,
			EventType:      e.Type,
			Data:           e.Data,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return nil, conflict(stream, expected, head)
			}
			return nil, fmt.Errorf("insert event: %w", err)
		}

		written = append(written, eventsourcing.RawEvent{
			EventID:        e.EventID,
			Type:           e.Type,
			Data:           e.Data,
			StreamName:     stream,
			StreamRevision: uint64(revision),
			Position:       uint64(row.GlobalPosition),
			CreatedAt:      row.CreatedAt.Time.UTC(),
		})
	}

	if len(written) > 0 {
		last := written[len(written)-1].Position
		if err := q.NotifyEventAppended(ctx, generated.NotifyEventAppendedParams{
			Channel: AppendChannel,
			Payload: strconv.FormatUint(last, 10),
		}); err != nil {
			return nil, fmt.Errorf("notify append: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	committed = true

	return written, nil
}

// ReadStream implements eventsourcing.Log.
func (l *EventLog) ReadStream(ctx context.Context, stream string, from uint64, limit int) ([]eventsourcing.RawEvent, error) {
	q := generated.New(l.db)

	rows, err := q.ReadStream(ctx, generated.ReadStreamParams{
		StreamName:     stream,
		StreamRevision: int64(from),
		Limit:          int32(limit),
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		exists, err := q.StreamExists(ctx, stream)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, eventsourcing.ErrStreamNotFound
		}
	}

	return rowsToRawEvents(rows), nil
}

// ReadAll implements eventsourcing.Log.
func (l *EventLog) ReadAll(ctx context.Context, after uint64, limit int) ([]eventsourcing.RawEvent, error) {
	rows, err := generated.New(l.db).ReadAll(ctx, generated.ReadAllParams{
		GlobalPosition: int64(after),
		Limit:          int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return rowsToRawEvents(rows), nil
}

// Head returns the global position of the last committed event.
func (l *EventLog) Head(ctx context.Context) (uint64, error) {
	head, err := generated.New(l.db).GetLogHead(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(head), nil
}

// WaitForAppend implements eventsourcing.Log.
func (l *EventLog) WaitForAppend(ctx context.Context, after uint64) error {
	var waiter notificationWaiter
	if l.listen != nil {
		w, err := l.listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn().Err(err).Msg("listen failed, falling back to polling")
		} else {
			waiter = w
			defer waiter.Release()
		}
	}

	for {
		head, err := l.Head(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if head > after {
			return nil
		}

		if waiter == nil {
			timer := time.NewTimer(l.pollInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, l.pollInterval)
		_, err = waiter.WaitForNotification(waitCtx)
		cancel()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !pgconn.Timeout(err) {
			return fmt.Errorf("wait for notification: %w", err)
		}
	}
}

type poolListener struct {
	conn *pgxpool.Conn
}

func listenOn(ctx context.Context, pool *pgxpool.Pool) (notificationWaiter, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+AppendChannel); err != nil {
		conn.Release()
		return nil, err
	}
	return &poolListener{conn: conn}, nil
}

func (p *poolListener) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return p.conn.Conn().WaitForNotification(ctx)
}

func (p *poolListener) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.conn.Exec(ctx, "UNLISTEN "+AppendChannel); err != nil {
		// Do not return a connection with a live LISTEN to the pool.
		_ = p.conn.Conn().Close(ctx)
	}
	p.conn.Release()
}

func rowsToRawEvents(rows []generated.Event) []eventsourcing.RawEvent {
	out := make([]eventsourcing.RawEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventsourcing.RawEvent{
			EventID:        row.EventID,
			Type:           row.EventType,
			Data:           row.Data,
			StreamName:     row.StreamName,
			StreamRevision: uint64(row.StreamRevision),
			Position:       uint64(row.GlobalPosition),
			CreatedAt:      row.CreatedAt.Time.UTC(),
		})
	}
	return out
}

// revisionMatches compares expected with the stream head, where head is -1
// for a stream without events.
func revisionMatches(expected eventsourcing.ExpectedRevision, head int64) bool {
	if expected == eventsourcing.NoStream {
		return head < 0
	}
	return head >= 0 && uint64(expected) == uint64(head)
}

func conflict(stream string, expected eventsourcing.ExpectedRevision, head int64) *eventsourcing.WrongExpectedRevisionError {
	wrong := &eventsourcing.WrongExpectedRevisionError{
		Stream:   stream,
		Expected: expected,
	}
	if head >= 0 {
		wrong.Actual = uint64(head)
		wrong.StreamExists = true
	}
	return wrong
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
