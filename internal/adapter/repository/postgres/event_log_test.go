package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

var eventColumns = []string{"global_position", "event_id", "stream_name", "stream_revision", "event_type", "data", "created_at"}

func expectAppendPrelude(mock pgxmock.PgxPoolIface, stream string, head int64) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs(eventLogLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(stream_revision)")).
		WithArgs(stream).
		WillReturnRows(pgxmock.NewRows([]string{"revision"}).AddRow(head))
}

func TestEventLogAppendNewStream(t *testing.T) {
	mock := newMockPool(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	expectAppendPrelude(mock, "ledger-1", -1)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("e1", "ledger-1", int64(0), "LedgerOpened", []byte(`{"ledgerId":"1"}`)).
		WillReturnRows(pgxmock.NewRows([]string{"global_position", "created_at"}).AddRow(int64(41), created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("e2", "ledger-1", int64(1), "LedgerClosed", []byte(`{}`)).
		WillReturnRows(pgxmock.NewRows([]string{"global_position", "created_at"}).AddRow(int64(42), created))
	mock.ExpectExec(regexp.QuoteMeta("pg_notify")).
		WithArgs(AppendChannel, "42").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectCommit()

	log := newEventLogWithPool(mock)
	written, err := log.Append(context.Background(), "ledger-1", eventsourcing.NoStream,
		eventsourcing.ProposedEvent{EventID: "e1", Type: "LedgerOpened", Data: []byte(`{"ledgerId":"1"}`)},
		eventsourcing.ProposedEvent{EventID: "e2", Type: "LedgerClosed", Data: []byte(`{}`)},
	)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 events, got %d", len(written))
	}
	if written[1].StreamRevision != 1 || written[1].Position != 42 {
		t.Fatalf("unexpected second event: %+v", written[1])
	}
	if !written[0].CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, written[0].CreatedAt)
	}

	assertExpectations(t, mock)
}

func TestEventLogAppendWrongExpectedRevision(t *testing.T) {
	mock := newMockPool(t)

	expectAppendPrelude(mock, "ledger-1", 3)
	mock.ExpectRollback()

	log := newEventLogWithPool(mock)
	_, err := log.Append(context.Background(), "ledger-1", eventsourcing.ExpectedRevision(1),
		eventsourcing.ProposedEvent{EventID: "e1", Type: "LedgerClosed", Data: []byte(`{}`)})

	var wrong *eventsourcing.WrongExpectedRevisionError
	if !errors.As(err, &wrong) {
		t.Fatalf("expected WrongExpectedRevisionError, got %v", err)
	}
	if !wrong.StreamExists || wrong.Actual != 3 {
		t.Fatalf("unexpected conflict details: %+v", wrong)
	}

	assertExpectations(t, mock)
}

func TestEventLogAppendUniqueViolationIsConflict(t *testing.T) {
	mock := newMockPool(t)

	expectAppendPrelude(mock, "ledger-1", -1)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("dup", "ledger-1", int64(0), "LedgerOpened", []byte(`{}`)).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mock.ExpectRollback()

	log := newEventLogWithPool(mock)
	_, err := log.Append(context.Background(), "ledger-1", eventsourcing.NoStream,
		eventsourcing.ProposedEvent{EventID: "dup", Type: "LedgerOpened", Data: []byte(`{}`)})

	var wrong *eventsourcing.WrongExpectedRevisionError
	if !errors.As(err, &wrong) {
		t.Fatalf("expected WrongExpectedRevisionError, got %v", err)
	}
	if wrong.StreamExists {
		t.Fatalf("stream did not exist before the append")
	}

	assertExpectations(t, mock)
}

func TestEventLogReadStreamNotFound(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WithArgs("ledger-x", int64(0), int32(100)).
		WillReturnRows(pgxmock.NewRows(eventColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("ledger-x").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	log := newEventLogWithPool(mock)
	_, err := log.ReadStream(context.Background(), "ledger-x", 0, 100)
	if !errors.Is(err, eventsourcing.ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound, got %v", err)
	}

	assertExpectations(t, mock)
}

func TestEventLogReadAll(t *testing.T) {
	mock := newMockPool(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE global_position > $1")).
		WithArgs(int64(10), int32(2)).
		WillReturnRows(pgxmock.NewRows(eventColumns).
			AddRow(int64(11), "e11", "ledger-1", int64(0), "LedgerOpened", []byte(`{}`), created).
			AddRow(int64(12), "e12", "ledger-2", int64(0), "LedgerOpened", []byte(`{}`), created))

	log := newEventLogWithPool(mock)
	got, err := log.ReadAll(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("read all failed: %v", err)
	}
	if len(got) != 2 || got[0].Position != 11 || got[1].StreamName != "ledger-2" {
		t.Fatalf("unexpected events: %+v", got)
	}

	assertExpectations(t, mock)
}

func TestEventLogWaitForAppendPolls(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("MAX(global_position)")).
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(global_position)")).
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(int64(6)))

	log := newEventLogWithPool(mock, WithPollInterval(time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := log.WaitForAppend(ctx, 5); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	assertExpectations(t, mock)
}

func TestEventLogWaitForAppendCancelled(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(regexp.QuoteMeta("MAX(global_position)")).
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(int64(5)))

	log := newEventLogWithPool(mock, WithPollInterval(50*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := log.WaitForAppend(ctx, 5); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRevisionMatches(t *testing.T) {
	tests := []struct {
		name     string
		expected eventsourcing.ExpectedRevision
		head     int64
		want     bool
	}{
		{"no stream on empty", eventsourcing.NoStream, -1, true},
		{"no stream on existing", eventsourcing.NoStream, 0, false},
		{"revision on empty", eventsourcing.ExpectedRevision(0), -1, false},
		{"matching revision", eventsourcing.ExpectedRevision(2), 2, true},
		{"stale revision", eventsourcing.ExpectedRevision(1), 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := revisionMatches(tt.expected, tt.head); got != tt.want {
				t.Fatalf("revisionMatches(%v, %d) = %v, want %v", tt.expected, tt.head, got, tt.want)
			}
		})
	}
}
