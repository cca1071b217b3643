package eventsourcing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledger-es/internal/adapter/repository/memory"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

type dropRecorder struct {
	mu      sync.Mutex
	calls   int
	reason  eventsourcing.DropReason
	err     error
	dropped chan struct{}
}

func newDropRecorder() *dropRecorder {
	return &dropRecorder{dropped: make(chan struct{})}
}

func (d *dropRecorder) handle(reason eventsourcing.DropReason, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.reason = reason
	d.err = err
	if d.calls == 1 {
		close(d.dropped)
	}
}

func appendIncrements(t *testing.T, c *eventsourcing.Client, stream string, n int) {
	t.Helper()
	ctx := context.Background()
	agg, version, err := eventsourcing.Replay[counter](ctx, c, stream)
	if err != nil && !errors.Is(err, eventsourcing.ErrStreamNotFound) {
		t.Fatalf("replay: %v", err)
	}
	for i := 0; i < n; i++ {
		_, err := c.Append(ctx, stream, agg, version, &counterIncremented{CounterID: stream, By: 1})
		require.NoError(t, err)
		version++
	}
}

func TestSubscribeFromPosition_CatchUpThenLive(t *testing.T) {
	c := eventsourcing.NewClient(memory.NewEventLog(), newTestRegistry(), eventsourcing.WithBatchSize(2))
	appendIncrements(t, c, "counter-a", 3)
	appendIncrements(t, c, "counter-b", 2)

	var (
		mu        sync.Mutex
		positions []uint64
	)
	received := make(chan struct{}, 16)
	drops := newDropRecorder()

	sub := c.SubscribeFromPosition(context.Background(), 2, func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
		mu.Lock()
		positions = append(positions, rec.Position)
		mu.Unlock()
		received <- struct{}{}
		return nil
	}, drops.handle)

	waitFor(t, received, 3)
	appendIncrements(t, c, "counter-c", 2)
	waitFor(t, received, 2)

	sub.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{3, 4, 5, 6, 7}, positions)

	drops.mu.Lock()
	defer drops.mu.Unlock()
	assert.Equal(t, 1, drops.calls)
	assert.Equal(t, eventsourcing.DropReasonDisposed, drops.reason)
}

func TestSubscribeFromPosition_DeliversSequentially(t *testing.T) {
	c := eventsourcing.NewClient(memory.NewEventLog(), newTestRegistry())
	appendIncrements(t, c, "counter-a", 10)

	var inFlight, maxInFlight int
	var mu sync.Mutex
	received := make(chan struct{}, 16)

	sub := c.SubscribeFromPosition(context.Background(), 0, func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		received <- struct{}{}
		return nil
	}, nil)
	defer sub.Close()

	waitFor(t, received, 10)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxInFlight)
}

func TestSubscribeFromPosition_HandlerErrorDrops(t *testing.T) {
	c := eventsourcing.NewClient(memory.NewEventLog(), newTestRegistry())
	appendIncrements(t, c, "counter-a", 3)

	boom := errors.New("boom")
	drops := newDropRecorder()
	var calls int

	sub := c.SubscribeFromPosition(context.Background(), 0, func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
		calls++
		if rec.Position == 2 {
			return boom
		}
		return nil
	}, drops.handle)

	select {
	case <-drops.dropped:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not dropped")
	}
	<-sub.Done()

	drops.mu.Lock()
	defer drops.mu.Unlock()
	assert.Equal(t, eventsourcing.DropReasonSubscriberError, drops.reason)
	assert.ErrorIs(t, drops.err, boom)
	assert.Equal(t, 2, calls)

	sub.Close()
	assert.Equal(t, 1, drops.calls, "drop handler called exactly once")
}

func TestSubscribeFromPosition_ContextCancel(t *testing.T) {
	c := eventsourcing.NewClient(memory.NewEventLog(), newTestRegistry())
	drops := newDropRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	sub := c.SubscribeFromPosition(ctx, 0, func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
		return nil
	}, drops.handle)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
	assert.Equal(t, eventsourcing.DropReasonDisposed, drops.reason)
}

func TestSubscribeFromPosition_ServerError(t *testing.T) {
	log := &failingLog{Log: memory.NewEventLog(), err: fmt.Errorf("connection refused")}
	c := eventsourcing.NewClient(log, newTestRegistry())
	drops := newDropRecorder()

	sub := c.SubscribeFromPosition(context.Background(), 0, func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
		return nil
	}, drops.handle)
	<-sub.Done()

	assert.Equal(t, eventsourcing.DropReasonServerError, drops.reason)
	var transport *eventsourcing.TransportError
	assert.True(t, errors.As(drops.err, &transport))
}

type failingLog struct {
	eventsourcing.Log
	err error
}

func (l *failingLog) ReadAll(ctx context.Context, after uint64, limit int) ([]eventsourcing.RawEvent, error) {
	return nil, l.err
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", i, n)
		}
	}
}
