package eventsourcing

import (
	"context"
	"errors"
	"sync"
)

// DropReason tells why a subscription stopped.
type DropReason string

const (
	// DropReasonDisposed means the subscription was closed or its context
	// was cancelled.
	DropReasonDisposed DropReason = "disposed"
	// DropReasonSubscriberError means the event handler returned an error.
	DropReasonSubscriberError DropReason = "subscriber_error"
	// DropReasonServerError means reading from the log failed.
	DropReasonServerError DropReason = "server_error"
)

// EventHandler receives one event at a time. The next event is not
// delivered before the handler returns.
type EventHandler func(ctx context.Context, rec RecordedEvent) error

// DropHandler is called exactly once when a subscription stops.
type DropHandler func(reason DropReason, err error)

// Subscription is a running catch-up then live feed over the global log.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription and waits for the delivery goroutine to exit.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped and its drop handler
// has returned.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// SubscribeFromPosition delivers every event with a global position strictly
// greater than from, first from history and then live, in commit order.
// Pass 0 to start from the beginning of the log.
func (c *Client) SubscribeFromPosition(ctx context.Context, from uint64, onEvent EventHandler, onDrop DropHandler) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var once sync.Once
	drop := func(reason DropReason, err error) {
		once.Do(func() {
			if onDrop != nil {
				onDrop(reason, err)
			}
		})
	}

	go func() {
		defer close(s.done)
		defer cancel()
		reason, err := c.deliver(ctx, from, onEvent)
		drop(reason, err)
	}()

	return s
}

func (c *Client) deliver(ctx context.Context, position uint64, onEvent EventHandler) (DropReason, error) {
	for {
		if ctx.Err() != nil {
			return DropReasonDisposed, nil
		}

		batch, err := c.log.ReadAll(ctx, position, c.batchSize)
		if err != nil {
			return c.readFailure(ctx, err)
		}

		if len(batch) == 0 {
			if err := c.log.WaitForAppend(ctx, position); err != nil {
				return c.readFailure(ctx, err)
			}
			continue
		}

		for _, raw := range batch {
			if ctx.Err() != nil {
				return DropReasonDisposed, nil
			}
			if err := onEvent(ctx, c.decode(raw)); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					return DropReasonDisposed, nil
				}
				return DropReasonSubscriberError, err
			}
			position = raw.Position
		}
	}
}

func (c *Client) readFailure(ctx context.Context, err error) (DropReason, error) {
	if ctx.Err() != nil {
		return DropReasonDisposed, nil
	}
	return DropReasonServerError, &TransportError{Op: "subscribe", Err: err}
}
