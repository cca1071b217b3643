// Package notifier fans projection change notifications out to the
// configured publishers.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/domain"
)

// Publisher delivers notifications to one external system.
type Publisher interface {
	Publish(ctx context.Context, n domain.ChangeNotification) error
}

// FailureRecorder counts failed deliveries per publisher.
type FailureRecorder interface {
	PublishFailed(publisher string)
}

// Config for Dispatcher.
type Config struct {
	Publishers map[string]Publisher
	Recorder   FailureRecorder // Optional
	Logger     zerolog.Logger
	Timeout    time.Duration // Per publisher deadline
}

// Dispatcher implements usecase.Notifier by calling every publisher.
type Dispatcher struct {
	publishers map[string]Publisher
	recorder   FailureRecorder
	logger     zerolog.Logger
	timeout    time.Duration
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Dispatcher{
		publishers: cfg.Publishers,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger.With().Str("component", "notifier").Logger(),
		timeout:    cfg.Timeout,
	}
}

// Notify publishes n to every publisher. A failing publisher does not stop
// the others; all failures are returned joined.
func (d *Dispatcher) Notify(ctx context.Context, n domain.ChangeNotification) error {
	var errs []error

	for name, p := range d.publishers {
		pctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := p.Publish(pctx, n)
		cancel()

		if err != nil {
			d.logger.Error().
				Err(err).
				Str("publisher", name).
				Str("kind", string(n.Kind)).
				Str("ledger_id", n.LedgerID).
				Uint64("position", n.Position).
				Msg("failed to publish notification")
			if d.recorder != nil {
				d.recorder.PublishFailed(name)
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		d.logger.Debug().
			Str("publisher", name).
			Str("kind", string(n.Kind)).
			Uint64("position", n.Position).
			Msg("notification published")
	}

	return errors.Join(errs...)
}

// LogPublisher is a simple publisher that logs notifications.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the notification.
func (p *LogPublisher) Publish(ctx context.Context, n domain.ChangeNotification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("kind", string(n.Kind)).
		Str("ledger_id", n.LedgerID).
		Uint64("position", n.Position).
		RawJSON("payload", payload).
		Msg("CHANGE PUBLISHED")

	return nil
}

// CacheInvalidator drops the cached dashboard when it changes.
type CacheInvalidator struct {
	cache interface {
		Invalidate(ctx context.Context, position uint64) error
	}
}

// NewCacheInvalidator creates a CacheInvalidator over a dashboard cache.
func NewCacheInvalidator(cache interface {
	Invalidate(ctx context.Context, position uint64) error
}) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// Publish implements Publisher.
func (c *CacheInvalidator) Publish(ctx context.Context, n domain.ChangeNotification) error {
	if n.Kind != domain.DashboardUpdated {
		return nil
	}
	return c.cache.Invalidate(ctx, n.Position)
}
