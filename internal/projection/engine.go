// Package projection runs the projection engine: it tails the global event
// log from a stored cursor and folds every event into the read models.
package projection

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
	"github.com/iho/ledger-es/internal/usecase"
)

// State is the lifecycle state of the engine.
type State string

const (
	StateStopped     State = "stopped"
	StateSubscribing State = "subscribing"
	StateStreaming   State = "streaming"
)

// Subscriber opens a feed over the global log.
type Subscriber interface {
	SubscribeFromPosition(ctx context.Context, from uint64, onEvent eventsourcing.EventHandler, onDrop eventsourcing.DropHandler) *eventsourcing.Subscription
}

// Observer receives engine metrics.
type Observer interface {
	ProjectionEventApplied(projection string, position uint64, duration time.Duration)
	ProjectionEventFailed(projection string)
	SubscriptionDropped(projection, reason string)
}

// Config for Engine.
type Config struct {
	Name       string
	Subscriber Subscriber
	TxManager  usecase.TransactionManager
	Cursors    usecase.ProjectionCursorRepository
	Updaters   []Updater
	Notifier   usecase.Notifier // optional
	Retrier    usecase.Retrier  // optional
	Observer   Observer         // optional
	Logger     zerolog.Logger

	InitialInterval time.Duration // First resubscribe delay
	MaxInterval     time.Duration // Upper bound of the resubscribe delay
}

// Engine is the projection engine. One engine runs per process.
type Engine struct {
	name       string
	subscriber Subscriber
	txManager  usecase.TransactionManager
	cursors    usecase.ProjectionCursorRepository
	updaters   []Updater
	notifier   usecase.Notifier
	retrier    usecase.Retrier
	observer   Observer
	logger     zerolog.Logger
	tracer     trace.Tracer

	initialInterval time.Duration
	maxInterval     time.Duration

	state    atomic.Value
	position atomic.Uint64
}

// NewEngine creates a new Engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Name == "" {
		cfg.Name = usecase.DefaultProjectionName
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 30 * time.Second
	}

	e := &Engine{
		name:            cfg.Name,
		subscriber:      cfg.Subscriber,
		txManager:       cfg.TxManager,
		cursors:         cfg.Cursors,
		updaters:        cfg.Updaters,
		notifier:        cfg.Notifier,
		retrier:         cfg.Retrier,
		observer:        cfg.Observer,
		logger:          cfg.Logger.With().Str("component", "projection_engine").Str("projection", cfg.Name).Logger(),
		tracer:          otel.Tracer("github.com/iho/ledger-es/internal/projection"),
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
	e.state.Store(StateStopped)
	return e
}

// Name returns the projection name the engine stores its cursor under.
func (e *Engine) Name() string {
	return e.name
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.state.Load().(State)
}

// Position returns the last global position committed by this engine.
func (e *Engine) Position() uint64 {
	return e.position.Load()
}

// Run subscribes from the stored cursor and keeps resubscribing with
// exponential backoff whenever the subscription drops. It returns nil once
// ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info().
		Dur("initial_interval", e.initialInterval).
		Dur("max_interval", e.maxInterval).
		Msg("projection engine started")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.initialInterval
	b.MaxInterval = e.maxInterval
	b.MaxElapsedTime = 0
	b.Reset()

	defer e.state.Store(StateStopped)

	for {
		e.state.Store(StateSubscribing)

		applied, err := e.subscribeOnce(ctx)
		if ctx.Err() != nil {
			e.logger.Info().Msg("projection engine shutting down")
			return nil
		}
		if applied > 0 {
			b.Reset()
		}

		wait := b.NextBackOff()
		e.logger.Warn().
			Err(err).
			Dur("retry_in", wait).
			Uint64("position", e.Position()).
			Msg("projection subscription dropped, resubscribing")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Info().Msg("projection engine shutting down")
			return nil
		case <-timer.C:
		}
	}
}

type dropInfo struct {
	reason eventsourcing.DropReason
	err    error
}

// subscribeOnce runs one subscription until it drops and returns the number
// of events it committed.
func (e *Engine) subscribeOnce(ctx context.Context) (int, error) {
	position, ok, err := e.cursors.Get(ctx, e.name)
	if err != nil {
		return 0, fmt.Errorf("load projection cursor: %w", err)
	}
	if !ok {
		position = 0
	}
	e.position.Store(position)

	e.logger.Info().Uint64("position", position).Msg("subscribing to event log")

	var applied int
	dropped := make(chan dropInfo, 1)

	sub := e.subscriber.SubscribeFromPosition(ctx, position,
		func(ctx context.Context, rec eventsourcing.RecordedEvent) error {
			if err := e.handle(ctx, rec); err != nil {
				return err
			}
			applied++
			return nil
		},
		func(reason eventsourcing.DropReason, err error) {
			dropped <- dropInfo{reason: reason, err: err}
		},
	)
	e.state.Store(StateStreaming)

	<-sub.Done()
	d := <-dropped

	if e.observer != nil {
		e.observer.SubscriptionDropped(e.name, string(d.reason))
	}
	if d.err == nil {
		d.err = fmt.Errorf("subscription dropped: %s", d.reason)
	}
	return applied, d.err
}

// handle applies one event to every interested updater and advances the
// cursor in the same transaction. Notifications go out after commit.
func (e *Engine) handle(ctx context.Context, rec eventsourcing.RecordedEvent) error {
	start := time.Now()

	var notes []domain.ChangeNotification
	op := func() error {
		var err error
		notes, err = e.apply(ctx, rec)
		return err
	}

	var err error
	if e.retrier != nil {
		err = e.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		if e.observer != nil {
			e.observer.ProjectionEventFailed(e.name)
		}
		if !errors.Is(err, context.Canceled) {
			e.logger.Error().
				Err(err).
				Uint64("position", rec.Position).
				Str("event_type", rec.Type).
				Str("stream", rec.StreamName).
				Msg("failed to apply event to projections")
		}
		return err
	}

	e.position.Store(rec.Position)
	if e.observer != nil {
		e.observer.ProjectionEventApplied(e.name, rec.Position, time.Since(start))
	}

	e.publish(ctx, notes)
	return nil
}

func (e *Engine) apply(ctx context.Context, rec eventsourcing.RecordedEvent) (notes []domain.ChangeNotification, err error) {
	ctx, span := e.tracer.Start(ctx, "projection.apply", trace.WithAttributes(
		attribute.Int64("event.position", int64(rec.Position)),
		attribute.String("event.type", rec.Type),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "apply failed")
		}
		span.End()
	}()

	tx, err := e.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin projection transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if rec.Event == nil {
		e.logger.Debug().
			Uint64("position", rec.Position).
			Str("event_type", rec.Type).
			Msg("advancing past undecodable event")
	} else {
		for _, u := range e.updaters {
			if !u.Handles(rec.Event) {
				continue
			}
			n, err := u.Apply(ctx, tx, rec)
			if err != nil {
				return nil, fmt.Errorf("%s projection: %w", u.Name(), err)
			}
			if n != nil {
				notes = append(notes, *n)
			}
		}
	}

	if err := e.cursors.Save(ctx, tx, e.name, rec.Position); err != nil {
		return nil, fmt.Errorf("save projection cursor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit projection transaction: %w", err)
	}
	committed = true

	return notes, nil
}

func (e *Engine) publish(ctx context.Context, notes []domain.ChangeNotification) {
	if e.notifier == nil {
		return
	}
	for _, n := range notes {
		if err := e.notifier.Notify(ctx, n); err != nil {
			e.logger.Warn().
				Err(err).
				Str("kind", string(n.Kind)).
				Str("ledger_id", n.LedgerID).
				Msg("failed to publish change notification")
		}
	}
}
