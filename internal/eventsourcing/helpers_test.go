package eventsourcing_test

import (
	"fmt"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

type counterIncremented struct {
	eventsourcing.Metadata
	CounterID string `json:"counterId"`
	By        int    `json:"by"`
}

func (e *counterIncremented) AggregateID() string { return e.CounterID }

type counterReset struct {
	eventsourcing.Metadata
	CounterID string `json:"counterId"`
}

func (e *counterReset) AggregateID() string { return e.CounterID }

type counter struct {
	Value   int
	Version uint64
}

func (c *counter) AggregateKind() string  { return "Counter" }
func (c *counter) CurrentVersion() uint64 { return c.Version }

func (c *counter) Apply(e eventsourcing.Event) error {
	switch ev := e.(type) {
	case *counterIncremented:
		if ev.By <= 0 {
			return eventsourcing.NewInvalidStateTransition(c, e, "increment must be positive").WithField("by")
		}
		c.Value += ev.By
	case *counterReset:
		c.Value = 0
	default:
		return fmt.Errorf("unexpected event %T", e)
	}
	c.Version++
	return nil
}

func newTestRegistry() *eventsourcing.Registry {
	r := eventsourcing.NewRegistry()
	r.Register(func() eventsourcing.Event { return &counterIncremented{} })
	r.RegisterAs("counter-reset", func() eventsourcing.Event { return &counterReset{} })
	r.Seal()
	return r
}
