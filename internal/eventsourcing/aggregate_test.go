package eventsourcing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledger-es/internal/adapter/repository/memory"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

func TestReplay_FoldsStreamInOrder(t *testing.T) {
	ctx := context.Background()
	log := memory.NewEventLog()
	_, err := log.Append(ctx, "counter-c1", eventsourcing.NoStream,
		eventsourcing.ProposedEvent{EventID: "1", Type: "counterIncremented", Data: []byte(`{"counterId":"c1","by":2}`)},
		eventsourcing.ProposedEvent{EventID: "2", Type: "counter-reset", Data: []byte(`{"counterId":"c1"}`)},
		eventsourcing.ProposedEvent{EventID: "3", Type: "counterIncremented", Data: []byte(`{"counterId":"c1","by":5}`)},
	)
	require.NoError(t, err)
	c := eventsourcing.NewClient(log, newTestRegistry())

	first, version, err := eventsourcing.Replay[counter](ctx, c, "counter-c1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
	assert.Equal(t, 5, first.Value)

	second, _, err := eventsourcing.Replay[counter](ctx, c, "counter-c1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReplay_VersionCountsSkippedRecords(t *testing.T) {
	ctx := context.Background()
	log := memory.NewEventLog()
	_, err := log.Append(ctx, "counter-c1", eventsourcing.NoStream,
		eventsourcing.ProposedEvent{EventID: "1", Type: "counterIncremented", Data: []byte(`{"counterId":"c1","by":2}`)},
		eventsourcing.ProposedEvent{EventID: "2", Type: "counterArchived", Data: []byte(`{}`)},
	)
	require.NoError(t, err)
	c := eventsourcing.NewClient(log, newTestRegistry())

	agg, version, err := eventsourcing.Replay[counter](ctx, c, "counter-c1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, uint64(1), agg.CurrentVersion())

	_, err = c.Append(ctx, "counter-c1", agg, version, &counterIncremented{CounterID: "c1", By: 1})
	assert.NoError(t, err)
}

func TestReplay_StreamNotFound(t *testing.T) {
	c := eventsourcing.NewClient(memory.NewEventLog(), newTestRegistry())

	agg, version, err := eventsourcing.Replay[counter](context.Background(), c, "counter-none")
	assert.ErrorIs(t, err, eventsourcing.ErrStreamNotFound)
	assert.Equal(t, uint64(0), version)
	require.NotNil(t, agg)
	assert.Equal(t, 0, agg.Value)
}

func TestReplay_PropagatesApplyError(t *testing.T) {
	ctx := context.Background()
	log := memory.NewEventLog()
	_, err := log.Append(ctx, "counter-c1", eventsourcing.NoStream,
		eventsourcing.ProposedEvent{EventID: "1", Type: "counterIncremented", Data: []byte(`{"counterId":"c1","by":-1}`)},
	)
	require.NoError(t, err)
	c := eventsourcing.NewClient(log, newTestRegistry())

	_, _, err = eventsourcing.Replay[counter](ctx, c, "counter-c1")

	var invalid *eventsourcing.InvalidStateTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "by", invalid.Field)
}
