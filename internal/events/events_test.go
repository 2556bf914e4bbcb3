package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()
	var got []Event
	bus.Subscribe(BlockCreated, func(e Event) error {
		got = append(got, e)
		return nil
	})
	bus.Subscribe(BlockDeleted, func(Event) error {
		t.Fatal("wrong type delivered")
		return nil
	})

	require.NoError(t, bus.Publish(Event{Type: BlockCreated, ProfessionalID: "pro-1", SubjectID: "blk-1"}))

	require.Len(t, got, 1)
	assert.Equal(t, "blk-1", got[0].SubjectID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestEventBus_SubscribeAllAndErrors(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	bus.SubscribeAll(func(Event) error {
		calls++
		return errors.New("handler failed")
	}, AvailabilitySaved, ConsultationBooked)

	assert.EqualError(t, bus.Publish(Event{Type: AvailabilitySaved}), "handler failed")
	assert.Error(t, bus.Publish(Event{Type: ConsultationBooked}))
	assert.NoError(t, bus.Publish(Event{Type: BlockRolledBack}))
	assert.Equal(t, 2, calls)
}

func TestEventBus_NilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.Publish(Event{Type: BlockCreated}))
}
