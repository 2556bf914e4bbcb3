package schedule

import (
	"context"

	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/model"
)

// command is an optimistic event-list mutation with its compensating inverse.
type command interface {
	apply(list []model.ScheduledEvent) []model.ScheduledEvent
	persist(ctx context.Context, store EventStore) error
	// commit reconciles local state with the stored result.
	commit(list []model.ScheduledEvent) []model.ScheduledEvent
	undo(list []model.ScheduledEvent) []model.ScheduledEvent

	action() string
	subject() string
	eventType() string
	successMessage() string
	failureMessage() string
}

type addEvent struct {
	event    model.ScheduledEvent
	storedID string
}

func (c *addEvent) apply(list []model.ScheduledEvent) []model.ScheduledEvent {
	return append(list, c.event)
}

func (c *addEvent) persist(ctx context.Context, store EventStore) error {
	id, err := store.InsertEvent(ctx, c.event)
	c.storedID = id
	return err
}

func (c *addEvent) commit(list []model.ScheduledEvent) []model.ScheduledEvent {
	if c.storedID == "" || c.storedID == c.event.ID {
		return list
	}
	if i := indexOf(list, c.event.ID); i >= 0 {
		list[i].ID = c.storedID
	}
	c.event.ID = c.storedID
	return list
}

// undo removes the block by id.
func (c *addEvent) undo(list []model.ScheduledEvent) []model.ScheduledEvent {
	if i := indexOf(list, c.event.ID); i >= 0 {
		return append(list[:i], list[i+1:]...)
	}
	return list
}

func (c *addEvent) action() string         { return "create" }
func (c *addEvent) subject() string        { return c.event.ID }
func (c *addEvent) eventType() string      { return events.BlockCreated }
func (c *addEvent) successMessage() string { return "Bloqueio criado" }
func (c *addEvent) failureMessage() string { return "Erro ao criar bloqueio" }

type removeEvent struct {
	event model.ScheduledEvent
	index int
}

func (c *removeEvent) apply(list []model.ScheduledEvent) []model.ScheduledEvent {
	c.index = indexOf(list, c.event.ID)
	if c.index < 0 {
		return list
	}
	return append(list[:c.index], list[c.index+1:]...)
}

func (c *removeEvent) persist(ctx context.Context, store EventStore) error {
	return store.RemoveEvent(ctx, c.event.ID)
}

func (c *removeEvent) commit(list []model.ScheduledEvent) []model.ScheduledEvent {
	return list
}

// undo reinserts the snapshot where it was.
func (c *removeEvent) undo(list []model.ScheduledEvent) []model.ScheduledEvent {
	if c.index < 0 || indexOf(list, c.event.ID) >= 0 {
		return list
	}
	i := c.index
	if i > len(list) {
		i = len(list)
	}
	list = append(list, model.ScheduledEvent{})
	copy(list[i+1:], list[i:])
	list[i] = c.event
	return list
}

func (c *removeEvent) action() string         { return "delete" }
func (c *removeEvent) subject() string        { return c.event.ID }
func (c *removeEvent) eventType() string      { return events.BlockDeleted }
func (c *removeEvent) successMessage() string { return "Bloqueio removido" }
func (c *removeEvent) failureMessage() string { return "Erro ao remover bloqueio" }
