package slots

import (
	"context"
	"time"

	"github.com/Kayky4/vitasyn/internal/model"
)

// EventChecker answers BookingChecker from an already loaded event list.
type EventChecker struct {
	events []model.ScheduledEvent
}

// NewEventChecker wraps a professional's loaded events.
func NewEventChecker(events []model.ScheduledEvent) *EventChecker {
	return &EventChecker{events: events}
}

func (c *EventChecker) IsSlotBooked(_ context.Context, professionalID string, start, end time.Time) (bool, error) {
	probe := model.ScheduledEvent{StartAt: start, EndAt: end}
	for _, e := range c.events {
		if e.ProfessionalID != professionalID || !e.Blocks() {
			continue
		}
		if e.OverlapsWith(probe) {
			return true, nil
		}
	}
	return false, nil
}
