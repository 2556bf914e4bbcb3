package slots

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

// Slot is a bookable session candidate.
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// SlotInfo is a simplified representation for clients.
type SlotInfo struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "10:50"
	Available bool   `json:"available"`
}

// BookingChecker checks whether an occupying event intersects [start, end).
type BookingChecker interface {
	IsSlotBooked(ctx context.Context, professionalID string, start, end time.Time) (bool, error)
}

// Generator generates bookable session slots for a date.
type Generator struct {
	checker BookingChecker
	now     func() time.Time
}

// NewGenerator creates a new slot generator. checker may be nil.
func NewGenerator(checker BookingChecker) *Generator {
	return &Generator{checker: checker, now: time.Now}
}

// WithClock replaces the clock used to mark past slots.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// GenerateSlots lays out sessions of settings.SessionDuration inside every valid
// interval of date's weekday, with settings.BufferTime between consecutive starts.
// A slot is unavailable when it has started already or when it would sit within
// BufferTime of an occupying event.
func (g *Generator) GenerateSlots(ctx context.Context, professionalID string, date time.Time, w availability.Weekly, settings model.SessionSettings) ([]Slot, error) {
	cfg := w.Day(availability.DayOfDate(date))
	if !cfg.Active {
		return nil, nil
	}
	if settings.SessionDuration <= 0 {
		settings.SessionDuration = model.DefaultSessionDuration
	}
	if settings.BufferTime < 0 {
		settings.BufferTime = 0
	}

	session := time.Duration(settings.SessionDuration) * time.Minute
	buffer := time.Duration(settings.BufferTime) * time.Minute
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	now := g.now()

	var out []Slot
	seen := make(map[int64]bool)
	for _, iv := range cfg.Slots {
		startMin, endMin, ok := iv.Bounds()
		if !ok {
			continue
		}
		windowEnd := midnight.Add(time.Duration(endMin) * time.Minute)

		for cursor := midnight.Add(time.Duration(startMin) * time.Minute); !cursor.Add(session).After(windowEnd); cursor = cursor.Add(session + buffer) {
			if seen[cursor.Unix()] {
				continue
			}
			seen[cursor.Unix()] = true
			slotStart := cursor
			slotEnd := cursor.Add(session)

			booked := false
			if g.checker != nil {
				var err error
				booked, err = g.checker.IsSlotBooked(ctx, professionalID, slotStart.Add(-buffer), slotEnd.Add(buffer))
				if err != nil {
					return nil, fmt.Errorf("check slot: %w", err)
				}
			}

			out = append(out, Slot{
				StartTime: slotStart,
				EndTime:   slotEnd,
				Available: !booked && !slotStart.Before(now),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// ToSlotInfo converts slots to SlotInfo for clients.
func ToSlotInfo(slots []Slot) []SlotInfo {
	result := make([]SlotInfo, len(slots))
	for i, s := range slots {
		result[i] = SlotInfo{
			Start:     s.StartTime.Format("15:04"),
			End:       s.EndTime.Format("15:04"),
			Available: s.Available,
		}
	}
	return result
}

// GetAvailableSlots returns only available slots.
func GetAvailableSlots(slots []Slot) []Slot {
	var available []Slot
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}
	return available
}

// FindSlotAt returns the slot starting exactly at start.
func FindSlotAt(slots []Slot, start time.Time) (Slot, bool) {
	for _, s := range slots {
		if s.StartTime.Equal(start) {
			return s, true
		}
	}
	return Slot{}, false
}
