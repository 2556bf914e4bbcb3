package model

import "time"

// DateRange selects events by calendar day, both ends inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DayRange returns a range covering the given days.
func DayRange(days []time.Time) *DateRange {
	if len(days) == 0 {
		return nil
	}
	return &DateRange{From: days[0], To: days[len(days)-1]}
}

// Contains reports whether t falls on any day of the range in loc.
func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	start := StartOfDay(r.From, loc)
	end := StartOfDay(r.To, loc).AddDate(0, 0, 1)
	return !t.Before(start) && t.Before(end)
}

// Bounds returns the half-open instant window [midnight(From), midnight(To)+1d).
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(r.From, loc), StartOfDay(r.To, loc).AddDate(0, 0, 1)
}

// FilterEvents keeps the events that start inside r. A nil range keeps everything.
func FilterEvents(events []ScheduledEvent, r *DateRange, loc *time.Location) []ScheduledEvent {
	if r == nil {
		return events
	}
	out := make([]ScheduledEvent, 0, len(events))
	for _, e := range events {
		if r.Contains(e.StartAt, loc) {
			out = append(out, e)
		}
	}
	return out
}

// Window is a half-open instant range [From, To) over event start times.
type Window struct {
	From time.Time
	To   time.Time
}

// Window converts the day range to instants in loc.
func (r DateRange) Window(loc *time.Location) Window {
	from, to := r.Bounds(loc)
	return Window{From: from, To: to}
}

// Contains reports whether t is in [From, To).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}
