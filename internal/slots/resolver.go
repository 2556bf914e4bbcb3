package slots

import (
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
)

// IsAvailable reports whether the whole hour starting at hour on date's weekday
// begins inside any valid interval of the schedule. Start is inclusive, end exclusive.
func IsAvailable(w availability.Weekly, date time.Time, hour int) bool {
	return IsAvailableMinute(w, date, hour*60)
}

// IsAvailableMinute is IsAvailable at minute granularity.
func IsAvailableMinute(w availability.Weekly, date time.Time, minuteOfDay int) bool {
	cfg, ok := w[availability.DayOfDate(date)]
	if !ok || !cfg.Active {
		return false
	}
	for _, iv := range cfg.Slots {
		if iv.Covers(minuteOfDay) {
			return true
		}
	}
	return false
}

// ResolveRaw answers IsAvailable straight from a stored document, legacy shape included.
func ResolveRaw(raw availability.Raw, date time.Time, hour int) bool {
	return IsAvailable(availability.Load(raw), date, hour)
}

// CoversRange reports whether [start, end) on one day lies entirely inside a single valid interval.
func CoversRange(w availability.Weekly, start, end time.Time) bool {
	if !end.After(start) || !sameDate(start, end.Add(-time.Minute)) {
		return false
	}
	cfg, ok := w[availability.DayOfDate(start)]
	if !ok || !cfg.Active {
		return false
	}
	from := minuteOf(start)
	to := from + int(end.Sub(start)/time.Minute)
	for _, iv := range cfg.Slots {
		s, e, ok := iv.Bounds()
		if ok && s <= from && to <= e {
			return true
		}
	}
	return false
}

func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
