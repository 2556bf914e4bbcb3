package schedule

import (
	"sort"
	"time"

	"github.com/Kayky4/vitasyn/internal/model"
)

// IntervalIndex answers overlap queries over a fixed set of events.
// Events are sorted by start with a running maximum of end times, so a query
// stops scanning as soon as no earlier event can reach the probe.
type IntervalIndex struct {
	events []model.ScheduledEvent
	maxEnd []time.Time
}

// NewIntervalIndex indexes the events that occupy time.
func NewIntervalIndex(events []model.ScheduledEvent) *IntervalIndex {
	sorted := make([]model.ScheduledEvent, 0, len(events))
	for _, e := range events {
		if e.Blocks() && e.EndAt.After(e.StartAt) {
			sorted = append(sorted, e)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartAt.Before(sorted[j].StartAt)
	})
	maxEnd := make([]time.Time, len(sorted))
	for i, e := range sorted {
		maxEnd[i] = e.EndAt
		if i > 0 && maxEnd[i-1].After(e.EndAt) {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &IntervalIndex{events: sorted, maxEnd: maxEnd}
}

// Overlapping returns the indexed events that intersect [start, end).
func (x *IntervalIndex) Overlapping(start, end time.Time) []model.ScheduledEvent {
	// Only events starting before end can intersect.
	n := sort.Search(len(x.events), func(i int) bool {
		return !x.events[i].StartAt.Before(end)
	})
	var out []model.ScheduledEvent
	for i := n - 1; i >= 0 && x.maxEnd[i].After(start); i-- {
		if x.events[i].EndAt.After(start) {
			out = append(out, x.events[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}
