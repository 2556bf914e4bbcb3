package availability

import "github.com/Kayky4/vitasyn/internal/model"

// Interval is the persisted form of a TimeInterval.
type Interval struct {
	ID    string `json:"id" bson:"id" firestore:"id"`
	Start string `json:"start" bson:"start" firestore:"start"`
	End   string `json:"end" bson:"end" firestore:"end"`
}

// Day is the persisted form of a DayConfig.
type Day struct {
	Active bool       `json:"active" bson:"active" firestore:"active"`
	Slots  []Interval `json:"slots" bson:"slots" firestore:"slots"`
}

// Document is the single atomic write of a professional's schedule and session settings.
type Document struct {
	Availability map[DayID]Day         `json:"availability"`
	Settings     model.SessionSettings `json:"settings"`
}

// Raw converts the document's schedule to the generic stored shape.
func (d Document) Raw() Raw {
	raw := make(Raw, len(d.Availability))
	for id, day := range d.Availability {
		slots := make([]any, 0, len(day.Slots))
		for _, iv := range day.Slots {
			slots = append(slots, map[string]any{"id": iv.ID, "start": iv.Start, "end": iv.End})
		}
		raw[string(id)] = map[string]any{"active": day.Active, "slots": slots}
	}
	return raw
}

// FromDays builds a schedule from persisted day records, validating every interval.
// Days not present are closed.
func FromDays(days map[DayID]Day) Weekly {
	w := Closed()
	for id, day := range days {
		if !id.Valid() {
			continue
		}
		slots := make([]TimeInterval, 0, len(day.Slots))
		for _, iv := range day.Slots {
			slots = append(slots, TimeInterval{ID: iv.ID, Start: iv.Start, End: iv.End}.validate())
		}
		w[id] = DayConfig{Active: day.Active, Slots: slots}
	}
	return w
}
