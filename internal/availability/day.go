package availability

import "time"

// DayID is the recurring-schedule key of a weekday.
type DayID string

const (
	Sunday    DayID = "sunday"
	Monday    DayID = "monday"
	Tuesday   DayID = "tuesday"
	Wednesday DayID = "wednesday"
	Thursday  DayID = "thursday"
	Friday    DayID = "friday"
	Saturday  DayID = "saturday"
)

// AllDays is indexed by time.Weekday (Sunday=0 … Saturday=6).
var AllDays = []DayID{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// EditorDays is the display order of the availability editor.
var EditorDays = []DayID{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayLabels = map[DayID]string{
	Sunday:    "Domingo",
	Monday:    "Segunda-feira",
	Tuesday:   "Terça-feira",
	Wednesday: "Quarta-feira",
	Thursday:  "Quinta-feira",
	Friday:    "Sexta-feira",
	Saturday:  "Sábado",
}

// DayOf maps a weekday to its schedule key.
func DayOf(w time.Weekday) DayID {
	return AllDays[int(w)%7]
}

// DayOfDate maps a date to its schedule key using the date's own location.
func DayOfDate(date time.Time) DayID {
	return DayOf(date.Weekday())
}

// Valid reports whether d is one of the seven weekday keys.
func (d DayID) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Weekday returns the time.Weekday for d. Unknown ids map to Sunday.
func (d DayID) Weekday() time.Weekday {
	for i, id := range AllDays {
		if id == d {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}

// IsWeekend reports whether d is Saturday or Sunday.
func (d DayID) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// Label returns the display name of the day.
func (d DayID) Label() string {
	return dayLabels[d]
}
