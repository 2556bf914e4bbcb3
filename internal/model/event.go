package model

import "time"

// ManualPatientID marks an event as a professional's manual block instead of a real consultation.
const ManualPatientID = "manual"

// Status is the lifecycle state of a consultation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Meeting holds the video call attached to a consultation.
type Meeting struct {
	CalendarEventID string `json:"calendarEventId,omitempty" bson:"calendarEventId,omitempty" firestore:"calendarEventId,omitempty"`
	MeetLink        string `json:"meetLink,omitempty" bson:"meetLink,omitempty" firestore:"meetLink,omitempty"`
}

// Payment holds the processor reference of a paid consultation.
type Payment struct {
	ChargeID string    `json:"chargeId,omitempty" bson:"chargeId,omitempty" firestore:"chargeId,omitempty"`
	PaidAt   time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty" firestore:"paid_at,omitempty"`
}

// ScheduledEvent is one occupied interval on a professional's calendar:
// either a booked consultation or a manual block.
type ScheduledEvent struct {
	ID               string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	ProfessionalID   string    `json:"professionalId" bson:"professionalId" firestore:"professionalId"`
	ProfessionalName string    `json:"professionalName" bson:"professionalName" firestore:"professionalName"`
	PatientID        string    `json:"patientId" bson:"patientId" firestore:"patientId"`
	PatientName      string    `json:"patientName" bson:"patientName" firestore:"patientName"`
	StartAt          time.Time `json:"start_at" bson:"start_at" firestore:"start_at"`
	EndAt            time.Time `json:"end_at" bson:"end_at" firestore:"end_at"`
	Status           Status    `json:"status" bson:"status" firestore:"status"`
	PriceCents       int64     `json:"price_cents" bson:"price_cents" firestore:"price_cents"`
	Meeting          *Meeting  `json:"meeting,omitempty" bson:"meeting,omitempty" firestore:"meeting,omitempty"`
	Payment          *Payment  `json:"payment,omitempty" bson:"payment,omitempty" firestore:"payment,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" firestore:"created_at"`
}

// IsManualBlock reports whether the event is a block created by the professional.
func (e ScheduledEvent) IsManualBlock() bool {
	return e.PatientID == ManualPatientID
}

// Duration returns the length of the event.
func (e ScheduledEvent) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

// Blocks reports whether the event still occupies calendar time.
// Cancelled and refunded consultations free their interval.
func (e ScheduledEvent) Blocks() bool {
	return e.Status != StatusCancelled && e.Status != StatusRefunded
}

// OverlapsWith checks whether two events share any instant. Touching ends do not overlap.
func (e ScheduledEvent) OverlapsWith(other ScheduledEvent) bool {
	return e.StartAt.Before(other.EndAt) && other.StartAt.Before(e.EndAt)
}

// ContainsTime reports whether t falls inside [StartAt, EndAt).
func (e ScheduledEvent) ContainsTime(t time.Time) bool {
	return !t.Before(e.StartAt) && t.Before(e.EndAt)
}

// OnDay reports whether the event starts on the calendar date of day in loc.
func (e ScheduledEvent) OnDay(day time.Time, loc *time.Location) bool {
	return SameDay(e.StartAt, day, loc)
}

// MeetLink returns the meeting URL of a consultation, if any.
func (e ScheduledEvent) MeetLink() string {
	if e.Meeting == nil {
		return ""
	}
	return e.Meeting.MeetLink
}

// SameDay compares the calendar dates of a and b in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
