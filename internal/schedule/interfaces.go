package schedule

import (
	"context"
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

// ProfessionalStore reads and writes the professional record.
type ProfessionalStore interface {
	// GetProfessional returns model.ErrNotFound when the record does not exist.
	GetProfessional(ctx context.Context, professionalID string) (*model.Professional, error)
	// SaveAvailability writes schedule and session settings in one update.
	SaveAvailability(ctx context.Context, professionalID string, doc availability.Document) error
}

// EventStore reads and writes calendar events.
type EventStore interface {
	// QueryEvents returns the professional's events starting inside window, or all of them when window is nil.
	QueryEvents(ctx context.Context, professionalID string, window *model.Window) ([]model.ScheduledEvent, error)
	// InsertEvent stores an event and returns its id. A preset ID is kept.
	InsertEvent(ctx context.Context, event model.ScheduledEvent) (string, error)
	// RemoveEvent deletes an event by id.
	RemoveEvent(ctx context.Context, eventID string) error
}

// PatientEventStore is the patient-side view.
type PatientEventStore interface {
	QueryPatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error)
}

// MeetingScheduler attaches a video meeting to a new consultation.
type MeetingScheduler interface {
	CreateMeeting(ctx context.Context, professional *model.Professional, event model.ScheduledEvent) (*model.Meeting, error)
}

// Clock returns the current time.
type Clock func() time.Time
