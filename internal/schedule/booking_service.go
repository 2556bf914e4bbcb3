package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/slots"
)

// BookingRequest is a patient's request for one session.
type BookingRequest struct {
	ProfessionalID string
	PatientID      string
	PatientName    string
	Start          time.Time
	PriceCents     int64
}

// BookingService resolves bookable slots and books consultations.
type BookingService struct {
	profs    ProfessionalStore
	store    EventStore
	patients PatientEventStore
	meetings MeetingScheduler
	bus      *events.EventBus
	logger   zerolog.Logger
	now      Clock
	loc      *time.Location
}

// NewBookingService creates the patient booking backend. patients and meetings may be nil.
func NewBookingService(profs ProfessionalStore, store EventStore, patients PatientEventStore, meetings MeetingScheduler, bus *events.EventBus, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		profs:    profs,
		store:    store,
		patients: patients,
		meetings: meetings,
		bus:      bus,
		logger:   logger.With().Str("component", "booking").Logger(),
		now:      time.Now,
		loc:      time.Local,
	}
}

// WithClock replaces the wall clock.
func (s *BookingService) WithClock(now Clock) *BookingService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLocation sets the zone in which schedule times of day are interpreted.
func (s *BookingService) WithLocation(loc *time.Location) *BookingService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Slots lists the sessions of date with their availability.
func (s *BookingService) Slots(ctx context.Context, professionalID string, date time.Time) ([]slots.Slot, error) {
	pro, err := s.profs.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("get professional: %w", err)
	}
	return s.slotsFor(ctx, pro, date)
}

func (s *BookingService) slotsFor(ctx context.Context, pro *model.Professional, date time.Time) ([]slots.Slot, error) {
	day := model.StartOfDay(date, s.loc)
	window := model.DateRange{From: day, To: day}.Window(s.loc)
	list, err := s.store.QueryEvents(ctx, pro.ID, &window)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	settings := pro.Settings
	if settings.SessionDuration <= 0 {
		settings.SessionDuration = model.DefaultSessionDuration
	}
	gen := slots.NewGenerator(slots.NewEventChecker(list)).WithClock(s.now)
	return gen.GenerateSlots(ctx, pro.ID, day, availability.Load(pro.Availability), settings)
}

// Book creates a pending consultation when the requested start is a free slot.
// Meeting creation failures are logged; the consultation is kept without a link.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (model.ScheduledEvent, error) {
	if strings.TrimSpace(req.PatientID) == "" || req.PatientID == model.ManualPatientID {
		return model.ScheduledEvent{}, fmt.Errorf("invalid patient id %q", req.PatientID)
	}
	pro, err := s.profs.GetProfessional(ctx, req.ProfessionalID)
	if err != nil {
		metrics.IncBooking("error")
		return model.ScheduledEvent{}, fmt.Errorf("get professional: %w", err)
	}

	list, err := s.slotsFor(ctx, pro, req.Start)
	if err != nil {
		metrics.IncBooking("error")
		return model.ScheduledEvent{}, err
	}
	slot, ok := slots.FindSlotAt(list, req.Start)
	if !ok || !slot.Available {
		metrics.IncBooking("unavailable")
		return model.ScheduledEvent{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, req.Start.In(s.loc).Format("2006-01-02 15:04"))
	}

	// Stores that can answer overlap queries re-check the interval right before the write.
	if checker, ok := s.store.(slots.BookingChecker); ok {
		booked, err := checker.IsSlotBooked(ctx, pro.ID, slot.StartTime, slot.EndTime)
		if err != nil {
			metrics.IncBooking("error")
			return model.ScheduledEvent{}, fmt.Errorf("check slot: %w", err)
		}
		if booked {
			metrics.IncBooking("unavailable")
			return model.ScheduledEvent{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, req.Start.In(s.loc).Format("2006-01-02 15:04"))
		}
	}

	ev := model.ScheduledEvent{
		ID:               uuid.NewString(),
		ProfessionalID:   pro.ID,
		ProfessionalName: pro.Name,
		PatientID:        req.PatientID,
		PatientName:      req.PatientName,
		StartAt:          slot.StartTime,
		EndAt:            slot.EndTime,
		Status:           model.StatusPending,
		PriceCents:       req.PriceCents,
		CreatedAt:        s.now(),
	}

	if s.meetings != nil {
		meeting, err := s.meetings.CreateMeeting(ctx, pro, ev)
		if err != nil {
			s.logger.Warn().Err(err).Str("professional_id", pro.ID).Msg("meeting creation failed; booking without link")
		} else {
			ev.Meeting = meeting
		}
	}

	id, err := s.store.InsertEvent(ctx, ev)
	if err != nil {
		metrics.IncBooking("error")
		return model.ScheduledEvent{}, fmt.Errorf("insert consultation: %w", err)
	}
	if id != "" {
		ev.ID = id
	}

	metrics.IncBooking("booked")
	_ = s.bus.Publish(events.Event{Type: events.ConsultationBooked, ProfessionalID: pro.ID, SubjectID: ev.ID})
	s.logger.Info().Str("professional_id", pro.ID).Str("event_id", ev.ID).Time("start", ev.StartAt).Msg("consultation booked")
	return ev, nil
}

// PatientEvents lists a patient's own consultations, newest first.
func (s *BookingService) PatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error) {
	if s.patients == nil {
		return nil, errors.New("patient view not configured")
	}
	list, err := s.patients.QueryPatientEvents(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("query patient events: %w", err)
	}
	return list, nil
}
