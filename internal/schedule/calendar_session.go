package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/model"
)

// CalendarSession holds one professional's open calendar: the loaded schedule,
// the loaded events and the pending notices.
type CalendarSession struct {
	professionalID string
	profs          *AvailabilityService
	store          EventStore
	engine         *calendar.Engine
	notices        *Notifier
	bus            *events.EventBus
	logger         zerolog.Logger
	now            Clock
	newID          func() string
	guard          bool

	mu     sync.Mutex
	weekly availability.Weekly
	events []model.ScheduledEvent
}

// SessionOption configures a CalendarSession.
type SessionOption func(*CalendarSession)

// WithOverlapGuard rejects new blocks that intersect occupying events.
func WithOverlapGuard() SessionOption {
	return func(s *CalendarSession) { s.guard = true }
}

// WithNotifier shares a notifier with the session.
func WithNotifier(n *Notifier) SessionOption {
	return func(s *CalendarSession) { s.notices = n }
}

// WithEventBus publishes block events.
func WithEventBus(bus *events.EventBus) SessionOption {
	return func(s *CalendarSession) { s.bus = bus }
}

// WithClock replaces the wall clock.
func WithClock(now Clock) SessionOption {
	return func(s *CalendarSession) { s.now = now }
}

// WithEventIDs overrides event id generation.
func WithEventIDs(fn func() string) SessionOption {
	return func(s *CalendarSession) { s.newID = fn }
}

// NewCalendarSession opens an empty session. Call Load before rendering.
func NewCalendarSession(professionalID string, profs *AvailabilityService, store EventStore, engine *calendar.Engine, logger *zerolog.Logger, opts ...SessionOption) *CalendarSession {
	s := &CalendarSession{
		professionalID: professionalID,
		profs:          profs,
		store:          store,
		engine:         engine,
		logger:         logger.With().Str("component", "calendar").Str("professional_id", professionalID).Logger(),
		now:            time.Now,
		newID:          uuid.NewString,
		weekly:         availability.Closed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notices == nil {
		s.notices = NewNotifier(DefaultNoticeTTL, s.now)
	}
	return s
}

// Load replaces the session state with the stored schedule and the events of r.
// A nil range loads the full history. Read failures leave an empty calendar.
func (s *CalendarSession) Load(ctx context.Context, r *model.DateRange) {
	weekly, _ := s.profs.Load(ctx, s.professionalID)

	var window *model.Window
	if r != nil {
		w := r.Window(s.engine.Config().Location)
		window = &w
	}
	list, err := s.store.QueryEvents(ctx, s.professionalID, window)
	if err != nil {
		s.logger.Warn().Err(err).Msg("event read failed; showing empty calendar")
		list = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekly = weekly
	s.events = append([]model.ScheduledEvent(nil), list...)
}

// Events returns a copy of the loaded events.
func (s *CalendarSession) Events() []model.ScheduledEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ScheduledEvent(nil), s.events...)
}

// Weekly returns the loaded schedule.
func (s *CalendarSession) Weekly() availability.Weekly {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekly.Clone()
}

// Notices returns the notices still visible.
func (s *CalendarSession) Notices() []Notice {
	return s.notices.Active()
}

// Grid lays out the loaded state.
func (s *CalendarSession) Grid(mode calendar.ViewMode, anchor time.Time) calendar.Grid {
	s.mu.Lock()
	weekly, list := s.weekly, append([]model.ScheduledEvent(nil), s.events...)
	s.mu.Unlock()
	return s.engine.Layout(mode, anchor, weekly, list)
}

// Agenda lists the loaded events of one day in start order.
func (s *CalendarSession) Agenda(day time.Time) []model.ScheduledEvent {
	return s.engine.Agenda(day, s.Events())
}

// Details describes one loaded event for the detail view.
func (s *CalendarSession) Details(eventID string) (calendar.Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.events, eventID)
	if i < 0 {
		return calendar.Details{}, fmt.Errorf("%w: %s", ErrEventNotLoaded, eventID)
	}
	return calendar.DetailsFor(s.events[i]), nil
}

// CreateBlock adds a manual block locally, then persists it. A failed write
// removes the block again before the error is reported.
func (s *CalendarSession) CreateBlock(ctx context.Context, draft calendar.Draft) (model.ScheduledEvent, error) {
	if err := draft.Validate(); err != nil {
		s.notices.Error("Horário inválido")
		return model.ScheduledEvent{}, err
	}
	ev := draft.Event(s.professionalID, s.now())
	ev.ID = s.newID()

	if s.guard {
		s.mu.Lock()
		conflicts := NewIntervalIndex(s.events).Overlapping(ev.StartAt, ev.EndAt)
		s.mu.Unlock()
		if len(conflicts) > 0 {
			s.notices.Error("Horário já ocupado")
			metrics.IncBlockMutation("create", "overlap")
			return model.ScheduledEvent{}, fmt.Errorf("%w: %s", ErrOverlap, conflicts[0].ID)
		}
	}

	cmd := &addEvent{event: ev}
	if err := s.execute(ctx, cmd); err != nil {
		return model.ScheduledEvent{}, err
	}
	return cmd.event, nil
}

// DeleteBlock removes a manual block locally, then from the store. A failed
// write reinserts the block at its previous position before the error is reported.
func (s *CalendarSession) DeleteBlock(ctx context.Context, eventID string) error {
	s.mu.Lock()
	i := indexOf(s.events, eventID)
	var ev model.ScheduledEvent
	if i >= 0 {
		ev = s.events[i]
	}
	s.mu.Unlock()

	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEventNotLoaded, eventID)
	}
	if !ev.IsManualBlock() {
		return fmt.Errorf("%w: %s", ErrNotDeletable, eventID)
	}
	return s.execute(ctx, &removeEvent{event: ev})
}

func (s *CalendarSession) execute(ctx context.Context, cmd command) error {
	s.mu.Lock()
	s.events = cmd.apply(s.events)
	s.mu.Unlock()

	err := cmd.persist(ctx, s.store)
	if err == nil {
		s.mu.Lock()
		s.events = cmd.commit(s.events)
		s.mu.Unlock()
		metrics.IncBlockMutation(cmd.action(), "ok")
		_ = s.bus.Publish(events.Event{Type: cmd.eventType(), ProfessionalID: s.professionalID, SubjectID: cmd.subject()})
		s.notices.Success(cmd.successMessage())
		return nil
	}

	s.mu.Lock()
	s.events = cmd.undo(s.events)
	s.mu.Unlock()

	metrics.IncBlockMutation(cmd.action(), "error")
	metrics.IncRollback(cmd.action())
	s.logger.Error().Err(err).Str("action", cmd.action()).Str("event_id", cmd.subject()).Msg("calendar write failed; local change undone")
	_ = s.bus.Publish(events.Event{Type: events.BlockRolledBack, ProfessionalID: s.professionalID, SubjectID: cmd.subject(), Detail: cmd.action()})
	s.notices.Error(cmd.failureMessage())

	return fmt.Errorf("%s block: %w", cmd.action(), err)
}

func indexOf(list []model.ScheduledEvent, id string) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}
