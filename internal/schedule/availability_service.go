package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/slots"
)

// AvailabilityService loads and saves professional schedules.
type AvailabilityService struct {
	store    ProfessionalStore
	bus      *events.EventBus
	logger   zerolog.Logger
	defaults model.SessionSettings
	idFunc   availability.IDFunc
}

// NewAvailabilityService creates the availability editor backend.
func NewAvailabilityService(store ProfessionalStore, bus *events.EventBus, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:    store,
		bus:      bus,
		logger:   logger.With().Str("component", "availability").Logger(),
		defaults: model.DefaultSessionSettings(),
	}
}

// WithDefaults sets the session settings used for professionals who never saved any.
func (s *AvailabilityService) WithDefaults(settings model.SessionSettings) *AvailabilityService {
	if settings.Validate() == nil {
		s.defaults = settings
	}
	return s
}

// WithIDFunc overrides interval id generation for the editors this service opens.
func (s *AvailabilityService) WithIDFunc(fn availability.IDFunc) *AvailabilityService {
	s.idFunc = fn
	return s
}

// Load reads the professional's schedule. Missing records and read failures give an all-closed week.
func (s *AvailabilityService) Load(ctx context.Context, professionalID string) (availability.Weekly, model.SessionSettings) {
	w, settings, err := s.load(ctx, professionalID)
	if err != nil {
		s.logger.Warn().Err(err).Str("professional_id", professionalID).Msg("availability read failed; showing closed week")
		return availability.Closed(), s.defaults
	}
	return w, settings
}

func (s *AvailabilityService) load(ctx context.Context, professionalID string) (availability.Weekly, model.SessionSettings, error) {
	pro, err := s.store.GetProfessional(ctx, professionalID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return availability.Closed(), s.defaults, nil
	case err != nil:
		return nil, model.SessionSettings{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	settings := pro.Settings
	if settings.SessionDuration <= 0 {
		settings.SessionDuration = s.defaults.SessionDuration
	}
	if settings.BufferTime < 0 {
		settings.BufferTime = 0
	}
	return availability.Load(pro.Availability), settings, nil
}

// Open starts an editing session over the stored schedule for display.
// A failed read opens an all-closed week.
func (s *AvailabilityService) Open(ctx context.Context, professionalID string) *availability.Editor {
	w, settings := s.Load(ctx, professionalID)
	return s.editor(w, settings)
}

// OpenForEdit starts an editing session whose result will be saved.
// Read failures other than a missing record are returned as ErrStoreUnavailable.
func (s *AvailabilityService) OpenForEdit(ctx context.Context, professionalID string) (*availability.Editor, error) {
	w, settings, err := s.load(ctx, professionalID)
	if err != nil {
		s.logger.Error().Err(err).Str("professional_id", professionalID).Msg("availability read failed; edit refused")
		return nil, err
	}
	return s.editor(w, settings), nil
}

func (s *AvailabilityService) editor(w availability.Weekly, settings model.SessionSettings) *availability.Editor {
	var opts []availability.Option
	if s.idFunc != nil {
		opts = append(opts, availability.WithIDFunc(s.idFunc))
	}
	return availability.NewEditor(w, settings, opts...)
}

// Save persists the editor state as one document. Invalid intervals block the
// write and come back as availability.ValidationErrors.
func (s *AvailabilityService) Save(ctx context.Context, professionalID string, ed *availability.Editor) error {
	doc, err := ed.Serialize()
	if err != nil {
		metrics.IncAvailabilitySave("invalid")
		return err
	}
	if err := s.store.SaveAvailability(ctx, professionalID, doc); err != nil {
		metrics.IncAvailabilitySave("error")
		s.logger.Error().Err(err).Str("professional_id", professionalID).Msg("availability save failed")
		return fmt.Errorf("save availability: %w", err)
	}
	metrics.IncAvailabilitySave("ok")
	_ = s.bus.Publish(events.Event{Type: events.AvailabilitySaved, ProfessionalID: professionalID})
	s.logger.Info().Str("professional_id", professionalID).Msg("availability saved")
	return nil
}

// Copy opens the stored schedule, copies one day onto others, and saves.
func (s *AvailabilityService) Copy(ctx context.Context, professionalID string, source availability.DayID, targets []availability.DayID) (*availability.Editor, error) {
	ed, err := s.OpenForEdit(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if err := ed.CopyDay(source, targets); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, professionalID, ed); err != nil {
		return nil, err
	}
	return ed, nil
}

// IsAvailable resolves one hour against the stored schedule.
func (s *AvailabilityService) IsAvailable(ctx context.Context, professionalID string, date time.Time, hour int) bool {
	w, _ := s.Load(ctx, professionalID)
	return slots.IsAvailable(w, date, hour)
}
