// Package gcal creates Google Calendar events with a Meet conference for consultations.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Kayky4/vitasyn/internal/model"
)

const (
	DefaultCalendarID = "primary"
	EventSummary      = "VitaSyn Consultation"
	conferenceType    = "hangoutsMeet"
)

var ErrNoCredentials = errors.New("professional has no calendar credentials")

type Config struct {
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	CalendarID        string
	RequestsPerSecond float64
	Burst             int
}

// Scheduler implements meeting creation on the professional's own calendar.
type Scheduler struct {
	oauth      *oauth2.Config
	calendarID string
	limiter    *rate.Limiter
	baseClient *http.Client
	opts       []option.ClientOption
	logger     zerolog.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithEndpoint points the OAuth token exchange and the Calendar API at other hosts.
func WithEndpoint(tokenURL, apiURL string) Option {
	return func(s *Scheduler) {
		s.oauth.Endpoint = oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
		s.opts = append(s.opts, option.WithEndpoint(apiURL))
	}
}

// WithHTTPClient sets the transport used for both token refresh and API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scheduler) { s.baseClient = c }
}

func New(cfg Config, logger *zerolog.Logger, opts ...Option) *Scheduler {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "gcal").Logger()
	}

	s := &Scheduler{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendar.CalendarEventsScope},
		},
		calendarID: calendarID,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMeeting inserts a calendar event with a Meet conference for ev.
func (s *Scheduler) CreateMeeting(ctx context.Context, professional *model.Professional, ev model.ScheduledEvent) (*model.Meeting, error) {
	if professional == nil || professional.RefreshToken == "" {
		return nil, ErrNoCredentials
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("calendar rate limit: %w", err)
	}

	if s.baseClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
	}
	ts := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: professional.RefreshToken})
	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, s.opts...)

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	created, err := svc.Events.Insert(s.calendarID, buildEvent(professional, ev)).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	s.logger.Info().
		Str("professional_id", professional.ID).
		Str("consultation_id", ev.ID).
		Str("calendar_event_id", created.Id).
		Msg("meeting created")
	return &model.Meeting{CalendarEventID: created.Id, MeetLink: meetLink(created)}, nil
}

func buildEvent(professional *model.Professional, ev model.ScheduledEvent) *calendar.Event {
	patient := ev.PatientName
	if patient == "" {
		patient = "Patient"
	}
	return &calendar.Event{
		Summary:     EventSummary,
		Description: fmt.Sprintf("Consultation between %s and %s", professional.Name, patient),
		Start:       &calendar.EventDateTime{DateTime: ev.StartAt.Format("2006-01-02T15:04:05Z07:00")},
		End:         &calendar.EventDateTime{DateTime: ev.EndAt.Format("2006-01-02T15:04:05Z07:00")},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             ev.ID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: conferenceType},
			},
		},
	}
}

// meetLink prefers the legacy hangout link and falls back to the video entry point.
func meetLink(ev *calendar.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			return ep.Uri
		}
	}
	return ""
}
