// Package api exposes the scheduling core over HTTP.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/events"
	"github.com/Kayky4/vitasyn/internal/metrics"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

// Options configures the HTTP server.
type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// OverlapGuard rejects manual blocks that overlap loaded events.
	OverlapGuard bool
	Now          func() time.Time
}

type Server struct {
	availability *schedule.AvailabilityService
	events       schedule.EventStore
	bookings     *schedule.BookingService
	bus          *events.EventBus
	layout       atomic.Pointer[calendar.Config]
	opts         Options
	now          func() time.Time
	logger       zerolog.Logger
}

func NewServer(
	availability *schedule.AvailabilityService,
	eventStore schedule.EventStore,
	bookings *schedule.BookingService,
	bus *events.EventBus,
	layout calendar.Config,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		availability: availability,
		events:       eventStore,
		bookings:     bookings,
		bus:          bus,
		opts:         opts,
		now:          opts.Now,
		logger:       logger.With().Str("component", "api").Logger(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.SetLayout(layout)
	return s
}

// SetLayout swaps the calendar presentation constants used by later requests.
func (s *Server) SetLayout(cfg calendar.Config) {
	s.layout.Store(&cfg)
}

func (s *Server) layoutConfig() calendar.Config {
	return *s.layout.Load()
}

func (s *Server) engine() *calendar.Engine {
	return calendar.NewEngine(s.layoutConfig(), calendar.WithNow(s.now))
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/professionals/{professionalID}", func(r chi.Router) {
			r.Get("/availability", s.getAvailability)
			r.Put("/availability", s.putAvailability)
			r.Patch("/availability/days/{day}", s.patchDay)
			r.Post("/availability/copy", s.copyDay)
			r.Get("/availability/check", s.checkAvailability)

			r.Get("/slots", s.listSlots)
			r.Post("/bookings", s.createBooking)

			r.Get("/calendar", s.getCalendar)
			r.Get("/calendar/export", s.exportCalendar)
			r.Post("/blocks", s.createBlock)
			r.Delete("/blocks/{eventID}", s.deleteBlock)
		})
		r.Get("/patients/{patientID}/consultations", s.patientConsultations)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.IncHTTP(route)
		s.logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) location() *time.Location {
	if loc := s.layoutConfig().Location; loc != nil {
		return loc
	}
	return time.Local
}
