package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/export"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

type calendarResponse struct {
	Mode   calendar.ViewMode `json:"mode"`
	Anchor string            `json:"anchor"`
	Days   []string          `json:"days"`
	Grid   calendar.Grid     `json:"grid"`
}

type createBlockRequest struct {
	Title string `json:"title" validate:"max=120"`
	// Either an explicit range...
	Start *time.Time `json:"start" validate:"required_without=Date"`
	End   *time.Time `json:"end" validate:"required_with=Start"`
	// ...or a click on an hour cell.
	Date string `json:"date" validate:"required_without=Start,omitempty,datetime=2006-01-02"`
	Hour *int   `json:"hour" validate:"required_with=Date,omitempty,gte=0,lte=23"`
}

func (s *Server) session(professionalID string, engine *calendar.Engine) *schedule.CalendarSession {
	opts := []schedule.SessionOption{
		schedule.WithEventBus(s.bus),
		schedule.WithClock(s.now),
	}
	if s.opts.OverlapGuard {
		opts = append(opts, schedule.WithOverlapGuard())
	}
	return schedule.NewCalendarSession(professionalID, s.availability, s.events, engine, &s.logger, opts...)
}

// navigator resolves mode, anchor and width query parameters.
// nav=next|prev|today steps the anchor after the mode is applied.
func (s *Server) navigator(r *http.Request, cfg calendar.Config) (*calendar.Navigator, error) {
	q := r.URL.Query()
	anchor, err := parseDate(q.Get("date"), s.now(), s.location())
	if err != nil {
		return nil, err
	}
	width, err := parseInt(q.Get("width"), cfg.WideWidth)
	if err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}

	nav := calendar.NewNavigator(cfg, width, anchor)
	if m := q.Get("mode"); m != "" {
		if err := nav.SetMode(calendar.ViewMode(m)); err != nil {
			return nil, err
		}
	}
	switch q.Get("nav") {
	case "":
	case "next":
		nav.Next()
	case "prev":
		nav.Prev()
	case "today":
		nav.Today(s.now())
	default:
		return nil, fmt.Errorf("nav must be next, prev or today")
	}
	return nav, nil
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	engine := s.engine()
	nav, err := s.navigator(r, engine.Config())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := nav.VisibleDays()
	sess := s.session(chi.URLParam(r, "professionalID"), engine)
	sess.Load(r.Context(), model.DayRange(days))

	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = d.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, calendarResponse{
		Mode:   nav.Mode(),
		Anchor: nav.Anchor().Format(dateLayout),
		Days:   labels,
		Grid:   sess.Grid(nav.Mode(), nav.Anchor()),
	})
}

func (s *Server) exportCalendar(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	engine := s.engine()
	nav, err := s.navigator(r, engine.Config())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := nav.VisibleDays()
	sess := s.session(professionalID, engine)
	sess.Load(r.Context(), model.DayRange(days))

	name := fmt.Sprintf("agenda_%s_%s.xlsx", professionalID, nav.Anchor().Format(dateLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.CalendarWorkbook(w, engine, days, sess.Events()); err != nil {
		s.logger.Error().Err(err).Str("professional_id", professionalID).Msg("calendar export failed")
	}
}

// createBlock handles both the click-to-create draft and explicit ranges.
func (s *Server) createBlock(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine := s.engine()
	loc := s.location()
	var draft calendar.Draft
	if req.Start != nil {
		draft = calendar.Draft{Title: calendar.DefaultBlockTitle, Start: req.Start.In(loc), End: req.End.In(loc)}
	} else {
		day, err := parseDate(req.Date, s.now(), loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		draft = engine.NewBlockDraft(day, *req.Hour)
	}
	if req.Title != "" {
		draft.Title = req.Title
	}

	sess := s.session(professionalID, engine)
	sess.Load(r.Context(), &model.DateRange{From: draft.Start, To: draft.End})
	ev, err := sess.CreateBlock(r.Context(), draft)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, calendar.DetailsFor(ev))
}

// deleteBlock removes a manual block. An optional date narrows the lookup to one day.
func (s *Server) deleteBlock(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	eventID := chi.URLParam(r, "eventID")
	engine := s.engine()

	var rng *model.DateRange
	if d := r.URL.Query().Get("date"); d != "" {
		day, err := parseDate(d, s.now(), s.location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rng = &model.DateRange{From: day, To: day}
	}

	sess := s.session(professionalID, engine)
	sess.Load(r.Context(), rng)
	if err := sess.DeleteBlock(r.Context(), eventID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
