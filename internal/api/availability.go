package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/slots"
)

type availabilityResponse struct {
	Availability availability.Weekly  `json:"availability"`
	Settings     model.SessionSettings `json:"settings"`
	// Warnings lists active days without any interval.
	Warnings []availability.DayID `json:"warnings"`
}

type intervalRequest struct {
	ID    string `json:"id"`
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

type dayRequest struct {
	Active bool              `json:"active"`
	Slots  []intervalRequest `json:"slots" validate:"dive"`
}

type settingsRequest struct {
	SessionDuration int `json:"sessionDuration" validate:"gt=0,lte=480"`
	BufferTime      int `json:"bufferTime" validate:"gte=0,lte=240"`
}

type putAvailabilityRequest struct {
	Availability map[string]dayRequest `json:"availability" validate:"required,dive,keys,weekday,endkeys"`
	Settings     *settingsRequest      `json:"settings"`
}

type patchDayRequest struct {
	Op     string `json:"op" validate:"required,oneof=toggle add remove update"`
	SlotID string `json:"slotId" validate:"required_if=Op remove,required_if=Op update"`
	Field  string `json:"field" validate:"required_if=Op update,omitempty,oneof=start end"`
	Value  string `json:"value" validate:"required_if=Op update,omitempty,clock"`
}

type copyRequest struct {
	Source  string   `json:"source" validate:"required,weekday"`
	Targets []string `json:"targets" validate:"omitempty,dive,weekday"`
}

func editorResponse(ed *availability.Editor) availabilityResponse {
	warnings := ed.Warnings()
	if warnings == nil {
		warnings = []availability.DayID{}
	}
	return availabilityResponse{Availability: ed.Days(), Settings: ed.Settings(), Warnings: warnings}
}

func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	ed := s.availability.Open(r.Context(), chi.URLParam(r, "professionalID"))
	writeJSON(w, http.StatusOK, editorResponse(ed))
}

// putAvailability replaces the whole weekly schedule. Days left out are closed.
func (s *Server) putAvailability(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")

	var req putAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := make(map[availability.DayID]availability.Day, len(req.Availability))
	for id, day := range req.Availability {
		out := availability.Day{Active: day.Active, Slots: make([]availability.Interval, 0, len(day.Slots))}
		for _, iv := range day.Slots {
			if iv.ID == "" {
				iv.ID = uuid.NewString()
			}
			out.Slots = append(out.Slots, availability.Interval{ID: iv.ID, Start: iv.Start, End: iv.End})
		}
		days[availability.DayID(id)] = out
	}

	var settings model.SessionSettings
	if req.Settings != nil {
		settings = model.SessionSettings{SessionDuration: req.Settings.SessionDuration, BufferTime: req.Settings.BufferTime}
	} else {
		// Keep the stored session settings.
		current, err := s.availability.OpenForEdit(r.Context(), professionalID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		settings = current.Settings()
	}

	ed := availability.NewEditor(availability.FromDays(days), settings)
	if err := s.availability.Save(r.Context(), professionalID, ed); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editorResponse(ed))
}

// patchDay applies one editor operation to a stored day and saves the result.
func (s *Server) patchDay(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	day := availability.DayID(chi.URLParam(r, "day"))

	var req patchDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ed, err := s.availability.OpenForEdit(r.Context(), professionalID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	switch req.Op {
	case "toggle":
		err = ed.ToggleDay(day)
	case "add":
		_, err = ed.AddSlot(day)
	case "remove":
		err = ed.RemoveSlot(day, req.SlotID)
	case "update":
		err = ed.UpdateSlot(day, req.SlotID, availability.Field(req.Field), req.Value)
	}
	if err == nil {
		err = s.availability.Save(r.Context(), professionalID, ed)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editorResponse(ed))
}

func (s *Server) copyDay(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")

	var req copyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := availability.DayID(req.Source)
	targets := make([]availability.DayID, 0, len(req.Targets))
	for _, t := range req.Targets {
		targets = append(targets, availability.DayID(t))
	}
	if req.Targets == nil {
		targets = availability.DefaultCopyTargets(source)
	}

	ed, err := s.availability.Copy(r.Context(), professionalID, source, targets)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editorResponse(ed))
}

func (s *Server) checkAvailability(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	loc := s.location()

	date, err := parseDate(r.URL.Query().Get("date"), s.now(), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hourParam := r.URL.Query().Get("hour")
	hour, err := strconv.Atoi(hourParam)
	if err != nil || hour < 0 || hour > 23 {
		writeError(w, http.StatusBadRequest, "hour must be an integer between 0 and 23")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":      date.Format(dateLayout),
		"hour":      hour,
		"available": s.availability.IsAvailable(r.Context(), professionalID, date, hour),
	})
}

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	date, err := parseDate(r.URL.Query().Get("date"), s.now(), s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.bookings.Slots(r.Context(), professionalID, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	info := slots.ToSlotInfo(list)
	if info == nil {
		info = []slots.SlotInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date.Format(dateLayout), "slots": info})
}
