package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

type bookingRequest struct {
	PatientID   string    `json:"patientId" validate:"required,ne=manual"`
	PatientName string    `json:"patientName" validate:"max=120"`
	Start       time.Time `json:"start" validate:"required"`
	PriceCents  int64     `json:"priceCents" validate:"gte=0"`
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := s.bookings.Book(r.Context(), schedule.BookingRequest{
		ProfessionalID: chi.URLParam(r, "professionalID"),
		PatientID:      req.PatientID,
		PatientName:    req.PatientName,
		Start:          req.Start,
		PriceCents:     req.PriceCents,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) patientConsultations(w http.ResponseWriter, r *http.Request) {
	list, err := s.bookings.PatientEvents(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []model.ScheduledEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"consultations": list})
}
