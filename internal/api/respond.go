package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/schedule"
)

const maxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error   string                        `json:"error"`
	Invalid availability.ValidationErrors `json:"invalid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps core errors to status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var invalid availability.ValidationErrors
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: invalid.Error(), Invalid: invalid})
	case errors.Is(err, model.ErrNotFound), errors.Is(err, schedule.ErrEventNotLoaded):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, availability.ErrUnknownDay),
		errors.Is(err, availability.ErrUnknownSlot),
		errors.Is(err, availability.ErrUnknownField),
		errors.Is(err, model.ErrInvalidSettings),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, calendar.ErrUnknownMode),
		errors.Is(err, calendar.ErrModeUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrNotDeletable):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, schedule.ErrOverlap), errors.Is(err, schedule.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrStoreUnavailable):
		s.logger.Warn().Err(err).Msg("edit refused")
		writeError(w, http.StatusServiceUnavailable, schedule.ErrStoreUnavailable.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// parseDate reads a YYYY-MM-DD query value in loc. An empty value means today.
func parseDate(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return model.StartOfDay(now, loc), nil
	}
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", value)
	}
	return d, nil
}

func parseInt(value string, def int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", value)
	}
	return n, nil
}
