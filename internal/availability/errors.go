package availability

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDay      = errors.New("unknown weekday")
	ErrUnknownSlot     = errors.New("unknown slot")
	ErrUnknownField    = errors.New("unknown slot field")
	ErrInvalidSchedule = errors.New("schedule has invalid intervals")
)

// ValidationError points at one interval whose start is not before its end.
type ValidationError struct {
	Day    DayID  `json:"day"`
	SlotID string `json:"slotId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s slot %s: start %q must be before end %q", e.Day, e.SlotID, e.Start, e.End)
}

// ValidationErrors is returned by Serialize while any interval is invalid.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return ErrInvalidSchedule.Error() + ": " + strings.Join(msgs, "; ")
}

func (errs ValidationErrors) Unwrap() error {
	return ErrInvalidSchedule
}
