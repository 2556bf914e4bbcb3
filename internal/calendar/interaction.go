package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

const (
	DefaultBlockTitle      = "Bloqueio de Agenda"
	ManualProfessionalName = "Agenda"
)

var ErrInvalidRange = errors.New("end must be after start")

// Draft is the creation form opened by clicking an empty cell.
type Draft struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewBlockDraft pre-fills a one-hour block at day@hour:00.
func (e *Engine) NewBlockDraft(day time.Time, hour int) Draft {
	d := model.StartOfDay(day, e.cfg.location())
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location())
	return Draft{
		Title: DefaultBlockTitle,
		Start: start,
		End:   start.Add(time.Hour),
	}
}

// Validate rejects empty or reversed ranges. Overlap with other events is allowed.
func (d Draft) Validate() error {
	if !d.End.After(d.Start) {
		return fmt.Errorf("%w: %s – %s", ErrInvalidRange, d.Start.Format("15:04"), d.End.Format("15:04"))
	}
	return nil
}

// Event builds the manual block a submitted draft creates.
func (d Draft) Event(professionalID string, now time.Time) model.ScheduledEvent {
	title := d.Title
	if title == "" {
		title = DefaultBlockTitle
	}
	return model.ScheduledEvent{
		ProfessionalID:   professionalID,
		ProfessionalName: ManualProfessionalName,
		PatientID:        model.ManualPatientID,
		PatientName:      title,
		StartAt:          d.Start,
		EndAt:            d.End,
		Status:           model.StatusPaid,
		PriceCents:       0,
		CreatedAt:        now,
	}
}

// Details is what clicking an existing block offers.
type Details struct {
	Event     model.ScheduledEvent `json:"event"`
	Manual    bool                 `json:"manual"`
	CanDelete bool                 `json:"canDelete"`
	MeetLink  string               `json:"meetLink,omitempty"`
}

// DetailsFor lists the actions of a block: manual blocks can be deleted, consultations only joined.
func DetailsFor(ev model.ScheduledEvent) Details {
	if ev.IsManualBlock() {
		return Details{Event: ev, Manual: true, CanDelete: true}
	}
	return Details{Event: ev, MeetLink: ev.MeetLink()}
}

// CopyDialog is the "copy day to other days" modal.
type CopyDialog struct {
	Source     availability.DayID
	Candidates []availability.DayID
	selected   map[availability.DayID]bool
}

// NewCopyDialog opens the modal with working days preselected.
func NewCopyDialog(source availability.DayID) (*CopyDialog, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", availability.ErrUnknownDay, source)
	}
	c := &CopyDialog{
		Source:     source,
		Candidates: availability.CopyCandidates(source),
		selected:   make(map[availability.DayID]bool),
	}
	for _, d := range availability.DefaultCopyTargets(source) {
		c.selected[d] = true
	}
	return c, nil
}

// Toggle flips one target.
func (c *CopyDialog) Toggle(d availability.DayID) error {
	if d == c.Source || !d.Valid() {
		return fmt.Errorf("%w: %q", availability.ErrUnknownDay, d)
	}
	c.selected[d] = !c.selected[d]
	return nil
}

// Selected returns the chosen targets in candidate order.
func (c *CopyDialog) Selected() []availability.DayID {
	out := make([]availability.DayID, 0, len(c.Candidates))
	for _, d := range c.Candidates {
		if c.selected[d] {
			out = append(out, d)
		}
	}
	return out
}

// Confirm copies the source day onto the selected targets.
func (c *CopyDialog) Confirm(ed *availability.Editor) error {
	return ed.CopyDay(c.Source, c.Selected())
}
