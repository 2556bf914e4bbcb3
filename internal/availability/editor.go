package availability

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Kayky4/vitasyn/internal/model"
)

// Field selects the side of an interval UpdateSlot changes.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

// Default intervals: activation fills the morning, AddSlot proposes the afternoon.
var (
	ActivationInterval = TimeInterval{Start: "09:00", End: "12:00"}
	AddedInterval      = TimeInterval{Start: "13:00", End: "17:00"}
)

// IDFunc generates interval ids.
type IDFunc func() string

// Option configures an Editor.
type Option func(*Editor)

// WithIDFunc overrides interval id generation.
func WithIDFunc(fn IDFunc) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// Editor owns one professional's schedule for the duration of an editing session.
// It is not safe for concurrent use.
type Editor struct {
	days     Weekly
	settings model.SessionSettings
	newID    IDFunc
}

// NewEditor starts an editing session over a loaded schedule.
func NewEditor(days Weekly, settings model.SessionSettings, opts ...Option) *Editor {
	e := &Editor{
		days:     Closed(),
		settings: settings,
		newID:    uuid.NewString,
	}
	for d, cfg := range days {
		if d.Valid() {
			e.days[d] = cfg.clone()
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Days returns a copy of the current schedule.
func (e *Editor) Days() Weekly {
	return e.days.Clone()
}

// Day returns a copy of one day's configuration.
func (e *Editor) Day(d DayID) (DayConfig, error) {
	if !d.Valid() {
		return DayConfig{}, fmt.Errorf("%w: %q", ErrUnknownDay, d)
	}
	return e.days[d].clone(), nil
}

// Settings returns the session settings being edited.
func (e *Editor) Settings() model.SessionSettings {
	return e.settings
}

// SetSessionSettings replaces the session settings after validating them.
func (e *Editor) SetSessionSettings(s model.SessionSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.settings = s
	return nil
}

// ToggleDay flips a day's active flag. Activating a day with no intervals
// gives it the default morning interval. Deactivating keeps the intervals.
func (e *Editor) ToggleDay(d DayID) error {
	cfg, err := e.Day(d)
	if err != nil {
		return err
	}
	cfg.Active = !cfg.Active
	if cfg.Active && len(cfg.Slots) == 0 {
		cfg.Slots = append(cfg.Slots, e.fresh(ActivationInterval))
	}
	e.days[d] = cfg
	return nil
}

// UpdateSlot sets the start or end of one interval and re-validates the whole day.
func (e *Editor) UpdateSlot(d DayID, slotID string, field Field, value string) error {
	cfg, err := e.Day(d)
	if err != nil {
		return err
	}
	i := cfg.slotIndex(slotID)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSlot, d, slotID)
	}
	switch field {
	case FieldStart:
		cfg.Slots[i].Start = value
	case FieldEnd:
		cfg.Slots[i].End = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	for j := range cfg.Slots {
		cfg.Slots[j] = cfg.Slots[j].validate()
	}
	e.days[d] = cfg
	return nil
}

// AddSlot appends the default afternoon interval to a day.
func (e *Editor) AddSlot(d DayID) (TimeInterval, error) {
	cfg, err := e.Day(d)
	if err != nil {
		return TimeInterval{}, err
	}
	iv := e.fresh(AddedInterval)
	cfg.Slots = append(cfg.Slots, iv)
	e.days[d] = cfg
	return iv, nil
}

// RemoveSlot deletes an interval by id. A day may end up active with no intervals.
func (e *Editor) RemoveSlot(d DayID, slotID string) error {
	cfg, err := e.Day(d)
	if err != nil {
		return err
	}
	i := cfg.slotIndex(slotID)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrUnknownSlot, d, slotID)
	}
	cfg.Slots = append(cfg.Slots[:i], cfg.Slots[i+1:]...)
	e.days[d] = cfg
	return nil
}

// CopyDay replicates the source day, active flag included, onto every target.
// Each copied interval receives a new id. The source itself is skipped if listed.
func (e *Editor) CopyDay(source DayID, targets []DayID) error {
	src, err := e.Day(source)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownDay, t)
		}
	}
	for _, t := range targets {
		if t == source {
			continue
		}
		cfg := DayConfig{Active: src.Active, Slots: make([]TimeInterval, len(src.Slots))}
		for i, iv := range src.Slots {
			iv.ID = e.newID()
			cfg.Slots[i] = iv
		}
		e.days[t] = cfg
	}
	return nil
}

// Validate lists every invalid interval, in editor day order.
func (e *Editor) Validate() ValidationErrors {
	var errs ValidationErrors
	for _, d := range EditorDays {
		for _, iv := range e.days[d].Slots {
			if _, _, ok := iv.Bounds(); !ok {
				errs = append(errs, ValidationError{Day: d, SlotID: iv.ID, Start: iv.Start, End: iv.End})
			}
		}
	}
	return errs
}

// Warnings lists active days that have no intervals left.
func (e *Editor) Warnings() []DayID {
	var out []DayID
	for _, d := range EditorDays {
		cfg := e.days[d]
		if cfg.Active && len(cfg.Slots) == 0 {
			out = append(out, d)
		}
	}
	return out
}

// Serialize produces the canonical document for all seven days.
// It refuses while any interval is invalid.
func (e *Editor) Serialize() (Document, error) {
	if errs := e.Validate(); len(errs) > 0 {
		return Document{}, errs
	}
	doc := Document{
		Availability: make(map[DayID]Day, len(AllDays)),
		Settings:     e.settings,
	}
	for _, d := range AllDays {
		cfg := e.days[d]
		day := Day{Active: cfg.Active, Slots: make([]Interval, 0, len(cfg.Slots))}
		for _, iv := range cfg.Slots {
			day.Slots = append(day.Slots, Interval{ID: iv.ID, Start: iv.Start, End: iv.End})
		}
		doc.Availability[d] = day
	}
	return doc, nil
}

func (e *Editor) fresh(tmpl TimeInterval) TimeInterval {
	return TimeInterval{ID: e.newID(), Start: tmpl.Start, End: tmpl.End}
}
