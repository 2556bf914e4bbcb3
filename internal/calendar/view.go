package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/Kayky4/vitasyn/internal/model"
)

// ViewMode selects how many days the grid shows.
type ViewMode string

const (
	ModeDay      ViewMode = "day"
	ModeThreeDay ViewMode = "3day"
	ModeWeek     ViewMode = "week"
	// ModeAgenda is the list rendering of a single day on narrow viewports.
	ModeAgenda ViewMode = "agenda"
)

var (
	ErrUnknownMode     = errors.New("unknown view mode")
	ErrModeUnavailable = errors.New("view mode unavailable at this width")
)

// ParseMode validates a mode name.
func ParseMode(s string) (ViewMode, error) {
	switch m := ViewMode(s); m {
	case ModeDay, ModeThreeDay, ModeWeek, ModeAgenda:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Step is the number of days Next and Prev move the anchor.
func (m ViewMode) Step() int {
	switch m {
	case ModeWeek:
		return 7
	case ModeThreeDay:
		return 3
	default:
		return 1
	}
}

type breakpoint int

const (
	narrow breakpoint = iota
	medium
	wide
)

func (c Config) breakpoint(width int) breakpoint {
	switch {
	case width < c.NarrowWidth:
		return narrow
	case width < c.WideWidth:
		return medium
	default:
		return wide
	}
}

// ModeForWidth is the viewport-driven default. A narrow viewport keeps agenda if it is already showing.
func (c Config) ModeForWidth(width int, current ViewMode) ViewMode {
	switch c.breakpoint(width) {
	case narrow:
		if current == ModeAgenda {
			return ModeAgenda
		}
		return ModeDay
	case medium:
		return ModeThreeDay
	default:
		return ModeWeek
	}
}

// VisibleDays lists the dates a mode shows for an anchor, each at midnight in the configured location.
func (c Config) VisibleDays(anchor time.Time, mode ViewMode) []time.Time {
	start := model.StartOfDay(anchor, c.location())
	switch mode {
	case ModeThreeDay:
		return consecutive(start, 3)
	case ModeWeek:
		back := (int(start.Weekday()) - int(c.WeekStart) + 7) % 7
		return consecutive(start.AddDate(0, 0, -back), 7)
	default:
		return []time.Time{start}
	}
}

func consecutive(from time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = from.AddDate(0, 0, i)
	}
	return days
}

// Navigator tracks the view mode and anchor date of one open calendar.
type Navigator struct {
	cfg    Config
	mode   ViewMode
	anchor time.Time
	width  int
}

// NewNavigator starts at anchor with the default mode for width.
func NewNavigator(cfg Config, width int, anchor time.Time) *Navigator {
	return &Navigator{
		cfg:    cfg,
		mode:   cfg.ModeForWidth(width, ""),
		anchor: model.StartOfDay(anchor, cfg.location()),
		width:  width,
	}
}

func (n *Navigator) Mode() ViewMode    { return n.mode }
func (n *Navigator) Anchor() time.Time { return n.anchor }

// SetMode applies an explicit user choice. Agenda exists only on narrow
// viewports and is entered from the day view.
func (n *Navigator) SetMode(m ViewMode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	if m == ModeAgenda && (n.cfg.breakpoint(n.width) != narrow || n.mode == ModeWeek || n.mode == ModeThreeDay) {
		return ErrModeUnavailable
	}
	n.mode = m
	return nil
}

// Resize re-applies the viewport default only when width crosses a breakpoint.
func (n *Navigator) Resize(width int) {
	crossed := n.cfg.breakpoint(width) != n.cfg.breakpoint(n.width)
	n.width = width
	if crossed {
		n.mode = n.cfg.ModeForWidth(width, n.mode)
	}
}

func (n *Navigator) Next() { n.anchor = n.anchor.AddDate(0, 0, n.mode.Step()) }
func (n *Navigator) Prev() { n.anchor = n.anchor.AddDate(0, 0, -n.mode.Step()) }

// Today moves the anchor to the date of now.
func (n *Navigator) Today(now time.Time) {
	n.anchor = model.StartOfDay(now, n.cfg.location())
}

// VisibleDays lists the dates currently shown.
func (n *Navigator) VisibleDays() []time.Time {
	return n.cfg.VisibleDays(n.anchor, n.mode)
}
