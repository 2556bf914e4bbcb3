package calendar

import (
	"sort"
	"time"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
	"github.com/Kayky4/vitasyn/internal/slots"
)

// Cell is one hour row of a day column.
type Cell struct {
	Hour int     `json:"hour"`
	Top  float64 `json:"top"`
	// Available is false for hatched cells. Hatched cells still accept new blocks.
	Available bool `json:"available"`
}

// Block is an event positioned inside a day column.
type Block struct {
	Event               model.ScheduledEvent `json:"event"`
	Top                 float64              `json:"top"`
	Height              float64              `json:"height"`
	Manual              bool                 `json:"manual"`
	OutsideAvailability bool                 `json:"outsideAvailability"`
}

// Column is one visible day.
type Column struct {
	Date   time.Time          `json:"date"`
	Day    availability.DayID `json:"day"`
	Today  bool               `json:"today"`
	Cells  []Cell             `json:"cells"`
	Blocks []Block            `json:"blocks"`
	// NowTop is the current-time marker offset, set only on today's column.
	NowTop *float64 `json:"nowTop,omitempty"`
}

// Grid is a fully laid-out calendar view.
type Grid struct {
	Mode    ViewMode               `json:"mode"`
	Hours   []int                  `json:"hours"`
	Height  float64                `json:"height"`
	Columns []Column               `json:"columns,omitempty"`
	Agenda  []model.ScheduledEvent `json:"agenda,omitempty"`
}

// Engine turns a schedule and an event list into a grid.
type Engine struct {
	cfg Config
	now func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a layout engine.
func NewEngine(cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the presentation constants in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// Layout renders the days of mode around anchor. Agenda mode renders the list instead of columns.
func (e *Engine) Layout(mode ViewMode, anchor time.Time, w availability.Weekly, events []model.ScheduledEvent) Grid {
	days := e.cfg.VisibleDays(anchor, mode)
	grid := Grid{
		Mode:   mode,
		Hours:  e.cfg.Hours(),
		Height: e.cfg.GridHeight(),
	}
	if mode == ModeAgenda {
		grid.Agenda = e.Agenda(days[0], events)
		return grid
	}

	now := e.now()
	loc := e.cfg.location()
	grid.Columns = make([]Column, 0, len(days))
	for _, day := range days {
		col := Column{
			Date:   day,
			Day:    availability.DayOfDate(day),
			Today:  model.SameDay(day, now, loc),
			Cells:  e.cells(day, w),
			Blocks: []Block{},
		}
		for _, ev := range events {
			if !ev.OnDay(day, loc) {
				continue
			}
			if b, ok := e.Place(ev, w); ok {
				col.Blocks = append(col.Blocks, b)
			}
		}
		sort.SliceStable(col.Blocks, func(i, j int) bool {
			return col.Blocks[i].Event.StartAt.Before(col.Blocks[j].Event.StartAt)
		})
		if col.Today {
			if top, ok := e.NowOffset(); ok {
				col.NowTop = &top
			}
		}
		grid.Columns = append(grid.Columns, col)
	}
	return grid
}

func (e *Engine) cells(day time.Time, w availability.Weekly) []Cell {
	hours := e.cfg.Hours()
	cells := make([]Cell, len(hours))
	for i, h := range hours {
		cells[i] = Cell{
			Hour:      h,
			Top:       e.cfg.Offset(float64((h - e.cfg.AxisStartHour) * 60)),
			Available: slots.IsAvailable(w, day, h),
		}
	}
	return cells
}

// Place positions one event. Events starting before the axis start are not placed.
func (e *Engine) Place(ev model.ScheduledEvent, w availability.Weekly) (Block, bool) {
	start := ev.StartAt.In(e.cfg.location())
	if start.Hour() < e.cfg.AxisStartHour {
		return Block{}, false
	}
	sinceAxis := (start.Hour()-e.cfg.AxisStartHour)*60 + start.Minute()
	height := e.cfg.Offset(ev.Duration().Minutes())
	if height < e.cfg.MinBlockHeight {
		height = e.cfg.MinBlockHeight
	}
	return Block{
		Event:               ev,
		Top:                 e.cfg.Offset(float64(sinceAxis)),
		Height:              height,
		Manual:              ev.IsManualBlock(),
		OutsideAvailability: e.outside(start, ev.EndAt.In(e.cfg.location()), w),
	}, true
}

// outside reports whether any hour cell the event touches is unshaded.
func (e *Engine) outside(start, end time.Time, w availability.Weekly) bool {
	last := start.Hour()
	if end.After(start) {
		lastInstant := end.Add(-time.Nanosecond)
		if model.SameDay(start, lastInstant, e.cfg.location()) {
			last = lastInstant.Hour()
		} else {
			last = 23
		}
	}
	for h := start.Hour(); h <= last; h++ {
		if !slots.IsAvailable(w, start, h) {
			return true
		}
	}
	return false
}

// Agenda lists every event of day sorted by start, whatever its hour.
func (e *Engine) Agenda(day time.Time, events []model.ScheduledEvent) []model.ScheduledEvent {
	out := make([]model.ScheduledEvent, 0)
	for _, ev := range events {
		if ev.OnDay(day, e.cfg.location()) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}

// NowOffset positions the current-time marker. ok is false outside the rendered axis.
func (e *Engine) NowOffset() (float64, bool) {
	now := e.now().In(e.cfg.location())
	minute := now.Hour()*60 + now.Minute()
	if minute < e.cfg.AxisStartHour*60 || minute >= (e.cfg.AxisEndHour+1)*60 {
		return 0, false
	}
	return e.cfg.Offset(float64(minute - e.cfg.AxisStartHour*60)), true
}
