package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the presentation constants of the calendar grid.
type Config struct {
	// AxisStartHour and AxisEndHour bound the rendered rows, both inclusive.
	AxisStartHour int
	AxisEndHour   int
	// RowHeight is the pixel height of one hour row.
	RowHeight float64
	// MinBlockHeight keeps short events clickable.
	MinBlockHeight float64
	WeekStart      time.Weekday
	// Viewports narrower than NarrowWidth show one day, narrower than WideWidth three.
	NarrowWidth int
	WideWidth   int
	Location    *time.Location
}

// DefaultConfig returns the standard 06:00–21:00, Sunday-start grid.
func DefaultConfig() Config {
	return Config{
		AxisStartHour:  6,
		AxisEndHour:    21,
		RowHeight:      80,
		MinBlockHeight: 32,
		WeekStart:      time.Sunday,
		NarrowWidth:    640,
		WideWidth:      1024,
		Location:       time.Local,
	}
}

// Validate checks the axis and breakpoints are coherent.
func (c Config) Validate() error {
	var errs []error
	if c.AxisStartHour < 0 || c.AxisEndHour > 23 || c.AxisStartHour > c.AxisEndHour {
		errs = append(errs, fmt.Errorf("axis %d–%d out of range", c.AxisStartHour, c.AxisEndHour))
	}
	if c.RowHeight <= 0 {
		errs = append(errs, errors.New("row height must be positive"))
	}
	if c.MinBlockHeight < 0 {
		errs = append(errs, errors.New("min block height must not be negative"))
	}
	if c.WeekStart < time.Sunday || c.WeekStart > time.Saturday {
		errs = append(errs, fmt.Errorf("invalid week start %d", c.WeekStart))
	}
	if c.NarrowWidth <= 0 || c.WideWidth <= c.NarrowWidth {
		errs = append(errs, fmt.Errorf("breakpoints %d/%d must be increasing", c.NarrowWidth, c.WideWidth))
	}
	return errors.Join(errs...)
}

// Hours lists the rendered hour rows.
func (c Config) Hours() []int {
	hours := make([]int, 0, c.AxisEndHour-c.AxisStartHour+1)
	for h := c.AxisStartHour; h <= c.AxisEndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// GridHeight is the total pixel height of the time axis.
func (c Config) GridHeight() float64 {
	return float64(c.AxisEndHour-c.AxisStartHour+1) * c.RowHeight
}

// Offset converts minutes since the axis start into pixels.
func (c Config) Offset(minutes float64) float64 {
	return minutes * c.RowHeight / 60
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
