package config

import (
	"context"
	"os"
	"time"

	"github.com/Kayky4/vitasyn/internal/calendar"
)

// WatchCalendar reloads the calendar section of the config file on change
// and calls onUpdate with the new layout constants. It performs an initial
// load before entering the watch loop. Invalid edits are skipped.
func WatchCalendar(ctx context.Context, path string, interval time.Duration, onUpdate func(calendar.Config)) error {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	layout, err := loadLayout(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(layout)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				layout, err := loadLayout(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(layout)
				}
			}
		}
	}()

	return nil
}

func loadLayout(path string) (calendar.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return calendar.Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return calendar.Config{}, err
	}
	return cfg.Calendar.Layout()
}
