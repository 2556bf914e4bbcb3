package availability

// TimeInterval is one availability window within a day.
type TimeInterval struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	// Invalid is set by validation when Start is not strictly before End. It is never persisted.
	Invalid bool `json:"invalid,omitempty"`
}

// Bounds returns the interval in minutes since midnight. ok is false when either
// side does not parse or the interval is empty or reversed.
func (iv TimeInterval) Bounds() (start, end int, ok bool) {
	start, okStart := ParseClock(iv.Start)
	end, okEnd := ParseClock(iv.End)
	if !okStart || !okEnd || start >= end {
		return 0, 0, false
	}
	return start, end, true
}

// Covers reports whether minute falls in [start, end) of a valid interval.
func (iv TimeInterval) Covers(minute int) bool {
	start, end, ok := iv.Bounds()
	return ok && start <= minute && minute < end
}

func (iv TimeInterval) validate() TimeInterval {
	_, _, ok := iv.Bounds()
	iv.Invalid = !ok
	return iv
}

// DayConfig is the active flag and ordered interval list of one weekday.
type DayConfig struct {
	Active bool           `json:"active"`
	Slots  []TimeInterval `json:"slots"`
}

// Open reports whether the day has at least one bookable interval.
func (d DayConfig) Open() bool {
	if !d.Active {
		return false
	}
	for _, iv := range d.Slots {
		if _, _, ok := iv.Bounds(); ok {
			return true
		}
	}
	return false
}

func (d DayConfig) clone() DayConfig {
	slots := make([]TimeInterval, len(d.Slots))
	copy(slots, d.Slots)
	return DayConfig{Active: d.Active, Slots: slots}
}

func (d DayConfig) slotIndex(id string) int {
	for i, iv := range d.Slots {
		if iv.ID == id {
			return i
		}
	}
	return -1
}

// Weekly maps every weekday to its configuration.
type Weekly map[DayID]DayConfig

// Closed returns a schedule with all seven days inactive.
func Closed() Weekly {
	w := make(Weekly, len(AllDays))
	for _, d := range AllDays {
		w[d] = DayConfig{Slots: []TimeInterval{}}
	}
	return w
}

// Day returns the configuration of d, or a closed day when missing.
func (w Weekly) Day(d DayID) DayConfig {
	cfg, ok := w[d]
	if !ok {
		return DayConfig{Slots: []TimeInterval{}}
	}
	return cfg
}

// Clone deep-copies the schedule.
func (w Weekly) Clone() Weekly {
	out := make(Weekly, len(w))
	for d, cfg := range w {
		out[d] = cfg.clone()
	}
	return out
}

// Raw renders the schedule in canonical stored shape, suitable for Load.
func (w Weekly) Raw() Raw {
	raw := make(Raw, len(w))
	for d, cfg := range w {
		slots := make([]any, 0, len(cfg.Slots))
		for _, iv := range cfg.Slots {
			slots = append(slots, map[string]any{"id": iv.ID, "start": iv.Start, "end": iv.End})
		}
		raw[string(d)] = map[string]any{"active": cfg.Active, "slots": slots}
	}
	return raw
}
