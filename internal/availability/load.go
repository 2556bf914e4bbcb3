package availability

import "fmt"

// Raw is the availability field exactly as a store returned it. Each weekday value
// may be absent, canonical ({active, slots}), legacy ({active, start, end}) or garbage.
type Raw map[string]any

type shape int

const (
	shapeAbsent shape = iota
	shapeCanonical
	shapeLegacy
	shapeMalformed
)

// Load normalizes a stored schedule. The result always carries all seven days.
// Malformed days degrade to closed; they are never reported as errors.
func Load(raw Raw) Weekly {
	w := make(Weekly, len(AllDays))
	for _, d := range AllDays {
		var v any
		if raw != nil {
			v = raw[string(d)]
		}
		w[d] = loadDay(v)
	}
	return w
}

func classify(v any) (shape, map[string]any) {
	if v == nil {
		return shapeAbsent, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return shapeMalformed, nil
	}
	if _, ok := m["slots"]; ok {
		return shapeCanonical, m
	}
	_, hasStart := m["start"]
	_, hasEnd := m["end"]
	if hasStart || hasEnd {
		return shapeLegacy, m
	}
	if _, ok := m["active"]; ok {
		// {active} alone: a legacy day that never had hours.
		return shapeLegacy, m
	}
	return shapeMalformed, nil
}

func loadDay(v any) DayConfig {
	closed := DayConfig{Slots: []TimeInterval{}}

	kind, m := classify(v)
	switch kind {
	case shapeCanonical:
		cfg, ok := canonicalDay(m)
		if !ok {
			return closed
		}
		return cfg
	case shapeLegacy:
		cfg, ok := legacyDay(m)
		if !ok {
			return closed
		}
		return cfg
	default:
		return closed
	}
}

func activeFlag(m map[string]any) (bool, bool) {
	v, ok := m["active"]
	if !ok || v == nil {
		return false, true
	}
	b, ok := v.(bool)
	return b, ok
}

func canonicalDay(m map[string]any) (DayConfig, bool) {
	active, ok := activeFlag(m)
	if !ok {
		return DayConfig{}, false
	}
	list, ok := m["slots"].([]any)
	if !ok && m["slots"] != nil {
		return DayConfig{}, false
	}

	slots := make([]TimeInterval, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return DayConfig{}, false
		}
		start, okStart := entry["start"].(string)
		end, okEnd := entry["end"].(string)
		if !okStart || !okEnd {
			return DayConfig{}, false
		}
		if _, ok := ParseClock(start); !ok {
			return DayConfig{}, false
		}
		if _, ok := ParseClock(end); !ok {
			return DayConfig{}, false
		}
		id, _ := entry["id"].(string)
		if id == "" {
			id = migratedID(i)
		}
		slots = append(slots, TimeInterval{ID: id, Start: start, End: end}.validate())
	}
	return DayConfig{Active: active, Slots: slots}, true
}

func legacyDay(m map[string]any) (DayConfig, bool) {
	active, ok := activeFlag(m)
	if !ok {
		return DayConfig{}, false
	}
	if !active {
		return DayConfig{Slots: []TimeInterval{}}, true
	}
	start, okStart := m["start"].(string)
	end, okEnd := m["end"].(string)
	if !okStart || !okEnd {
		return DayConfig{}, false
	}
	if _, ok := ParseClock(start); !ok {
		return DayConfig{}, false
	}
	if _, ok := ParseClock(end); !ok {
		return DayConfig{}, false
	}
	iv := TimeInterval{ID: migratedID(0), Start: start, End: end}.validate()
	return DayConfig{Active: true, Slots: []TimeInterval{iv}}, true
}

// migratedID derives a stable id from the interval position.
func migratedID(i int) string {
	return fmt.Sprintf("migrated-%d", i+1)
}
