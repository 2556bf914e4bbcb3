package availability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFromJSON(t *testing.T, s string) Raw {
	t.Helper()
	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestLoad_AlwaysSevenDays(t *testing.T) {
	for _, raw := range []Raw{nil, {}, {"monday": nil}, {"holiday": map[string]any{"active": true}}} {
		w := Load(raw)
		assert.Len(t, w, 7)
		for _, d := range AllDays {
			cfg, ok := w[d]
			require.True(t, ok, d)
			assert.False(t, cfg.Active)
			assert.NotNil(t, cfg.Slots)
			assert.Empty(t, cfg.Slots)
		}
	}
}

func TestLoad_LegacyShape(t *testing.T) {
	raw := rawFromJSON(t, `{
		"monday": {"active": true, "start": "09:00", "end": "12:00"},
		"tuesday": {"active": false, "start": "08:00", "end": "18:00"},
		"wednesday": {"active": true}
	}`)

	w := Load(raw)

	monday := w[Monday]
	assert.True(t, monday.Active)
	require.Len(t, monday.Slots, 1)
	assert.Equal(t, "09:00", monday.Slots[0].Start)
	assert.Equal(t, "12:00", monday.Slots[0].End)
	assert.NotEmpty(t, monday.Slots[0].ID)
	assert.False(t, monday.Slots[0].Invalid)

	// Closed legacy days never carry their old hours forward.
	assert.Equal(t, DayConfig{Slots: []TimeInterval{}}, w[Tuesday])

	// Active legacy day without hours is malformed.
	assert.Equal(t, DayConfig{Slots: []TimeInterval{}}, w[Wednesday])
}

func TestLoad_CanonicalPassThrough(t *testing.T) {
	raw := rawFromJSON(t, `{
		"friday": {"active": true, "slots": [
			{"id": "a", "start": "08:00", "end": "12:00"},
			{"id": "b", "start": "13:00", "end": "18:00"}
		]},
		"saturday": {"active": false, "slots": [{"id": "c", "start": "09:00", "end": "10:00"}]}
	}`)

	w := Load(raw)

	assert.Equal(t, DayConfig{Active: true, Slots: []TimeInterval{
		{ID: "a", Start: "08:00", End: "12:00"},
		{ID: "b", Start: "13:00", End: "18:00"},
	}}, w[Friday])
	// Inactive days keep residual slots.
	assert.Equal(t, DayConfig{Slots: []TimeInterval{{ID: "c", Start: "09:00", End: "10:00"}}}, w[Saturday])
}

func TestLoad_MalformedDegradesToClosed(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not an object", `{"monday": "open"}`},
		{"unparseable legacy time", `{"monday": {"active": true, "start": "9h", "end": "12:00"}}`},
		{"legacy missing end", `{"monday": {"active": true, "start": "09:00"}}`},
		{"slots not a list", `{"monday": {"active": true, "slots": "09:00-12:00"}}`},
		{"slot missing start", `{"monday": {"active": true, "slots": [{"id": "a", "end": "12:00"}]}}`},
		{"slot bad minute", `{"monday": {"active": true, "slots": [{"id": "a", "start": "09:75", "end": "12:00"}]}}`},
		{"active not bool", `{"monday": {"active": "yes", "slots": []}}`},
		{"empty object", `{"monday": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Load(rawFromJSON(t, tt.json))
			assert.Equal(t, DayConfig{Slots: []TimeInterval{}}, w[Monday])
		})
	}
}

func TestLoad_FlagsReversedIntervals(t *testing.T) {
	w := Load(rawFromJSON(t, `{"monday": {"active": true, "slots": [
		{"id": "a", "start": "12:00", "end": "09:00"},
		{"id": "b", "start": "13:00", "end": "13:00"},
		{"id": "c", "start": "14:00", "end": "15:00"}
	]}}`))

	slots := w[Monday].Slots
	require.Len(t, slots, 3)
	assert.True(t, slots[0].Invalid)
	assert.True(t, slots[1].Invalid)
	assert.False(t, slots[2].Invalid)
}

func TestLoad_MissingIDsAreStable(t *testing.T) {
	raw := rawFromJSON(t, `{"monday": {"active": true, "slots": [
		{"start": "08:00", "end": "12:00"},
		{"start": "13:00", "end": "18:00"}
	]}}`)

	first := Load(raw)
	second := Load(raw)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first[Monday].Slots[0].ID, first[Monday].Slots[1].ID)
}

func TestLoad_Idempotent(t *testing.T) {
	inputs := []string{
		`{"monday": {"active": true, "start": "09:00", "end": "12:00"}}`,
		`{"monday": {"active": true, "start": "09:00", "end": "17:00"}, "tuesday": {"active": false}}`,
		`{"friday": {"active": true, "slots": [{"id": "x", "start": "08:00", "end": "12:00"}]}}`,
		`{"sunday": "garbage"}`,
	}
	for _, in := range inputs {
		once := Load(rawFromJSON(t, in))
		twice := Load(once.Raw())
		assert.Equal(t, once, twice, in)
	}
}

func TestLoad_LegacyProducesSingleInterval(t *testing.T) {
	w := Load(Raw{"thursday": map[string]any{"active": true, "start": "09:00", "end": "12:00"}})

	require.Len(t, w[Thursday].Slots, 1)
	assert.Equal(t, "09:00", w[Thursday].Slots[0].Start)
	assert.Equal(t, "12:00", w[Thursday].Slots[0].End)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"9:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"12", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
		{"12:5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "17:00", FormatClock(17*60))
}
