package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

func TestNewBlockDraft(t *testing.T) {
	engine := NewEngine(testConfig())
	day := time.Date(2026, 1, 14, 17, 45, 0, 0, time.UTC)

	d := engine.NewBlockDraft(day, 14)
	assert.Equal(t, DefaultBlockTitle, d.Title)
	assert.Equal(t, time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC), d.Start)
	assert.Equal(t, time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC), d.End)
}

func TestDraft_Validate(t *testing.T) {
	start := time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC)

	assert.NoError(t, Draft{Start: start, End: start.Add(15 * time.Minute)}.Validate())
	assert.ErrorIs(t, Draft{Start: start, End: start}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Draft{Start: start, End: start.Add(-time.Hour)}.Validate(), ErrInvalidRange)
}

func TestDraft_Event(t *testing.T) {
	start := time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC)

	ev := Draft{Title: "Almoço", Start: start, End: start.Add(time.Hour)}.Event("pro-1", now)
	assert.True(t, ev.IsManualBlock())
	assert.Equal(t, "pro-1", ev.ProfessionalID)
	assert.Equal(t, ManualProfessionalName, ev.ProfessionalName)
	assert.Equal(t, "Almoço", ev.PatientName)
	assert.Equal(t, model.StatusPaid, ev.Status)
	assert.Zero(t, ev.PriceCents)
	assert.Equal(t, now, ev.CreatedAt)

	untitled := Draft{Start: start, End: start.Add(time.Hour)}.Event("pro-1", now)
	assert.Equal(t, DefaultBlockTitle, untitled.PatientName)
}

func TestDetailsFor(t *testing.T) {
	block := DetailsFor(model.ScheduledEvent{PatientID: model.ManualPatientID})
	assert.True(t, block.CanDelete)
	assert.Empty(t, block.MeetLink)

	consult := DetailsFor(model.ScheduledEvent{PatientID: "pat-1", Meeting: &model.Meeting{MeetLink: "https://meet.google.com/x"}})
	assert.False(t, consult.CanDelete)
	assert.Equal(t, "https://meet.google.com/x", consult.MeetLink)
}

func TestCopyDialog(t *testing.T) {
	dlg, err := NewCopyDialog(availability.Wednesday)
	require.NoError(t, err)

	assert.Len(t, dlg.Candidates, 6)
	assert.NotContains(t, dlg.Candidates, availability.Wednesday)
	assert.Equal(t, []availability.DayID{availability.Monday, availability.Tuesday, availability.Thursday, availability.Friday}, dlg.Selected())

	require.NoError(t, dlg.Toggle(availability.Saturday))
	require.NoError(t, dlg.Toggle(availability.Monday))
	assert.Equal(t, []availability.DayID{availability.Tuesday, availability.Thursday, availability.Friday, availability.Saturday}, dlg.Selected())

	assert.ErrorIs(t, dlg.Toggle(availability.Wednesday), availability.ErrUnknownDay)

	_, err = NewCopyDialog("nope")
	assert.ErrorIs(t, err, availability.ErrUnknownDay)
}

func TestCopyDialog_Confirm(t *testing.T) {
	ed := availability.NewEditor(availability.Load(availability.Raw{
		"wednesday": map[string]any{"active": true, "start": "08:00", "end": "12:00"},
	}), model.DefaultSessionSettings())

	dlg, err := NewCopyDialog(availability.Wednesday)
	require.NoError(t, err)
	require.NoError(t, dlg.Confirm(ed))

	for _, d := range []availability.DayID{availability.Monday, availability.Tuesday, availability.Thursday, availability.Friday} {
		cfg, err := ed.Day(d)
		require.NoError(t, err)
		assert.True(t, cfg.Active, d)
		require.Len(t, cfg.Slots, 1)
		assert.Equal(t, "08:00", cfg.Slots[0].Start)
	}
	sat, _ := ed.Day(availability.Saturday)
	assert.False(t, sat.Active)
}
