package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

type mockProfessionals struct {
	mock.Mock
}

func (m *mockProfessionals) GetProfessional(ctx context.Context, id string) (*model.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Professional), args.Error(1)
}

func (m *mockProfessionals) SaveAvailability(ctx context.Context, id string, doc availability.Document) error {
	return m.Called(ctx, id, doc).Error(0)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) QueryEvents(ctx context.Context, professionalID string, window *model.Window) ([]model.ScheduledEvent, error) {
	args := m.Called(ctx, professionalID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduledEvent), args.Error(1)
}

func (m *mockEvents) InsertEvent(ctx context.Context, ev model.ScheduledEvent) (string, error) {
	args := m.Called(ctx, ev)
	return args.String(0), args.Error(1)
}

func (m *mockEvents) RemoveEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEvents) QueryPatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduledEvent), args.Error(1)
}

type mockMeetings struct {
	mock.Mock
}

func (m *mockMeetings) CreateMeeting(ctx context.Context, pro *model.Professional, ev model.ScheduledEvent) (*model.Meeting, error) {
	args := m.Called(ctx, pro, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// 2026-01-14 is a Wednesday.
func wed(hour, min int) time.Time {
	return time.Date(2026, 1, 14, hour, min, 0, 0, time.UTC)
}

func weekdayRaw() availability.Raw {
	return availability.Raw{
		"wednesday": map[string]any{"active": true, "slots": []any{
			map[string]any{"id": "w1", "start": "09:00", "end": "12:00"},
			map[string]any{"id": "w2", "start": "13:00", "end": "18:00"},
		}},
		"monday": map[string]any{"active": true, "start": "09:00", "end": "17:00"},
	}
}
