package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/config"
	"github.com/Kayky4/vitasyn/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 1, day, hour, minute, 0, 0, time.UTC)
}

func consultation(id, patient string, start time.Time, minutes int, status model.Status) model.ScheduledEvent {
	return model.ScheduledEvent{
		ID:               id,
		ProfessionalID:   "pro-1",
		ProfessionalName: "Dra. Ana",
		PatientID:        patient,
		PatientName:      "Paciente " + patient,
		StartAt:          start,
		EndAt:            start.Add(time.Duration(minutes) * time.Minute),
		Status:           status,
		PriceCents:       15000,
		CreatedAt:        at(1, 8, 0),
	}
}

func TestNewDB_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	d, err := NewDB(path, nil)
	require.NoError(t, err)
	_, err = d.InsertEvent(context.Background(), consultation("c1", "p1", at(14, 10, 0), 50, model.StatusPending))
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = NewDB(path, nil)
	require.NoError(t, err)
	defer d.Close()
	events, err := d.QueryEvents(context.Background(), "pro-1", nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, path, d.Path())
}

func TestProfessionals_SaveAndGet(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.GetProfessional(ctx, "pro-1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, d.UpsertProfessional(ctx, &model.Professional{ID: "pro-1", Name: "Dra. Ana", RefreshToken: "tok"}))

	doc := availability.Document{
		Availability: map[availability.DayID]availability.Day{
			availability.Monday: {Active: true, Slots: []availability.Interval{{ID: "a", Start: "09:00", End: "12:00"}}},
			availability.Sunday: {Active: false},
		},
		Settings: model.SessionSettings{SessionDuration: 45, BufferTime: 15},
	}
	require.NoError(t, d.SaveAvailability(ctx, "pro-1", doc))

	pro, err := d.GetProfessional(ctx, "pro-1")
	require.NoError(t, err)
	assert.Equal(t, "Dra. Ana", pro.Name)
	assert.Equal(t, "tok", pro.RefreshToken)
	assert.Equal(t, model.SessionSettings{SessionDuration: 45, BufferTime: 15}, pro.Settings)

	w := availability.Load(pro.Availability)
	mon := w.Day(availability.Monday)
	assert.True(t, mon.Active)
	require.Len(t, mon.Slots, 1)
	assert.Equal(t, "a", mon.Slots[0].ID)
	assert.False(t, w.Day(availability.Sunday).Active)

	// Profile updates leave availability alone.
	require.NoError(t, d.UpsertProfessional(ctx, &model.Professional{ID: "pro-1", Name: "Dra. Ana Lima"}))
	pro, err = d.GetProfessional(ctx, "pro-1")
	require.NoError(t, err)
	assert.Equal(t, "Dra. Ana Lima", pro.Name)
	assert.Equal(t, 45, pro.Settings.SessionDuration)
	assert.True(t, availability.Load(pro.Availability).Day(availability.Monday).Active)
}

func TestProfessionals_LegacyAvailabilityIsMigratedOnRead(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	raw := availability.Raw{"tuesday": map[string]any{"active": true, "start": "08:00", "end": "12:00"}}
	require.NoError(t, d.SetRawAvailability(ctx, "pro-legacy", raw))

	pro, err := d.GetProfessional(ctx, "pro-legacy")
	require.NoError(t, err)

	tue := availability.Load(pro.Availability).Day(availability.Tuesday)
	require.Len(t, tue.Slots, 1)
	assert.Equal(t, "08:00", tue.Slots[0].Start)
	assert.Equal(t, "12:00", tue.Slots[0].End)
}

func TestProfessionals_CorruptAvailabilityReadsAsNone(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.ExecContext(ctx, `INSERT INTO professionals (id, availability) VALUES (?, ?)`, "pro-bad", "{not json")
	require.NoError(t, err)

	pro, err := d.GetProfessional(ctx, "pro-bad")
	require.NoError(t, err)
	assert.Nil(t, pro.Availability)
}

func TestConsultations_InsertQueryRemove(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	ev := consultation("", "p1", at(14, 10, 0), 50, model.StatusPaid)
	ev.Meeting = &model.Meeting{CalendarEventID: "gcal-1", MeetLink: "https://meet.google.com/abc"}
	ev.Payment = &model.Payment{ChargeID: "ch_1", PaidAt: at(13, 9, 0)}
	id, err := d.InsertEvent(ctx, ev)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = d.InsertEvent(ctx, consultation("kept-id", "p2", at(15, 9, 0), 50, model.StatusPending))
	require.NoError(t, err)
	_, err = d.InsertEvent(ctx, consultation("early", "p1", at(14, 8, 0), 50, model.StatusPending))
	require.NoError(t, err)

	window := &model.Window{From: at(14, 0, 0), To: at(15, 0, 0)}
	events, err := d.QueryEvents(ctx, "pro-1", window)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, id, events[1].ID)
	assert.True(t, events[1].StartAt.Equal(at(14, 10, 0)))
	assert.True(t, events[1].EndAt.Equal(at(14, 10, 50)))
	assert.Equal(t, model.StatusPaid, events[1].Status)
	assert.Equal(t, "https://meet.google.com/abc", events[1].MeetLink())
	require.NotNil(t, events[1].Payment)
	assert.Equal(t, "ch_1", events[1].Payment.ChargeID)
	assert.True(t, events[1].Payment.PaidAt.Equal(at(13, 9, 0)))
	assert.Nil(t, events[0].Meeting)

	all, err := d.QueryEvents(ctx, "pro-1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	patient, err := d.QueryPatientEvents(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, patient, 2)
	assert.Equal(t, id, patient[0].ID, "newest first")

	require.NoError(t, d.RemoveEvent(ctx, "kept-id"))
	assert.ErrorIs(t, d.RemoveEvent(ctx, "kept-id"), model.ErrNotFound)
}

func TestIsSlotBooked(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.InsertEvent(ctx, consultation("c1", "p1", at(14, 10, 0), 50, model.StatusPending))
	require.NoError(t, err)
	_, err = d.InsertEvent(ctx, consultation("c2", "p2", at(14, 14, 0), 50, model.StatusCancelled))
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"same interval", at(14, 10, 0), at(14, 10, 50), true},
		{"partial overlap", at(14, 10, 30), at(14, 11, 20), true},
		{"touching end", at(14, 10, 50), at(14, 11, 40), false},
		{"touching start", at(14, 9, 10), at(14, 10, 0), false},
		{"cancelled frees time", at(14, 14, 0), at(14, 14, 50), false},
		{"other day", at(15, 10, 0), at(15, 10, 50), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.IsSlotBooked(ctx, "pro-1", tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := d.IsSlotBooked(ctx, "pro-2", at(14, 10, 0), at(14, 10, 50))
	require.NoError(t, err)
	assert.False(t, got)
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return Wrap(sqlDB, nil), mock
}

func TestSaveAvailability_WriteFailure(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO professionals")).
		WithArgs("pro-1", sqlmock.AnyArg(), 50, 10, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	err := d.SaveAvailability(context.Background(), "pro-1", availability.Document{
		Availability: map[availability.DayID]availability.Day{},
		Settings:     model.DefaultSessionSettings(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfessional_NoRowsAndFailure(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, availability")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "availability", "session_duration", "buffer_time", "google_refresh_token"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, availability")).
		WithArgs("pro-1").
		WillReturnError(errors.New("database is locked"))

	_, err := d.GetProfessional(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = d.GetProfessional(context.Background(), "pro-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveEvent_Failure(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM consultations")).
		WithArgs("c1").
		WillReturnError(errors.New("database is locked"))

	err := d.RemoveEvent(context.Background(), "c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupService(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	_, err := d.InsertEvent(ctx, consultation("c1", "p1", at(14, 10, 0), 50, model.StatusPending))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	svc := NewBackupService(d, config.BackupConfig{Enabled: true, Path: dir, RetentionDays: 7}, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 20, 3, 0, 0, 0, time.UTC) }

	path, err := svc.PerformBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_20260120_030000.db"), path)

	restored, err := NewDB(path, nil)
	require.NoError(t, err)
	defer restored.Close()
	events, err := restored.QueryEvents(ctx, "pro-1", nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	old := filepath.Join(dir, "backup_20260101_030000.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	stale := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, stale, stale))
	// The fresh backup's mtime is the wall clock, which is after the cutoff.
	svc.now = time.Now

	assert.Equal(t, 1, svc.CleanupOldBackups())
	assert.NoFileExists(t, old)
	assert.FileExists(t, path)
}

func TestBackupService_DisabledReturnsImmediately(t *testing.T) {
	d := newTestDB(t)
	svc := NewBackupService(d, config.BackupConfig{Enabled: false}, nil)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service did not return")
	}
}
