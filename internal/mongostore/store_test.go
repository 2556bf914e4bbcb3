package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestGetProfessional(t *testing.T) {
	mt := newMock(t)

	mt.Run("canonical document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "vitasyn.professionals", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "pro-1"},
			{Key: "name", Value: "Dra. Ana"},
			{Key: "sessionDuration", Value: 45},
			{Key: "bufferTime", Value: 5},
			{Key: "availability", Value: bson.D{
				{Key: "monday", Value: bson.D{
					{Key: "active", Value: true},
					{Key: "slots", Value: bson.A{
						bson.D{{Key: "id", Value: "s1"}, {Key: "start", Value: "09:00"}, {Key: "end", Value: "12:00"}},
					}},
				}},
				{Key: "tuesday", Value: bson.D{{Key: "active", Value: true}, {Key: "start", Value: "14:00"}, {Key: "end", Value: "18:00"}}},
			}},
		}))

		pro, err := New(mt.DB, nil).GetProfessional(context.Background(), "pro-1")
		require.NoError(mt, err)
		assert.Equal(mt, "Dra. Ana", pro.Name)
		assert.Equal(mt, model.SessionSettings{SessionDuration: 45, BufferTime: 5}, pro.Settings)

		w := availability.Load(pro.Availability)
		mon := w.Day(availability.Monday)
		require.Len(mt, mon.Slots, 1)
		assert.Equal(mt, "s1", mon.Slots[0].ID)
		tue := w.Day(availability.Tuesday)
		require.Len(mt, tue.Slots, 1)
		assert.Equal(mt, "14:00", tue.Slots[0].Start)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "vitasyn.professionals", mtest.FirstBatch))

		_, err := New(mt.DB, nil).GetProfessional(context.Background(), "missing")
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Message: "interrupted"}))

		_, err := New(mt.DB, nil).GetProfessional(context.Background(), "pro-1")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, model.ErrNotFound)
	})
}

func TestSaveAvailability(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := New(mt.DB, nil).SaveAvailability(context.Background(), "pro-1", availability.Document{
			Availability: map[availability.DayID]availability.Day{availability.Friday: {Active: true}},
			Settings:     model.DefaultSessionSettings(),
		})
		require.NoError(mt, err)
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "validation failed"}))

		err := New(mt.DB, nil).SaveAvailability(context.Background(), "pro-1", availability.Document{})
		require.Error(mt, err)
	})
}

func TestEvents(t *testing.T) {
	mt := newMock(t)
	start := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)

	mt.Run("insert keeps preset id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := New(mt.DB, nil).InsertEvent(context.Background(), model.ScheduledEvent{
			ID: "block-1", ProfessionalID: "pro-1", PatientID: model.ManualPatientID,
			StartAt: start, EndAt: start.Add(time.Hour),
		})
		require.NoError(mt, err)
		assert.Equal(mt, "block-1", id)
	})

	mt.Run("insert generates id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := New(mt.DB, nil).InsertEvent(context.Background(), model.ScheduledEvent{ProfessionalID: "pro-1"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, id)
	})

	mt.Run("query decodes events", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "vitasyn.consultations", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "c1"},
				{Key: "professionalId", Value: "pro-1"},
				{Key: "patientId", Value: "p1"},
				{Key: "start_at", Value: primitive.NewDateTimeFromTime(start)},
				{Key: "end_at", Value: primitive.NewDateTimeFromTime(start.Add(50 * time.Minute))},
				{Key: "status", Value: "pending"},
				{Key: "meeting", Value: bson.D{{Key: "meetLink", Value: "https://meet/x"}}},
			},
			bson.D{
				{Key: "_id", Value: "c2"},
				{Key: "professionalId", Value: "pro-1"},
				{Key: "patientId", Value: model.ManualPatientID},
				{Key: "start_at", Value: primitive.NewDateTimeFromTime(start.Add(2 * time.Hour))},
				{Key: "end_at", Value: primitive.NewDateTimeFromTime(start.Add(3 * time.Hour))},
				{Key: "status", Value: "paid"},
			},
		))

		window := &model.Window{From: start.Add(-10 * time.Hour), To: start.Add(14 * time.Hour)}
		events, err := New(mt.DB, nil).QueryEvents(context.Background(), "pro-1", window)
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		assert.Equal(mt, "c1", events[0].ID)
		assert.True(mt, events[0].StartAt.Equal(start))
		assert.Equal(mt, "https://meet/x", events[0].MeetLink())
		assert.True(mt, events[1].IsManualBlock())
		assert.Equal(mt, model.StatusPaid, events[1].Status)
	})

	mt.Run("remove missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := New(mt.DB, nil).RemoveEvent(context.Background(), "nope")
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("remove existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, New(mt.DB, nil).RemoveEvent(context.Background(), "c1"))
	})

	mt.Run("slot booked", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "vitasyn.consultations", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))

		booked, err := New(mt.DB, nil).IsSlotBooked(context.Background(), "pro-1", start, start.Add(50*time.Minute))
		require.NoError(mt, err)
		assert.True(mt, booked)
	})

	mt.Run("slot free", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "vitasyn.consultations", mtest.FirstBatch))

		booked, err := New(mt.DB, nil).IsSlotBooked(context.Background(), "pro-1", start, start.Add(50*time.Minute))
		require.NoError(mt, err)
		assert.False(mt, booked)
	})
}

func TestPlain(t *testing.T) {
	in := primitive.D{
		{Key: "monday", Value: primitive.M{
			"active": true,
			"slots":  primitive.A{primitive.D{{Key: "start", Value: "09:00"}}},
		}},
	}
	out := plain(in)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	day, ok := m["monday"].(map[string]any)
	require.True(t, ok)
	slots, ok := day["slots"].([]any)
	require.True(t, ok)
	slot, ok := slots[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "09:00", slot["start"])
}
