package gcal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/Kayky4/vitasyn/internal/model"
)

type fakeCalendar struct {
	*httptest.Server
	inserted  atomic.Int32
	lastQuery url.Values
	lastBody  map[string]any
	lastAuth  string
	fail      bool
}

func newFakeCalendar(t *testing.T) *fakeCalendar {
	f := &fakeCalendar{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("refresh_token") != "refresh-1" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		f.inserted.Add(1)
		f.lastQuery = r.URL.Query()
		f.lastAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &f.lastBody)
		if f.fail {
			http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-123","hangoutLink":"https://meet.google.com/abc-defg-hij"}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCalendar) scheduler() *Scheduler {
	return New(Config{ClientID: "client", ClientSecret: "secret"}, nil,
		WithEndpoint(f.URL+"/token", f.URL+"/"),
		WithHTTPClient(f.Client()),
	)
}

func consultation() model.ScheduledEvent {
	start := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)
	return model.ScheduledEvent{
		ID:          "consult-1",
		PatientName: "João",
		StartAt:     start,
		EndAt:       start.Add(50 * time.Minute),
	}
}

func TestCreateMeeting(t *testing.T) {
	f := newFakeCalendar(t)
	pro := &model.Professional{ID: "pro-1", Name: "Dra. Ana", RefreshToken: "refresh-1"}

	meeting, err := f.scheduler().CreateMeeting(context.Background(), pro, consultation())
	require.NoError(t, err)
	assert.Equal(t, "evt-123", meeting.CalendarEventID)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", meeting.MeetLink)

	assert.Equal(t, "1", f.lastQuery.Get("conferenceDataVersion"))
	assert.Equal(t, "Bearer access-1", f.lastAuth)
	assert.Equal(t, EventSummary, f.lastBody["summary"])
	assert.Equal(t, "Consultation between Dra. Ana and João", f.lastBody["description"])

	start := f.lastBody["start"].(map[string]any)
	assert.Equal(t, "2026-01-14T10:00:00Z", start["dateTime"])

	conf := f.lastBody["conferenceData"].(map[string]any)
	req := conf["createRequest"].(map[string]any)
	assert.Equal(t, "consult-1", req["requestId"])
	assert.Equal(t, "hangoutsMeet", req["conferenceSolutionKey"].(map[string]any)["type"])
}

func TestCreateMeeting_NoCredentials(t *testing.T) {
	f := newFakeCalendar(t)

	_, err := f.scheduler().CreateMeeting(context.Background(), &model.Professional{ID: "pro-1"}, consultation())
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Zero(t, f.inserted.Load())
}

func TestCreateMeeting_APIError(t *testing.T) {
	f := newFakeCalendar(t)
	f.fail = true
	pro := &model.Professional{ID: "pro-1", RefreshToken: "refresh-1"}

	_, err := f.scheduler().CreateMeeting(context.Background(), pro, consultation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert calendar event")
}

func TestCreateMeeting_RevokedToken(t *testing.T) {
	f := newFakeCalendar(t)
	pro := &model.Professional{ID: "pro-1", RefreshToken: "revoked"}

	_, err := f.scheduler().CreateMeeting(context.Background(), pro, consultation())
	require.Error(t, err)
	assert.Zero(t, f.inserted.Load())
}

func TestCreateMeeting_RateLimitHonorsContext(t *testing.T) {
	f := newFakeCalendar(t)
	s := New(Config{RequestsPerSecond: 0.001, Burst: 1}, nil, WithEndpoint(f.URL+"/token", f.URL+"/"), WithHTTPClient(f.Client()))
	pro := &model.Professional{ID: "pro-1", RefreshToken: "refresh-1"}

	_, err := s.CreateMeeting(context.Background(), pro, consultation())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.CreateMeeting(ctx, pro, consultation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.EqualValues(t, 1, f.inserted.Load())
}

func TestBuildEvent_DefaultPatientName(t *testing.T) {
	ev := buildEvent(&model.Professional{Name: "Dra. Ana"}, model.ScheduledEvent{ID: "c1"})
	assert.Equal(t, "Consultation between Dra. Ana and Patient", ev.Description)
	assert.Equal(t, "", meetLink(ev))
}

func TestMeetLink_FallsBackToEntryPoint(t *testing.T) {
	ev := &calendar.Event{ConferenceData: &calendar.ConferenceData{EntryPoints: []*calendar.EntryPoint{
		{EntryPointType: "phone", Uri: "tel:+55-11"},
		{EntryPointType: "video", Uri: "https://meet.google.com/xyz"},
	}}}
	assert.Equal(t, "https://meet.google.com/xyz", meetLink(ev))
}
