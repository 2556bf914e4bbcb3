// Package firestore keeps professionals and consultations in Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	gfs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

const (
	professionalsCollection = "professionals"
	consultationsCollection = "consultations"
)

// maxEventLength bounds the look-back of the overlap query.
const maxEventLength = 24 * time.Hour

type Store struct {
	client *gfs.Client
	logger zerolog.Logger
}

// NewClient initializes the Firebase app and returns its Firestore client.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*gfs.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Firestore client: %w", err)
	}
	return client, nil
}

func New(client *gfs.Client, logger *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "firestore").Logger()
	}
	return &Store{client: client, logger: l}
}

func (s *Store) GetProfessional(ctx context.Context, professionalID string) (*model.Professional, error) {
	snap, err := s.client.Collection(professionalsCollection).Doc(professionalID).Get(ctx)
	if isNotFound(err) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get professional %s: %w", professionalID, err)
	}
	return professionalFromData(snap.Ref.ID, snap.Data()), nil
}

// SaveAvailability merges schedule and settings into the professional document in one write.
func (s *Store) SaveAvailability(ctx context.Context, professionalID string, doc availability.Document) error {
	data := map[string]any{
		"availability":    map[string]any(doc.Raw()),
		"sessionDuration": doc.Settings.SessionDuration,
		"bufferTime":      doc.Settings.BufferTime,
		"updatedAt":       gfs.ServerTimestamp,
	}
	_, err := s.client.Collection(professionalsCollection).Doc(professionalID).Set(ctx, data, gfs.MergeAll)
	if err != nil {
		return fmt.Errorf("save availability %s: %w", professionalID, err)
	}
	return nil
}

func (s *Store) QueryEvents(ctx context.Context, professionalID string, window *model.Window) ([]model.ScheduledEvent, error) {
	q := s.client.Collection(consultationsCollection).Where("professionalId", "==", professionalID)
	if window != nil {
		q = q.Where("start_at", ">=", window.From).Where("start_at", "<", window.To)
	}
	return s.collect(ctx, q.OrderBy("start_at", gfs.Asc))
}

func (s *Store) QueryPatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error) {
	q := s.client.Collection(consultationsCollection).Where("patientId", "==", patientID).OrderBy("start_at", gfs.Desc)
	return s.collect(ctx, q)
}

func (s *Store) collect(ctx context.Context, q gfs.Query) ([]model.ScheduledEvent, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var events []model.ScheduledEvent
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query consultations: %w", err)
		}
		var ev model.ScheduledEvent
		if err := snap.DataTo(&ev); err != nil {
			return nil, fmt.Errorf("decode consultation %s: %w", snap.Ref.ID, err)
		}
		ev.ID = snap.Ref.ID
		events = append(events, ev)
	}
	return events, nil
}

func (s *Store) InsertEvent(ctx context.Context, ev model.ScheduledEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if _, err := s.client.Collection(consultationsCollection).Doc(ev.ID).Create(ctx, ev); err != nil {
		return "", fmt.Errorf("insert consultation: %w", err)
	}
	return ev.ID, nil
}

func (s *Store) RemoveEvent(ctx context.Context, eventID string) error {
	_, err := s.client.Collection(consultationsCollection).Doc(eventID).Delete(ctx, gfs.Exists)
	if isNotFound(err) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove consultation %s: %w", eventID, err)
	}
	return nil
}

// IsSlotBooked queries by start time only and checks the end bound in memory,
// keeping the query on a single range field.
func (s *Store) IsSlotBooked(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	q := s.client.Collection(consultationsCollection).
		Where("professionalId", "==", professionalID).
		Where("start_at", ">", start.Add(-maxEventLength)).
		Where("start_at", "<", end)
	events, err := s.collect(ctx, q)
	if err != nil {
		return false, err
	}
	return anyOverlap(events, start, end), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

func anyOverlap(events []model.ScheduledEvent, start, end time.Time) bool {
	probe := model.ScheduledEvent{StartAt: start, EndAt: end}
	for _, ev := range events {
		if ev.Blocks() && ev.OverlapsWith(probe) {
			return true
		}
	}
	return false
}

func professionalFromData(id string, data map[string]any) *model.Professional {
	pro := &model.Professional{ID: id}
	pro.Name, _ = data["name"].(string)
	pro.RefreshToken, _ = data["google_refresh_token"].(string)
	pro.Settings.SessionDuration = intField(data["sessionDuration"])
	pro.Settings.BufferTime = intField(data["bufferTime"])
	pro.Availability, _ = data["availability"].(map[string]any)
	return pro
}

// intField reads a numeric document value. Firestore returns integers as int64.
func intField(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
