// Package mongostore keeps professionals and consultations in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

const (
	professionalsCollection = "professionals"
	consultationsCollection = "consultations"
)

type Store struct {
	professionals *mongo.Collection
	consultations *mongo.Collection
	logger        zerolog.Logger
}

type professionalDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Availability    bson.M    `bson:"availability,omitempty"`
	SessionDuration int       `bson:"sessionDuration"`
	BufferTime      int       `bson:"bufferTime"`
	RefreshToken    string    `bson:"google_refresh_token,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty"`
}

// Connect opens a client and verifies the deployment answers.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func New(db *mongo.Database, logger *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "mongostore").Logger()
	}
	return &Store{
		professionals: db.Collection(professionalsCollection),
		consultations: db.Collection(consultationsCollection),
		logger:        l,
	}
}

// EnsureIndexes creates the indexes used by calendar and patient queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("professional_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "start_at", Value: -1}},
			Options: options.Index().SetName("patient_start_idx"),
		},
	}
	if _, err := s.consultations.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create consultation indexes: %w", err)
	}
	return nil
}

func (s *Store) GetProfessional(ctx context.Context, professionalID string) (*model.Professional, error) {
	var doc professionalDoc
	err := s.professionals.FindOne(ctx, bson.M{"_id": professionalID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch professional %s: %w", professionalID, err)
	}

	pro := &model.Professional{
		ID:           doc.ID,
		Name:         doc.Name,
		Settings:     model.SessionSettings{SessionDuration: doc.SessionDuration, BufferTime: doc.BufferTime},
		RefreshToken: doc.RefreshToken,
	}
	if doc.Availability != nil {
		pro.Availability, _ = plain(doc.Availability).(map[string]any)
	}
	return pro, nil
}

// SaveAvailability sets schedule and settings in a single upserting update.
func (s *Store) SaveAvailability(ctx context.Context, professionalID string, doc availability.Document) error {
	update := bson.M{"$set": bson.M{
		"availability":    map[string]any(doc.Raw()),
		"sessionDuration": doc.Settings.SessionDuration,
		"bufferTime":      doc.Settings.BufferTime,
		"updatedAt":       time.Now().UTC(),
	}}
	_, err := s.professionals.UpdateOne(ctx, bson.M{"_id": professionalID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save availability for %s: %w", professionalID, err)
	}
	return nil
}

func (s *Store) QueryEvents(ctx context.Context, professionalID string, window *model.Window) ([]model.ScheduledEvent, error) {
	filter := bson.M{"professionalId": professionalID}
	if window != nil {
		filter["start_at"] = bson.M{"$gte": window.From, "$lt": window.To}
	}
	return s.find(ctx, filter, 1)
}

func (s *Store) QueryPatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error) {
	return s.find(ctx, bson.M{"patientId": patientID}, -1)
}

func (s *Store) find(ctx context.Context, filter bson.M, order int) ([]model.ScheduledEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: order}})
	cursor, err := s.consultations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}
	defer cursor.Close(ctx)

	var events []model.ScheduledEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode consultations: %w", err)
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
	if _, err := s.consultations.InsertOne(ctx, ev); err != nil {
		return "", fmt.Errorf("failed to insert consultation: %w", err)
	}
	return ev.ID, nil
}

func (s *Store) RemoveEvent(ctx context.Context, eventID string) error {
	res, err := s.consultations.DeleteOne(ctx, bson.M{"_id": eventID})
	if err != nil {
		return fmt.Errorf("failed to remove consultation %s: %w", eventID, err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// IsSlotBooked reports whether a blocking consultation overlaps [start, end).
func (s *Store) IsSlotBooked(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	filter := bson.M{
		"professionalId": professionalID,
		"status":         bson.M{"$nin": bson.A{model.StatusCancelled, model.StatusRefunded}},
		"start_at":       bson.M{"$lt": end},
		"end_at":         bson.M{"$gt": start},
	}
	n, err := s.consultations.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return n > 0, nil
}

// Ping checks the deployment backing the store.
func (s *Store) Ping(ctx context.Context) error {
	return s.professionals.Database().Client().Ping(ctx, nil)
}

// plain rewrites decoded BSON containers into the map/slice shapes the
// availability loader understands.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}
