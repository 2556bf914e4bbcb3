package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Kayky4/vitasyn/internal/availability"
	"github.com/Kayky4/vitasyn/internal/model"
)

// GetProfessional loads a professional record with its raw stored availability.
func (db *DB) GetProfessional(ctx context.Context, professionalID string) (*model.Professional, error) {
	var (
		pro   model.Professional
		avail sql.NullString
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, name, availability, session_duration, buffer_time, google_refresh_token
         FROM professionals WHERE id = ?`,
		professionalID,
	).Scan(&pro.ID, &pro.Name, &avail, &pro.Settings.SessionDuration, &pro.Settings.BufferTime, &pro.RefreshToken)
	if notFound(err) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get professional %s: %w", professionalID, err)
	}

	if avail.Valid && avail.String != "" {
		if err := json.Unmarshal([]byte(avail.String), &pro.Availability); err != nil {
			// Unreadable availability is treated as none configured.
			db.logger.Warn().Err(err).Str("professional_id", professionalID).Msg("stored availability is not valid JSON")
			pro.Availability = nil
		}
	}
	return &pro, nil
}

// SaveAvailability replaces schedule and session settings in one statement.
func (db *DB) SaveAvailability(ctx context.Context, professionalID string, doc availability.Document) error {
	payload, err := json.Marshal(doc.Raw())
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO professionals (id, availability, session_duration, buffer_time, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            availability = excluded.availability,
            session_duration = excluded.session_duration,
            buffer_time = excluded.buffer_time,
            updated_at = excluded.updated_at`,
		professionalID, string(payload), doc.Settings.SessionDuration, doc.Settings.BufferTime, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save availability %s: %w", professionalID, err)
	}
	return nil
}

// UpsertProfessional creates or updates the profile fields, leaving availability untouched.
func (db *DB) UpsertProfessional(ctx context.Context, pro *model.Professional) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO professionals (id, name, google_refresh_token, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            google_refresh_token = excluded.google_refresh_token,
            updated_at = excluded.updated_at`,
		pro.ID, pro.Name, pro.RefreshToken, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert professional %s: %w", pro.ID, err)
	}
	return nil
}

// SetRawAvailability stores an availability blob as-is. Used for imports of older documents.
func (db *DB) SetRawAvailability(ctx context.Context, professionalID string, raw availability.Raw) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO professionals (id, availability, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET availability = excluded.availability, updated_at = excluded.updated_at`,
		professionalID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set availability %s: %w", professionalID, err)
	}
	return nil
}
