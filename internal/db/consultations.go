package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kayky4/vitasyn/internal/model"
)

const consultationColumns = `id, professional_id, professional_name, patient_id, patient_name,
    start_at, end_at, status, price_cents, calendar_event_id, meet_link, charge_id, paid_at, created_at`

// QueryEvents returns the professional's events ordered by start. A nil window returns all of them.
func (db *DB) QueryEvents(ctx context.Context, professionalID string, window *model.Window) ([]model.ScheduledEvent, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE professional_id = ?`
	args := []any{professionalID}
	if window != nil {
		query += ` AND start_at >= ? AND start_at < ?`
		args = append(args, dbTime(window.From), dbTime(window.To))
	}
	query += ` ORDER BY start_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// QueryPatientEvents returns a patient's consultations, newest first.
func (db *DB) QueryPatientEvents(ctx context.Context, patientID string) ([]model.ScheduledEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+consultationColumns+` FROM consultations WHERE patient_id = ? ORDER BY start_at DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("query patient events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// InsertEvent stores ev and returns its id, generating one when ev.ID is empty.
func (db *DB) InsertEvent(ctx context.Context, ev model.ScheduledEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	var calendarEventID, meetLink, chargeID sql.NullString
	var paidAt sql.NullTime
	if ev.Meeting != nil {
		calendarEventID = nullString(ev.Meeting.CalendarEventID)
		meetLink = nullString(ev.Meeting.MeetLink)
	}
	if ev.Payment != nil {
		chargeID = nullString(ev.Payment.ChargeID)
		if !ev.Payment.PaidAt.IsZero() {
			paidAt = sql.NullTime{Time: dbTime(ev.Payment.PaidAt), Valid: true}
		}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO consultations (`+consultationColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.ProfessionalID, ev.ProfessionalName, ev.PatientID, ev.PatientName,
		dbTime(ev.StartAt), dbTime(ev.EndAt), string(ev.Status), ev.PriceCents,
		calendarEventID, meetLink, chargeID, paidAt, dbTime(ev.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return ev.ID, nil
}

// RemoveEvent deletes an event by id, returning model.ErrNotFound if it does not exist.
func (db *DB) RemoveEvent(ctx context.Context, eventID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM consultations WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("remove event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove event: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// IsSlotBooked reports whether any blocking event of the professional overlaps [start, end).
func (db *DB) IsSlotBooked(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consultations
         WHERE professional_id = ?
           AND status NOT IN (?, ?)
           AND start_at < ? AND end_at > ?`,
		professionalID, string(model.StatusCancelled), string(model.StatusRefunded), dbTime(end), dbTime(start),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return count > 0, nil
}

func scanEvents(rows *sql.Rows) ([]model.ScheduledEvent, error) {
	var out []model.ScheduledEvent
	for rows.Next() {
		var (
			ev                              model.ScheduledEvent
			status                          string
			calendarEventID, meetLink, chID sql.NullString
			paidAt                          sql.NullTime
		)
		if err := rows.Scan(
			&ev.ID, &ev.ProfessionalID, &ev.ProfessionalName, &ev.PatientID, &ev.PatientName,
			&ev.StartAt, &ev.EndAt, &status, &ev.PriceCents,
			&calendarEventID, &meetLink, &chID, &paidAt, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Status = model.Status(status)
		if calendarEventID.Valid || meetLink.Valid {
			ev.Meeting = &model.Meeting{CalendarEventID: calendarEventID.String, MeetLink: meetLink.String}
		}
		if chID.Valid || paidAt.Valid {
			ev.Payment = &model.Payment{ChargeID: chID.String}
			if paidAt.Valid {
				ev.Payment.PaidAt = paidAt.Time
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Times are stored in UTC at second precision so text comparison orders them.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
