package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps sql.DB for the scheduling store.
type DB struct {
	*sql.DB
	path   string
	logger zerolog.Logger
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := createTables(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	d := Wrap(sqlDB, logger)
	d.path = path
	d.logger.Info().Str("path", path).Msg("database opened")
	return d, nil
}

// Wrap uses an already opened connection pool without running migrations.
func Wrap(sqlDB *sql.DB, logger *zerolog.Logger) *DB {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "db").Logger()
	}
	return &DB{DB: sqlDB, logger: l}
}

// Path returns the database file path, empty for wrapped pools.
func (db *DB) Path() string {
	return db.path
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS professionals (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            availability TEXT,
            session_duration INTEGER NOT NULL DEFAULT 0,
            buffer_time INTEGER NOT NULL DEFAULT 0,
            google_refresh_token TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS consultations (
            id TEXT PRIMARY KEY,
            professional_id TEXT NOT NULL,
            professional_name TEXT NOT NULL DEFAULT '',
            patient_id TEXT NOT NULL,
            patient_name TEXT NOT NULL DEFAULT '',
            start_at DATETIME NOT NULL,
            end_at DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            price_cents INTEGER NOT NULL DEFAULT 0,
            calendar_event_id TEXT,
            meet_link TEXT,
            charge_id TEXT,
            paid_at DATETIME,
            created_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_consultations_professional_start ON consultations(professional_id, start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_consultations_patient ON consultations(patient_id, start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_consultations_status ON consultations(status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return ensureNewColumns(db)
}

// ensureNewColumns adds columns introduced after the first schema version.
func ensureNewColumns(db *sql.DB) error {
	alters := []string{
		`ALTER TABLE consultations ADD COLUMN charge_id TEXT`,
		`ALTER TABLE consultations ADD COLUMN paid_at DATETIME`,
	}
	for _, q := range alters {
		if _, err := db.Exec(q); err != nil && !isDuplicateColumn(err) {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
