// Package sqlite reads project, crew booking and appointment snapshots from
// a SQLite database. The scheduling core never writes back; the insert
// methods exist for imports and fixtures.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"field-scheduler/internal/logger"
)

const (
	DefaultDBFileName = "fieldsched.db"
	schemaVersion     = 1
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed snapshot source
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	log    logger.Logger

	projects     *ProjectRepository
	bookings     *BookingRepository
	appointments *AppointmentRepository
}

// New opens (creating if needed) the SQLite store at dbPath
func New(dbPath string, log logger.Logger) (*Store, error) {
	log = logger.OrNop(log)

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Infof("opening SQLite database at: %s", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		log:    log,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.projects = &ProjectRepository{store: store}
	store.bookings = &BookingRepository{store: store}
	store.appointments = &AppointmentRepository{store: store}

	return store, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist, create everything
		return s.createSchema()
	}

	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT INTO schema_version (version) VALUES (1);

	-- Projects waiting for an install date
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		amount REAL NOT NULL DEFAULT 0,
		stage TEXT NOT NULL DEFAULT '',
		is_pe INTEGER NOT NULL DEFAULT 0,
		days_install REAL NOT NULL DEFAULT 1,
		days_to_install REAL,
		scheduled INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Crew days already committed
	CREATE TABLE IF NOT EXISTS crew_bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crew TEXT NOT NULL,
		start_date TEXT NOT NULL,
		days INTEGER NOT NULL DEFAULT 1
	);

	-- Timed appointments on a person's calendar
	CREATE TABLE IF NOT EXISTS appointments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person TEXT NOT NULL,
		name TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat REAL,
		lng REAL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_scheduled ON projects(scheduled);
	CREATE INDEX IF NOT EXISTS idx_crew_bookings_start ON crew_bookings(start_date);
	CREATE INDEX IF NOT EXISTS idx_appointments_person ON appointments(person, start_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.log.Infof("SQLite schema initialized (version %d)", schemaVersion)
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		// Checkpoint WAL before closing
		s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

// HealthCheck verifies the database connection
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Repository accessors
func (s *Store) Projects() *ProjectRepository         { return s.projects }
func (s *Store) Bookings() *BookingRepository         { return s.bookings }
func (s *Store) Appointments() *AppointmentRepository { return s.appointments }
