package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"field-scheduler/internal/models"
)

// AppointmentRepository reads and imports timed calendar bookings
type AppointmentRepository struct {
	store *Store
}

// ListByPerson returns each person's appointments that overlap [from, to),
// ordered by start time
func (r *AppointmentRepository) ListByPerson(ctx context.Context, from, to time.Time) (map[string][]models.PersonBooking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT person, name, start_at, end_at, address, lat, lng
	          FROM appointments
	          WHERE end_at > ? AND start_at < ?
	          ORDER BY person, start_at`
	rows, err := r.store.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	byPerson := make(map[string][]models.PersonBooking)
	for rows.Next() {
		var person string
		var b models.PersonBooking
		var start, end string
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&person, &b.Name, &start, &end, &b.Location.Address, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		if b.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("appointment %s start: %w", b.Name, err)
		}
		if b.End, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("appointment %s end: %w", b.Name, err)
		}
		if lat.Valid && lng.Valid {
			b.Location.Coordinates = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
		}
		byPerson[person] = append(byPerson[person], b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	return byPerson, nil
}

// Add inserts an appointment for person
func (r *AppointmentRepository) Add(ctx context.Context, person string, b models.PersonBooking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var lat, lng any
	if b.Location.Coordinates != nil {
		lat, lng = b.Location.Coordinates.Lat, b.Location.Coordinates.Lng
	}

	query := `INSERT INTO appointments (person, name, start_at, end_at, address, lat, lng)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.store.db.ExecContext(ctx, query, person, b.Name, formatTime(b.Start), formatTime(b.End), b.Location.Address, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// times are stored as UTC RFC 3339 text so that string comparison orders them
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
