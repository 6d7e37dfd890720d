package sqlite

import (
	"context"
	"fmt"
	"time"

	"field-scheduler/internal/businessday"
	"field-scheduler/internal/models"
)

// BookingRepository reads and imports committed crew days
type BookingRepository struct {
	store *Store
}

// List returns every crew booking ordered by start date
func (r *BookingRepository) List(ctx context.Context) ([]models.ExistingBooking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT crew, start_date, days
	          FROM crew_bookings
	          ORDER BY start_date, id`
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query crew bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.ExistingBooking{}
	for rows.Next() {
		var b models.ExistingBooking
		var start string
		if err := rows.Scan(&b.Crew, &start, &b.Days); err != nil {
			return nil, fmt.Errorf("failed to scan crew booking: %w", err)
		}
		if b.StartDate, err = businessday.ParseDate(start); err != nil {
			return nil, fmt.Errorf("crew booking for %s: %w", b.Crew, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crew bookings: %w", err)
	}

	return bookings, nil
}

// ListFrom returns the bookings whose span reaches from or later
func (r *BookingRepository) ListFrom(ctx context.Context, from time.Time) ([]models.ExistingBooking, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	from = businessday.Date(from)
	out := all[:0]
	for _, b := range all {
		if !businessday.NewSpan(b.StartDate, b.Days).End.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Add inserts a crew booking
func (r *BookingRepository) Add(ctx context.Context, b models.ExistingBooking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query := `INSERT INTO crew_bookings (crew, start_date, days) VALUES (?, ?, ?)`
	if _, err := r.store.db.ExecContext(ctx, query, b.Crew, businessday.Format(b.StartDate), b.Days); err != nil {
		return fmt.Errorf("failed to insert crew booking: %w", err)
	}
	return nil
}
