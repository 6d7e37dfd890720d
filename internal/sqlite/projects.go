package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"field-scheduler/internal/models"
)

// ProjectRepository reads and imports projects
type ProjectRepository struct {
	store *Store
}

const projectColumns = `id, name, address, location, amount, stage, is_pe, days_install, days_to_install`

func scanProject(scan func(dest ...any) error) (models.Project, error) {
	var p models.Project
	var isPE int
	var daysTo sql.NullFloat64
	if err := scan(&p.ID, &p.Name, &p.Address, &p.Location, &p.Amount, &p.Stage, &isPE, &p.DaysInstall, &daysTo); err != nil {
		return p, err
	}
	p.IsPE = isPE != 0
	if daysTo.Valid {
		v := daysTo.Float64
		p.DaysToInstall = &v
	}
	return p, nil
}

// ListUnscheduled returns every project without an install date, ordered by id
func (r *ProjectRepository) ListUnscheduled(ctx context.Context) ([]models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + projectColumns + `
	          FROM projects
	          WHERE scheduled = 0
	          ORDER BY id`
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// GetByID returns one project or ErrNotFound
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.store.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// Upsert inserts or replaces a project. scheduled marks it as already placed.
func (r *ProjectRepository) Upsert(ctx context.Context, p *models.Project, scheduled bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var daysTo any
	if p.DaysToInstall != nil {
		daysTo = *p.DaysToInstall
	}

	query := `INSERT INTO projects (` + projectColumns + `, scheduled, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT(id) DO UPDATE SET
	              name = excluded.name,
	              address = excluded.address,
	              location = excluded.location,
	              amount = excluded.amount,
	              stage = excluded.stage,
	              is_pe = excluded.is_pe,
	              days_install = excluded.days_install,
	              days_to_install = excluded.days_to_install,
	              scheduled = excluded.scheduled,
	              updated_at = CURRENT_TIMESTAMP`
	_, err := r.store.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Address, p.Location, p.Amount, p.Stage, boolToInt(p.IsPE), p.DaysInstall, daysTo, boolToInt(scheduled))
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
