package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const runColumns = `id, status, entries_created, failure, triggered_by, started_at, finished_at`

// TimetableRunRepository records generation runs.
type TimetableRunRepository struct {
	db *sqlx.DB
}

// NewTimetableRunRepository creates a new instance of TimetableRunRepository.
func NewTimetableRunRepository(db *sqlx.DB) *TimetableRunRepository {
	return &TimetableRunRepository{db: db}
}

// Create stores a run in the running state.
func (r *TimetableRunRepository) Create(ctx context.Context, run *models.TimetableRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if len(run.Failure) == 0 {
		run.Failure = types.JSONText("null")
	}
	const query = `INSERT INTO timetable_runs (id, status, entries_created, failure, triggered_by, started_at) VALUES (:id, :status, :entries_created, :failure, :triggered_by, :started_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create timetable run: %w", err)
	}
	return nil
}

// Finish stores the terminal status of a run.
func (r *TimetableRunRepository) Finish(ctx context.Context, run *models.TimetableRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if len(run.Failure) == 0 {
		run.Failure = types.JSONText("null")
	}
	const query = `UPDATE timetable_runs SET status = :status, entries_created = :entries_created, failure = :failure, finished_at = :finished_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("finish timetable run: %w", err)
	}
	return nil
}

// Latest returns the most recently started run.
func (r *TimetableRunRepository) Latest(ctx context.Context) (*models.TimetableRun, error) {
	query := "SELECT " + runColumns + " FROM timetable_runs ORDER BY started_at DESC LIMIT 1"
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("latest timetable run: %w", err)
	}
	return &run, nil
}

// List returns the newest runs first.
func (r *TimetableRunRepository) List(ctx context.Context, limit int) ([]models.TimetableRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := "SELECT " + runColumns + " FROM timetable_runs ORDER BY started_at DESC LIMIT $1"
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}
