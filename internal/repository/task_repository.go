package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const taskColumns = `id, user_id, title, description, priority, estimated_minutes, is_scheduled, is_completed, created_at, updated_at`

// TaskRepository stores personal tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// BeginTxx starts a transaction for multi-step task updates.
func (r *TaskRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

func (r *TaskRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (id, user_id, title, description, priority, estimated_minutes, is_scheduled, is_completed, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :priority, :estimated_minutes, :is_scheduled, :is_completed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListOpen returns the user's incomplete tasks ordered by priority.
func (r *TaskRepository) ListOpen(ctx context.Context, exec sqlx.ExtContext, userID string) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1 AND is_completed = FALSE ORDER BY priority ASC, created_at ASC"
	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, r.exec(exec), &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

// FindByID returns a task owned by userID.
func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1 AND user_id = $2"
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// MarkCompleted flags a task as done.
func (r *TaskRepository) MarkCompleted(ctx context.Context, userID, id string) error {
	const query = `UPDATE tasks SET is_completed = TRUE, updated_at = $3 WHERE id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// UnscheduleOpen clears the scheduled flag on all of the user's incomplete tasks.
func (r *TaskRepository) UnscheduleOpen(ctx context.Context, exec sqlx.ExtContext, userID string) error {
	const query = `UPDATE tasks SET is_scheduled = FALSE, updated_at = $2 WHERE user_id = $1 AND is_scheduled = TRUE AND is_completed = FALSE`
	if _, err := r.exec(exec).ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("unschedule tasks: %w", err)
	}
	return nil
}

// MarkScheduled flags the given tasks as scheduled.
func (r *TaskRepository) MarkScheduled(ctx context.Context, exec sqlx.ExtContext, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE tasks SET is_scheduled = TRUE, updated_at = $2 WHERE id = ANY($1)`
	if _, err := r.exec(exec).ExecContext(ctx, query, pq.Array(ids), time.Now().UTC()); err != nil {
		return fmt.Errorf("schedule tasks: %w", err)
	}
	return nil
}
