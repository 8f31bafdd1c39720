package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const streamColumns = `id, name, department_id, division, semester, academic_year, number_of_days, non_academic_lectures_per_week, coordinator_id, created_at, updated_at`

// StreamRepository provides database access for streams and their curricula.
type StreamRepository struct {
	db *sqlx.DB
}

// NewStreamRepository creates a new instance of StreamRepository.
func NewStreamRepository(db *sqlx.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// List returns streams in creation order with ordered subject ids.
func (r *StreamRepository) List(ctx context.Context, filter models.StreamFilter) ([]models.Stream, error) {
	var conditions []string
	var args []interface{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Division != "" {
		args = append(args, filter.Division)
		conditions = append(conditions, fmt.Sprintf("division = $%d", len(args)))
	}

	query := "SELECT " + streamColumns + " FROM streams"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var streams []models.Stream
	if err := r.db.SelectContext(ctx, &streams, query, args...); err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	if err := r.attachSubjects(ctx, streams); err != nil {
		return nil, err
	}
	return streams, nil
}

// FindByID returns a stream with ordered subject ids.
func (r *StreamRepository) FindByID(ctx context.Context, id string) (*models.Stream, error) {
	query := "SELECT " + streamColumns + " FROM streams WHERE id = $1"
	var stream models.Stream
	if err := r.db.GetContext(ctx, &stream, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find stream: %w", err)
	}
	list := []models.Stream{stream}
	if err := r.attachSubjects(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Semesters returns the distinct semesters offered by a department.
func (r *StreamRepository) Semesters(ctx context.Context, departmentID string) ([]int, error) {
	const query = `SELECT DISTINCT semester FROM streams WHERE department_id = $1 ORDER BY semester ASC`
	var semesters []int
	if err := r.db.SelectContext(ctx, &semesters, query, departmentID); err != nil {
		return nil, fmt.Errorf("list stream semesters: %w", err)
	}
	return semesters, nil
}

// Divisions returns the distinct divisions for a department and semester.
func (r *StreamRepository) Divisions(ctx context.Context, departmentID string, semester int) ([]string, error) {
	const query = `SELECT DISTINCT division FROM streams WHERE department_id = $1 AND semester = $2 AND division IS NOT NULL ORDER BY division ASC`
	var divisions []string
	if err := r.db.SelectContext(ctx, &divisions, query, departmentID, semester); err != nil {
		return nil, fmt.Errorf("list stream divisions: %w", err)
	}
	return divisions, nil
}

// Create inserts a stream and its curriculum atomically.
func (r *StreamRepository) Create(ctx context.Context, stream *models.Stream) error {
	if stream.ID == "" {
		stream.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stream.CreatedAt = now
	stream.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO streams (id, name, department_id, division, semester, academic_year, number_of_days, non_academic_lectures_per_week, coordinator_id, created_at, updated_at) VALUES (:id, :name, :department_id, :division, :semester, :academic_year, :number_of_days, :non_academic_lectures_per_week, :coordinator_id, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, stream); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		return replaceStreamSubjects(ctx, tx, stream.ID, stream.SubjectIDs)
	})
}

// Update modifies a stream and replaces its curriculum.
func (r *StreamRepository) Update(ctx context.Context, stream *models.Stream) error {
	stream.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE streams SET name = :name, department_id = :department_id, division = :division, semester = :semester, academic_year = :academic_year, number_of_days = :number_of_days, non_academic_lectures_per_week = :non_academic_lectures_per_week, coordinator_id = :coordinator_id, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, stream); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		return replaceStreamSubjects(ctx, tx, stream.ID, stream.SubjectIDs)
	})
}

// Delete removes a stream and, by cascade, its timetable entries.
func (r *StreamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM streams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stream: %w", err)
	}
	return nil
}

func (r *StreamRepository) attachSubjects(ctx context.Context, streams []models.Stream) error {
	if len(streams) == 0 {
		return nil
	}
	ids := lo.Map(streams, func(s models.Stream, _ int) string { return s.ID })
	const query = `SELECT stream_id, subject_id, position FROM stream_subjects WHERE stream_id = ANY($1) ORDER BY stream_id, position ASC, subject_id`
	var links []models.StreamSubject
	if err := r.db.SelectContext(ctx, &links, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list stream subjects: %w", err)
	}
	grouped := lo.GroupBy(links, func(l models.StreamSubject) string { return l.StreamID })
	for i := range streams {
		streams[i].SubjectIDs = lo.Map(grouped[streams[i].ID], func(l models.StreamSubject, _ int) string { return l.SubjectID })
	}
	return nil
}

func replaceStreamSubjects(ctx context.Context, tx *sqlx.Tx, streamID string, subjectIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM stream_subjects WHERE stream_id = $1`, streamID); err != nil {
		return fmt.Errorf("clear stream subjects: %w", err)
	}
	for position, subjectID := range lo.Uniq(subjectIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stream_subjects (stream_id, subject_id, position) VALUES ($1, $2, $3)`, streamID, subjectID, position); err != nil {
			return fmt.Errorf("link stream subject: %w", err)
		}
	}
	return nil
}
