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

const subjectColumns = `id, name, code, lectures_per_week, lecture_duration_minutes, is_non_academic, required_location_type, created_at, updated_at`

// SubjectRepository provides database access for subjects and their qualified professors.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new instance of SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects in stored order with their ordered professor ids.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var conditions []string
	var args []interface{}
	if filter.NonAcademic != nil {
		args = append(args, *filter.NonAcademic)
		conditions = append(conditions, fmt.Sprintf("is_non_academic = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + subjectColumns + " FROM subjects"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if err := r.attachProfessors(ctx, subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// FindByID returns a subject with its ordered professor ids.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	list := []models.Subject{subject}
	if err := r.attachProfessors(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ExistsByCode checks whether another subject already uses the code.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1)`
	args := []interface{}{code}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += `)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return exists, nil
}

// Create inserts a subject and its qualified professors atomically.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO subjects (id, name, code, lectures_per_week, lecture_duration_minutes, is_non_academic, required_location_type, created_at, updated_at) VALUES (:id, :name, :code, :lectures_per_week, :lecture_duration_minutes, :is_non_academic, :required_location_type, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, subject); err != nil {
			return fmt.Errorf("create subject: %w", err)
		}
		return replaceSubjectProfessors(ctx, tx, subject.ID, subject.ProfessorIDs)
	})
}

// Update modifies a subject and replaces its qualified professors.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE subjects SET name = :name, code = :code, lectures_per_week = :lectures_per_week, lecture_duration_minutes = :lecture_duration_minutes, is_non_academic = :is_non_academic, required_location_type = :required_location_type, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, subject); err != nil {
			return fmt.Errorf("update subject: %w", err)
		}
		return replaceSubjectProfessors(ctx, tx, subject.ID, subject.ProfessorIDs)
	})
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// IsQualified reports whether the professor may teach the subject.
func (r *SubjectRepository) IsQualified(ctx context.Context, subjectID, professorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM subject_professors WHERE subject_id = $1 AND professor_id = $2)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, subjectID, professorID); err != nil {
		return false, fmt.Errorf("check subject professor: %w", err)
	}
	return ok, nil
}

func (r *SubjectRepository) attachProfessors(ctx context.Context, subjects []models.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	ids := lo.Map(subjects, func(s models.Subject, _ int) string { return s.ID })
	const query = `SELECT subject_id, professor_id, position FROM subject_professors WHERE subject_id = ANY($1) ORDER BY subject_id, position ASC, professor_id`
	var links []models.SubjectProfessor
	if err := r.db.SelectContext(ctx, &links, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list subject professors: %w", err)
	}
	grouped := lo.GroupBy(links, func(l models.SubjectProfessor) string { return l.SubjectID })
	for i := range subjects {
		subjects[i].ProfessorIDs = lo.Map(grouped[subjects[i].ID], func(l models.SubjectProfessor, _ int) string { return l.ProfessorID })
	}
	return nil
}

func replaceSubjectProfessors(ctx context.Context, tx *sqlx.Tx, subjectID string, professorIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM subject_professors WHERE subject_id = $1`, subjectID); err != nil {
		return fmt.Errorf("clear subject professors: %w", err)
	}
	for position, professorID := range lo.Uniq(professorIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO subject_professors (subject_id, professor_id, position) VALUES ($1, $2, $3)`, subjectID, professorID, position); err != nil {
			return fmt.Errorf("link subject professor: %w", err)
		}
	}
	return nil
}
