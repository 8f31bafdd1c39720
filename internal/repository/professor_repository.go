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

const professorColumns = `id, name, email, working_hours_start, working_hours_end, total_weekly_lectures, created_at, updated_at`

// ProfessorRepository provides database access for professors and their departments.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository creates a new instance of ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// List returns professors in stored order with their department ids.
func (r *ProfessorRepository) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, error) {
	var conditions []string
	var args []interface{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("id IN (SELECT professor_id FROM professor_departments WHERE department_id = $%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + professorColumns + " FROM professors"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	if err := r.attachDepartments(ctx, professors); err != nil {
		return nil, err
	}
	return professors, nil
}

// FindByID returns a professor with department ids.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := "SELECT " + professorColumns + " FROM professors WHERE id = $1"
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find professor: %w", err)
	}
	list := []models.Professor{professor}
	if err := r.attachDepartments(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ExistsByEmail checks whether another professor already uses the email.
func (r *ProfessorRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM professors WHERE LOWER(email) = LOWER($1)`
	args := []interface{}{email}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += `)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check professor email: %w", err)
	}
	return exists, nil
}

// Create inserts a professor and its department links atomically.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	professor.CreatedAt = now
	professor.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO professors (id, name, email, working_hours_start, working_hours_end, total_weekly_lectures, created_at, updated_at) VALUES (:id, :name, :email, :working_hours_start, :working_hours_end, :total_weekly_lectures, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, professor); err != nil {
			return fmt.Errorf("create professor: %w", err)
		}
		return replaceProfessorDepartments(ctx, tx, professor.ID, professor.DepartmentIDs)
	})
}

// Update modifies a professor and replaces its department links.
func (r *ProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	professor.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE professors SET name = :name, email = :email, working_hours_start = :working_hours_start, working_hours_end = :working_hours_end, total_weekly_lectures = :total_weekly_lectures, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, professor); err != nil {
			return fmt.Errorf("update professor: %w", err)
		}
		return replaceProfessorDepartments(ctx, tx, professor.ID, professor.DepartmentIDs)
	})
}

// Delete removes a professor.
func (r *ProfessorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM professors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete professor: %w", err)
	}
	return nil
}

// Loads sums lectures_per_week over each professor's academic subjects.
func (r *ProfessorRepository) Loads(ctx context.Context) ([]models.ProfessorLoad, error) {
	const query = `SELECT p.id AS professor_id, p.name, p.total_weekly_lectures, COALESCE(SUM(s.lectures_per_week), 0) AS required_total
FROM professors p
LEFT JOIN subject_professors sp ON sp.professor_id = p.id
LEFT JOIN subjects s ON s.id = sp.subject_id AND s.is_non_academic = FALSE
GROUP BY p.id, p.name, p.total_weekly_lectures, p.created_at
ORDER BY p.created_at ASC, p.id ASC`
	var loads []models.ProfessorLoad
	if err := r.db.SelectContext(ctx, &loads, query); err != nil {
		return nil, fmt.Errorf("professor loads: %w", err)
	}
	return loads, nil
}

func (r *ProfessorRepository) attachDepartments(ctx context.Context, professors []models.Professor) error {
	if len(professors) == 0 {
		return nil
	}
	ids := lo.Map(professors, func(p models.Professor, _ int) string { return p.ID })
	const query = `SELECT professor_id, department_id FROM professor_departments WHERE professor_id = ANY($1) ORDER BY professor_id, department_id`
	var links []models.ProfessorDepartment
	if err := r.db.SelectContext(ctx, &links, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list professor departments: %w", err)
	}
	grouped := lo.GroupBy(links, func(l models.ProfessorDepartment) string { return l.ProfessorID })
	for i := range professors {
		professors[i].DepartmentIDs = lo.Map(grouped[professors[i].ID], func(l models.ProfessorDepartment, _ int) string { return l.DepartmentID })
	}
	return nil
}

func replaceProfessorDepartments(ctx context.Context, tx *sqlx.Tx, professorID string, departmentIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM professor_departments WHERE professor_id = $1`, professorID); err != nil {
		return fmt.Errorf("clear professor departments: %w", err)
	}
	for _, departmentID := range lo.Uniq(departmentIDs) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO professor_departments (professor_id, department_id) VALUES ($1, $2)`, professorID, departmentID); err != nil {
			return fmt.Errorf("link professor department: %w", err)
		}
	}
	return nil
}
