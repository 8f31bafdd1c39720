package models

import "time"

// Professor is a teaching resource with a weekly lecture cap.
type Professor struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Email               string    `db:"email" json:"email"`
	WorkingHoursStart   string    `db:"working_hours_start" json:"working_hours_start"`
	WorkingHoursEnd     string    `db:"working_hours_end" json:"working_hours_end"`
	TotalWeeklyLectures int       `db:"total_weekly_lectures" json:"total_weekly_lectures"`
	DepartmentIDs       []string  `db:"-" json:"department_ids"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ProfessorFilter captures filters for listing professors.
type ProfessorFilter struct {
	DepartmentID string
	Search       string
}

// ProfessorDepartment links a professor to a department.
type ProfessorDepartment struct {
	ProfessorID  string `db:"professor_id"`
	DepartmentID string `db:"department_id"`
}

// ProfessorLoad sums the weekly lectures a professor is assigned across subjects.
type ProfessorLoad struct {
	ProfessorID   string `db:"professor_id" json:"professor_id"`
	Name          string `db:"name" json:"name"`
	Cap           int    `db:"total_weekly_lectures" json:"cap"`
	RequiredTotal int    `db:"required_total" json:"required_total"`
}
