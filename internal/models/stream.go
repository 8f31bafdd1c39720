package models

import "time"

// Stream is a cohort (department, division, semester, academic year).
type Stream struct {
	ID                         string    `db:"id" json:"id"`
	Name                       string    `db:"name" json:"name"`
	DepartmentID               string    `db:"department_id" json:"department_id"`
	Division                   *string   `db:"division" json:"division,omitempty"`
	Semester                   int       `db:"semester" json:"semester"`
	AcademicYear               string    `db:"academic_year" json:"academic_year"`
	NumberOfDays               int       `db:"number_of_days" json:"number_of_days"`
	NonAcademicLecturesPerWeek int       `db:"non_academic_lectures_per_week" json:"non_academic_lectures_per_week"`
	CoordinatorID              *string   `db:"coordinator_id" json:"coordinator_id,omitempty"`
	SubjectIDs                 []string  `db:"-" json:"subject_ids"`
	CreatedAt                  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time `db:"updated_at" json:"updated_at"`
}

// StreamFilter supports the department, semester, division cascade.
type StreamFilter struct {
	DepartmentID string
	Semester     *int
	Division     string
}

// StreamSubject places a subject at a position in a stream's curriculum.
type StreamSubject struct {
	StreamID  string `db:"stream_id"`
	SubjectID string `db:"subject_id"`
	Position  int    `db:"position"`
}
