package models

import "time"

// Subject is part of a stream's curriculum.
type Subject struct {
	ID                     string    `db:"id" json:"id"`
	Name                   string    `db:"name" json:"name"`
	Code                   string    `db:"code" json:"code"`
	LecturesPerWeek        int       `db:"lectures_per_week" json:"lectures_per_week"`
	LectureDurationMinutes int       `db:"lecture_duration_minutes" json:"lecture_duration_minutes"`
	IsNonAcademic          bool      `db:"is_non_academic" json:"is_non_academic"`
	RequiredLocationType   *string   `db:"required_location_type" json:"required_location_type,omitempty"`
	ProfessorIDs           []string  `db:"-" json:"professor_ids"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	NonAcademic *bool
	Search      string
}

// SubjectProfessor is one qualified professor of a subject, in preference order.
type SubjectProfessor struct {
	SubjectID   string `db:"subject_id"`
	ProfessorID string `db:"professor_id"`
	Position    int    `db:"position"`
}
