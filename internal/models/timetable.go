package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableEntry is one cell of the generated or hand-edited timetable.
// Non-academic entries carry no professor or location.
type TimetableEntry struct {
	ID          string    `db:"id" json:"id"`
	StreamID    string    `db:"stream_id" json:"stream_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	ProfessorID *string   `db:"professor_id" json:"professor_id,omitempty"`
	LocationID  *string   `db:"location_id" json:"location_id,omitempty"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	TimeSlotID  *string   `db:"time_slot_id" json:"time_slot_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntryDetail joins an entry with the names used for display and export.
type TimetableEntryDetail struct {
	TimetableEntry
	StreamName    string  `db:"stream_name" json:"stream_name"`
	SubjectName   string  `db:"subject_name" json:"subject_name"`
	ProfessorName *string `db:"professor_name" json:"professor_name,omitempty"`
	LocationName  *string `db:"location_name" json:"location_name,omitempty"`
	StartTime     *string `db:"start_time" json:"start_time,omitempty"`
	EndTime       *string `db:"end_time" json:"end_time,omitempty"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	StreamID  string
	DayOfWeek string
}

// RunStatus tracks a generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCommitted RunStatus = "committed"
	RunStatusAborted   RunStatus = "aborted"
)

// TimetableRun records one generation attempt and its outcome.
type TimetableRun struct {
	ID             string         `db:"id" json:"id"`
	Status         RunStatus      `db:"status" json:"status"`
	EntriesCreated int            `db:"entries_created" json:"entries_created"`
	Failure        types.JSONText `db:"failure" json:"failure,omitempty"`
	TriggeredBy    *string        `db:"triggered_by" json:"triggered_by,omitempty"`
	StartedAt      time.Time      `db:"started_at" json:"started_at"`
	FinishedAt     *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
}
