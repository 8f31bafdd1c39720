package dto

import (
	"time"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
)

// GenerateRequest triggers a timetable generation run.
type GenerateRequest struct {
	SkipValidation bool `json:"skipValidation"`
}

// GenerationResult summarises a committed run.
type GenerationResult struct {
	RunID          string              `json:"runId"`
	EntriesCreated int                 `json:"entriesCreated"`
	EntriesRemoved int64               `json:"entriesRemoved"`
	StreamCounts   map[string]int      `json:"streamCounts"`
	ProfessorLoads []ProfessorLoadView `json:"professorLoads"`
	DurationMs     int64               `json:"durationMs"`
}

// ProfessorLoadView reports how many lectures a professor received in a run.
type ProfessorLoadView struct {
	ProfessorID string `json:"professorId"`
	Name        string `json:"name"`
	Placed      int    `json:"placed"`
	Cap         int    `json:"cap"`
}

// Failure kinds persisted on aborted runs.
const (
	FailureConfigurationIncomplete = "configuration_incomplete"
	FailurePlacementInfeasible     = "placement_infeasible"
	FailureValidation              = "validation_failed"
	FailureInternal                = "internal"
)

// GenerationFailure is stored on an aborted run and returned as error details.
type GenerationFailure struct {
	Kind      string                    `json:"kind"`
	Message   string                    `json:"message"`
	Placement *scheduler.PlacementError `json:"placement,omitempty"`
	Missing   []string                  `json:"missing,omitempty"`
	Reasons   []string                  `json:"reasons,omitempty"`
}

// ValidationReport lists every precondition the current data breaks.
type ValidationReport struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors"`
	CheckedAt time.Time `json:"checkedAt"`
}

// SaveEntryRequest sets the lecture held by a stream in one (day, slot) cell.
type SaveEntryRequest struct {
	StreamID    string  `json:"streamId" validate:"required"`
	DayOfWeek   string  `json:"dayOfWeek" validate:"required"`
	TimeSlotID  string  `json:"timeSlotId" validate:"required"`
	SubjectID   string  `json:"subjectId" validate:"required"`
	ProfessorID *string `json:"professorId"`
	LocationID  *string `json:"locationId"`
}

// EntryCellQuery identifies one cell of a stream's grid.
type EntryCellQuery struct {
	StreamID   string `form:"streamId" validate:"required"`
	DayOfWeek  string `form:"day" validate:"required"`
	TimeSlotID string `form:"timeSlotId" validate:"required"`
}

// DayOption is one column of the timetable grid.
type DayOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TimetableSetup is the scaffold a client needs to render the grid.
type TimetableSetup struct {
	Days            []DayOption       `json:"days"`
	TimeSlots       []models.TimeSlot `json:"timeSlots"`
	Streams         []models.Stream   `json:"streams"`
	LunchBreakStart string            `json:"lunchBreakStart,omitempty"`
}

// StreamOptions feeds the cascading department, semester and division pickers.
type StreamOptions struct {
	Semesters []int    `json:"semesters"`
	Divisions []string `json:"divisions"`
}
