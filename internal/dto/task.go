package dto

import "github.com/noah-isme/uni-timetable-api/internal/models"

// CreateTaskRequest adds a personal task.
type CreateTaskRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"max=2000"`
	Priority         int    `json:"priority" validate:"min=1,max=10"`
	EstimatedMinutes int    `json:"estimatedMinutes" validate:"required,min=1"`
}

// RescheduleRequest fills the free time budget with pending tasks.
type RescheduleRequest struct {
	AvailableMinutes int `json:"availableMinutes" validate:"min=0"`
}

// TaskBoard splits a user's open tasks into scheduled and pending.
type TaskBoard struct {
	Scheduled []models.Task `json:"scheduled"`
	Pending   []models.Task `json:"pending"`
}

// RescheduleResult reports what fitted into the budget.
type RescheduleResult struct {
	Scheduled        []models.Task `json:"scheduled"`
	UsedMinutes      int           `json:"usedMinutes"`
	RemainingMinutes int           `json:"remainingMinutes"`
}
