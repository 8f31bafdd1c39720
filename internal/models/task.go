package models

import "time"

// Task is a personal to-do item fitted into a user's free time.
type Task struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	Priority         int       `db:"priority" json:"priority"`
	EstimatedMinutes int       `db:"estimated_minutes" json:"estimated_minutes"`
	IsScheduled      bool      `db:"is_scheduled" json:"is_scheduled"`
	IsCompleted      bool      `db:"is_completed" json:"is_completed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
