package models

import "time"

// TimeSlot is a teaching period. Times are stored as HH:MM:SS.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
