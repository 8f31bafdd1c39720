package models

import "time"

// Location is a room that lectures can be booked into.
type Location struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	LocationType string    `db:"location_type" json:"location_type"`
	Floor        int       `db:"floor" json:"floor"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LocationFilter narrows the location list and location sheet.
type LocationFilter struct {
	Type  string
	Floor *int
}
