// Package scheduler contains the first-fit timetable placement engine. It is
// pure: callers load a Snapshot, run the Engine and persist the Result.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Day is a weekday code as stored on timetable entries.
type Day string

const (
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
)

var weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

// Weekdays returns the schedulable week in search order.
func Weekdays() []Day {
	out := make([]Day, len(weekdays))
	copy(out, weekdays)
	return out
}

// Days returns the first n weekdays, clamped to [0, maxDays] and the working week.
func Days(n, maxDays int) []Day {
	if maxDays <= 0 || maxDays > len(weekdays) {
		maxDays = len(weekdays)
	}
	if n > maxDays {
		n = maxDays
	}
	if n < 0 {
		n = 0
	}
	return weekdays[:n]
}

// Index returns the position of d in the week, or -1.
func (d Day) Index() int {
	for i, day := range weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the five weekday codes.
func (d Day) Valid() bool {
	return d.Index() >= 0
}

// DisplayName returns the long weekday name.
func (d Day) DisplayName() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return string(d)
}

// ParseDay accepts a code ("mon") or a full name ("Monday").
func ParseDay(raw string) (Day, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) >= 3 {
		candidate := Day(value[:3])
		if candidate.Valid() && (len(value) == 3 || strings.EqualFold(candidate.DisplayName(), value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid day %q", raw)
}

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(raw string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	return Clock(hours*60 + minutes), nil
}

// MustClock is ParseClock for literals.
func MustClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// LocationType classifies rooms.
type LocationType string

const (
	LocationClassroom  LocationType = "classroom"
	LocationLab        LocationType = "lab"
	LocationAuditorium LocationType = "auditorium"
	LocationHall       LocationType = "hall"
)

// Valid reports whether t is a known location type.
func (t LocationType) Valid() bool {
	switch t {
	case LocationClassroom, LocationLab, LocationAuditorium, LocationHall:
		return true
	}
	return false
}

// InferLocationType applies the legacy naming rule: subjects whose name mentions
// "lab" need a lab, everything else a classroom.
func InferLocationType(subjectName string) LocationType {
	if strings.Contains(strings.ToLower(subjectName), "lab") {
		return LocationLab
	}
	return LocationClassroom
}

// TimeSlot is a period of the teaching day.
type TimeSlot struct {
	ID      string
	Start   Clock
	End     Clock
	IsBreak bool
}

// Label renders "HH:MM - HH:MM".
func (s TimeSlot) Label() string {
	return s.Start.String() + " - " + s.End.String()
}

// Location is a bookable room.
type Location struct {
	ID    string
	Name  string
	Type  LocationType
	Floor int
}

// Professor is a bookable teacher with a weekly lecture cap.
type Professor struct {
	ID        string
	Name      string
	WeeklyCap int
}

// Subject belongs to a stream's curriculum. ProfessorIDs is the ordered list of
// qualified professors.
type Subject struct {
	ID                   string
	Name                 string
	Code                 string
	LecturesPerWeek      int
	NonAcademic          bool
	RequiredLocationType LocationType
	ProfessorIDs         []string
}

// LocationType returns the room type the subject needs.
func (s Subject) LocationType() LocationType {
	if s.RequiredLocationType != "" {
		return s.RequiredLocationType
	}
	return InferLocationType(s.Name)
}

// Stream is a cohort with an ordered curriculum.
type Stream struct {
	ID                         string
	Name                       string
	NumberOfDays               int
	NonAcademicLecturesPerWeek int
	Subjects                   []Subject
}

// Snapshot is the immutable input of one run.
type Snapshot struct {
	TimeSlots  []TimeSlot
	Locations  []Location
	Professors []Professor
	Streams    []Stream
}

// Placement is one committed timetable cell. ProfessorID and LocationID are
// empty for non-academic activities.
type Placement struct {
	StreamID    string
	SubjectID   string
	ProfessorID string
	LocationID  string
	Day         Day
	TimeSlotID  string
}

// Result is the outcome of a successful run.
type Result struct {
	Placements    []Placement
	ProfessorLoad map[string]int
	StreamCounts  map[string]int
}
