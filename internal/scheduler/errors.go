package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfigurationIncomplete is matched by IncompleteError.
var ErrConfigurationIncomplete = errors.New("configuration incomplete")

// IncompleteError lists the base collections that were empty.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("configuration incomplete: no %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrConfigurationIncomplete
}

// Pass identifies the placement pass that failed.
type Pass string

const (
	PassAcademic    Pass = "academic"
	PassNonAcademic Pass = "non_academic"
)

// PlacementError reports the first lecture instance that had no valid slot.
type PlacementError struct {
	Pass        Pass   `json:"pass"`
	StreamID    string `json:"streamId"`
	StreamName  string `json:"streamName"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Instance    int    `json:"instance"`
	Required    int    `json:"required"`
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("could not find a valid slot for %s in %s (lecture %d of %d)", e.SubjectName, e.StreamName, e.Instance, e.Required)
}
