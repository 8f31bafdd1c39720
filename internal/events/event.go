// Package events publishes timetable domain events to RabbitMQ. Publishing
// runs on a background job queue so request handling never waits on the broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

// Event types.
const (
	TypeTimetableGenerated = "timetable.generated"
	TypeGenerationFailed   = "timetable.generation_failed"
	TypeEntryChanged       = "timetable.entry_changed"
)

// Event is the JSON envelope written to the queue.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	RequestID  string      `json:"request_id,omitempty"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// WithRequestID copies the HTTP request ID carried by ctx onto the event.
func (e Event) WithRequestID(ctx context.Context) Event {
	e.RequestID = requestid.FromContext(ctx)
	return e
}

// GeneratedPayload describes a committed generation run.
type GeneratedPayload struct {
	RunID          string         `json:"run_id"`
	EntriesCreated int            `json:"entries_created"`
	StreamCounts   map[string]int `json:"stream_counts"`
}

// FailedPayload describes an aborted generation run.
type FailedPayload struct {
	RunID  string `json:"run_id"`
	Reason string `json:"reason"`
}

// EntryChangedPayload describes a manual edit of one timetable cell.
type EntryChangedPayload struct {
	StreamID   string `json:"stream_id"`
	DayOfWeek  string `json:"day_of_week"`
	TimeSlotID string `json:"time_slot_id"`
	Action     string `json:"action"`
}
