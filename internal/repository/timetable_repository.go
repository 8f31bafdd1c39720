package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// TimetableRepository manages timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new instance of TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns entries joined with display names, ordered by weekday then slot start.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.StreamID != "" {
		args = append(args, filter.StreamID)
		conditions = append(conditions, fmt.Sprintf("e.stream_id = $%d", len(args)))
	}
	if filter.DayOfWeek != "" {
		args = append(args, filter.DayOfWeek)
		conditions = append(conditions, fmt.Sprintf("e.day_of_week = $%d", len(args)))
	}

	query := `SELECT e.id, e.stream_id, e.subject_id, e.professor_id, e.location_id, e.day_of_week, e.time_slot_id, e.created_at,
	st.name AS stream_name, su.name AS subject_name, p.name AS professor_name, l.name AS location_name,
	to_char(ts.start_time, 'HH24:MI') AS start_time, to_char(ts.end_time, 'HH24:MI') AS end_time
FROM timetable_entries e
JOIN streams st ON st.id = e.stream_id
JOIN subjects su ON su.id = e.subject_id
LEFT JOIN professors p ON p.id = e.professor_id
LEFT JOIN locations l ON l.id = e.location_id
LEFT JOIN time_slots ts ON ts.id = e.time_slot_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY array_position(ARRAY['mon','tue','wed','thu','fri']::varchar[], e.day_of_week), ts.start_time ASC NULLS LAST, st.created_at ASC, e.id ASC`

	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// DeleteAll removes every timetable entry for every stream.
func (r *TimetableRepository) DeleteAll(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM timetable_entries`)
	if err != nil {
		return 0, fmt.Errorf("delete timetable entries: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// BulkInsert stores entries in order.
func (r *TimetableRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO timetable_entries (id, stream_id, subject_id, professor_id, location_id, day_of_week, time_slot_id, created_at)
VALUES (:id, :stream_id, :subject_id, :professor_id, :location_id, :day_of_week, :time_slot_id, :created_at)`

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// FindBySlot returns the stream's entry at (day, slot).
func (r *TimetableRepository) FindBySlot(ctx context.Context, streamID, day, slotID string) (*models.TimetableEntry, error) {
	const query = `SELECT id, stream_id, subject_id, professor_id, location_id, day_of_week, time_slot_id, created_at
FROM timetable_entries WHERE stream_id = $1 AND day_of_week = $2 AND time_slot_id = $3 ORDER BY created_at ASC LIMIT 1`
	var entry models.TimetableEntry
	if err := r.db.GetContext(ctx, &entry, query, streamID, day, slotID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find timetable entry: %w", err)
	}
	return &entry, nil
}

// Save inserts the entry, or updates it in place when it already has an id.
func (r *TimetableRepository) Save(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID != "" {
		const query = `UPDATE timetable_entries SET subject_id = :subject_id, professor_id = :professor_id, location_id = :location_id WHERE id = :id`
		if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("update timetable entry: %w", err)
		}
		return nil
	}
	return r.BulkInsert(ctx, nil, []models.TimetableEntry{*entry})
}

// DeleteBySlot removes the stream's entries at (day, slot).
func (r *TimetableRepository) DeleteBySlot(ctx context.Context, streamID, day, slotID string) (int64, error) {
	const query = `DELETE FROM timetable_entries WHERE stream_id = $1 AND day_of_week = $2 AND time_slot_id = $3`
	res, err := r.db.ExecContext(ctx, query, streamID, day, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete timetable entry: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// BusyProfessorIDs lists professors booked at (day, slot) by any entry other
// than excludeEntryID. An empty excludeEntryID counts every entry.
func (r *TimetableRepository) BusyProfessorIDs(ctx context.Context, day, slotID, excludeEntryID string) ([]string, error) {
	const query = `SELECT DISTINCT professor_id FROM timetable_entries WHERE day_of_week = $1 AND time_slot_id = $2 AND professor_id IS NOT NULL AND id::text <> $3`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, day, slotID, excludeEntryID); err != nil {
		return nil, fmt.Errorf("list busy professors: %w", err)
	}
	return ids, nil
}

// BusyLocationIDs lists locations booked at (day, slot) by any entry other
// than excludeEntryID.
func (r *TimetableRepository) BusyLocationIDs(ctx context.Context, day, slotID, excludeEntryID string) ([]string, error) {
	const query = `SELECT DISTINCT location_id FROM timetable_entries WHERE day_of_week = $1 AND time_slot_id = $2 AND location_id IS NOT NULL AND id::text <> $3`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, day, slotID, excludeEntryID); err != nil {
		return nil, fmt.Errorf("list busy locations: %w", err)
	}
	return ids, nil
}
