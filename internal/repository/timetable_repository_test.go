package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestTimetableRepositoryReplaceInsideTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), "st1", "math", "p1", "r1", "mon", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), "st1", "pe", nil, nil, "mon", "s2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	removed, err := repo.DeleteAll(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)

	entries := []models.TimetableEntry{
		{StreamID: "st1", SubjectID: "math", ProfessorID: strPtr("p1"), LocationID: strPtr("r1"), DayOfWeek: "mon", TimeSlotID: strPtr("s1")},
		{StreamID: "st1", SubjectID: "pe", DayOfWeek: "mon", TimeSlotID: strPtr("s2")},
	}
	require.NoError(t, repo.BulkInsert(context.Background(), tx, entries))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListJoinsNames(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "stream_id", "subject_id", "professor_id", "location_id", "day_of_week", "time_slot_id", "stream_name", "subject_name", "professor_name", "location_name", "start_time", "end_time"}).
		AddRow("e1", "st1", "math", "p1", "r1", "mon", "s1", "CS-A", "Mathematics", "Ada", "Room 1", "09:00", "10:00").
		AddRow("e2", "st1", "pe", nil, nil, "mon", "s2", "CS-A", "Sports", nil, nil, "10:00", "11:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries e")).
		WithArgs("st1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.TimetableFilter{StreamID: "st1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada", *entries[0].ProfessorName)
	assert.Nil(t, entries[1].ProfessorName)
	assert.Equal(t, "mon", entries[1].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBusyResources(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND professor_id IS NOT NULL AND id::text <> $3")).
		WithArgs("tue", "s1", "e1").
		WillReturnRows(sqlmock.NewRows([]string{"professor_id"}).AddRow("p2"))
	mock.ExpectQuery(regexp.QuoteMeta("AND location_id IS NOT NULL AND id::text <> $3")).
		WithArgs("tue", "s1", "").
		WillReturnRows(sqlmock.NewRows([]string{"location_id"}))

	professors, err := repo.BusyProfessorIDs(context.Background(), "tue", "s1", "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, professors)

	locations, err := repo.BusyLocationIDs(context.Background(), "tue", "s1", "")
	require.NoError(t, err)
	assert.Empty(t, locations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositorySaveUpdatesExisting(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_entries SET subject_id")).
		WithArgs("math", "p1", nil, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.TimetableEntry{ID: "e1", SubjectID: "math", ProfessorID: strPtr("p1")}
	require.NoError(t, repo.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositoryLifecycle(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewTimetableRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_runs")).
		WithArgs(sqlmock.AnyArg(), "running", 0, sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_runs SET status")).
		WithArgs("committed", 12, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run := &models.TimetableRun{}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Equal(t, "null", string(run.Failure))

	run.Status = models.RunStatusCommitted
	run.EntriesCreated = 12
	require.NoError(t, repo.Finish(context.Background(), run))
	assert.NotNil(t, run.FinishedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_runs ORDER BY started_at DESC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "entries_created", "failure"}).
			AddRow(run.ID, "committed", 12, nil))
	runs, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusCommitted, runs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
