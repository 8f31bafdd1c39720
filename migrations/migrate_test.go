package migrations

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestNamesSorted(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_catalog.sql", "0002_timetable.sql", "0003_users_tasks.sql"}, names)
}

func TestUpAppliesPendingOnly(t *testing.T) {
	db, mock := newMock(t)
	exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS schema_migrations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("0001_catalog.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(exists).WithArgs("0002_timetable.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS timetable_entries`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schema_migrations (filename) VALUES ($1)`)).WithArgs("0002_timetable.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(exists).WithArgs("0003_users_tasks.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_timetable.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpRecordsIgnorableDuplicateErrors(t *testing.T) {
	db, mock := newMock(t)
	exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS schema_migrations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("0001_catalog.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS departments`)).WillReturnError(&pq.Error{Code: "42P07"})
	mock.ExpectRollback()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (filename) DO NOTHING`)).WithArgs("0001_catalog.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(exists).WithArgs("0002_timetable.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(exists).WithArgs("0003_users_tasks.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_catalog.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpFailsOnSyntaxError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS schema_migrations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).WithArgs("0001_catalog.sql").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS departments`)).WillReturnError(&pq.Error{Code: "42601"})
	mock.ExpectRollback()

	_, err := Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migration 0001_catalog.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
