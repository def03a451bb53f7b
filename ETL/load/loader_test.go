package load

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func str(s string) *string { return &s }

var runStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "workday.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newSQLiteLoader(t *testing.T, batchSize int) *Loader {
	t.Helper()
	dialect, err := models.DialectFor("sqlite")
	require.NoError(t, err)
	return NewLoader(dialect, batchSize, models.NewAuditWriter(dialect), utils.NewDiscardLogger())
}

func makeProfiles(ids ...string) []models.EmployeeProfile {
	profiles := make([]models.EmployeeProfile, len(ids))
	for i, id := range ids {
		profiles[i] = models.EmployeeProfile{
			EmployeeID:        id,
			FirstName:         "First " + id,
			LastName:          "Last " + id,
			DepartmentID:      str("D1"),
			Status:            models.StatusActive,
			MonthlySalary:     5000,
			Bonus:             100,
			DepartmentName:    str("Eng"),
			AnnualSalary:      60000,
			TotalCompensation: 60100,
			ExecutedAt:        models.NewTimestamp(runStart),
		}
	}
	return profiles
}

func successAudit(rows int) *models.RunAudit {
	return &models.RunAudit{
		StartedAt:  models.NewTimestamp(runStart),
		EndedAt:    models.NewTimestamp(runStart.Add(time.Second)),
		Status:     models.RunSuccess,
		RowsLoaded: rows,
		Notes:      models.NotesOK,
	}
}

func selectProfiles(t *testing.T, db *sqlx.DB) []models.EmployeeProfile {
	t.Helper()
	var profiles []models.EmployeeProfile
	require.NoError(t, db.Select(&profiles, `SELECT * FROM employee_profile ORDER BY "Employee_ID"`))
	return profiles
}

func TestLoader_ReplacesTableAndRecordsRun(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	loader := newSQLiteLoader(t, 2)

	require.NoError(t, loader.Load(ctx, db, makeProfiles("E1", "E2", "E3", "E4", "E5"), successAudit(5)))
	assert.Len(t, selectProfiles(t, db), 5)

	audit := successAudit(2)
	require.NoError(t, loader.Load(ctx, db, makeProfiles("E7", "E8"), audit))
	assert.NotZero(t, audit.RunID)

	profiles := selectProfiles(t, db)
	require.Len(t, profiles, 2, "таблица заменяется полностью")
	assert.Equal(t, "E7", profiles[0].EmployeeID)
	assert.Equal(t, 60100.0, profiles[0].TotalCompensation)
	assert.Equal(t, "Eng", *profiles[0].DepartmentName)
	assert.True(t, profiles[0].ExecutedAt.Equal(runStart))

	var runs int
	require.NoError(t, db.Get(&runs, "SELECT COUNT(*) FROM etl_runs"))
	assert.Equal(t, 2, runs)
}

func TestLoader_EmptyProfilesStillRecordsRun(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	loader := newSQLiteLoader(t, 10)

	require.NoError(t, loader.Load(ctx, db, makeProfiles("E1"), successAudit(1)))
	require.NoError(t, loader.Load(ctx, db, nil, successAudit(0)))

	assert.Empty(t, selectProfiles(t, db))

	var rows []int
	require.NoError(t, db.Select(&rows, "SELECT rows_loaded FROM etl_runs ORDER BY run_id"))
	assert.Equal(t, []int{1, 0}, rows)
}

func TestLoader_NullDepartment(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	loader := newSQLiteLoader(t, 10)

	profiles := makeProfiles("E1")
	profiles[0].DepartmentID = nil
	profiles[0].DepartmentName = nil
	require.NoError(t, loader.Load(ctx, db, profiles, successAudit(1)))

	stored := selectProfiles(t, db)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].DepartmentID)
	assert.Nil(t, stored[0].DepartmentName)
}

func newMockLoader(t *testing.T) (*Loader, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "mysql")
	t.Cleanup(func() { db.Close() })

	dialect, err := models.DialectFor("mysql")
	require.NoError(t, err)
	return NewLoader(dialect, 500, models.NewAuditWriter(dialect), utils.NewDiscardLogger()), db, mock
}

func expectSchema(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS employee_profile")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS etl_runs")).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestLoader_AuditFailureRollsBackReplace(t *testing.T) {
	loader, db, mock := newMockLoader(t)

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee_profile")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employee_profile")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO etl_runs")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := loader.Load(context.Background(), db, makeProfiles("E1", "E2"), successAudit(2))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_InsertFailureRollsBack(t *testing.T) {
	loader, db, mock := newMockLoader(t)

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee_profile")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employee_profile")).WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := loader.Load(context.Background(), db, makeProfiles("E1"), successAudit(1))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Op, "вставка")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_SchemaFailureBeforeTransaction(t *testing.T) {
	loader, db, mock := newMockLoader(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS employee_profile")).WillReturnError(errors.New("access denied"))

	err := loader.Load(context.Background(), db, makeProfiles("E1"), successAudit(1))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_CommitsInOneTransaction(t *testing.T) {
	loader, db, mock := newMockLoader(t)

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee_profile")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employee_profile (`Employee_ID`, `First_Name`")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO etl_runs")).WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	audit := successAudit(2)
	require.NoError(t, loader.Load(context.Background(), db, makeProfiles("E1", "E2"), audit))
	assert.Equal(t, int64(42), audit.RunID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileWriter_InsertQuery(t *testing.T) {
	dialect, err := models.DialectFor("postgres")
	require.NoError(t, err)
	w := NewProfileWriter(dialect, 0, utils.NewDiscardLogger())

	query := w.insertQuery()
	assert.Contains(t, query, `INSERT INTO employee_profile ("Employee_ID", "First_Name"`)
	assert.Contains(t, query, `VALUES (:Employee_ID, :First_Name`)
	assert.Equal(t, 500, w.batchSize)
}
