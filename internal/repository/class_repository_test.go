package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/models"
)

func newClassRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryDeleteGenerated(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE group_id = $1 AND week_number = $2 AND manual_override = FALSE")).
		WithArgs(int64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteGenerated(context.Background(), nil, 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryHasManualOverride(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7), 3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overridden, err := repo.HasManualOverride(context.Background(), nil, 7, 3)
	require.NoError(t, err)
	assert.True(t, overridden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO classes")).
		WithArgs(int64(7), nil, 1, sqlmock.AnyArg(), "09:00", nil, "Fractions", nil, models.ClassStatusScheduled, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	class := &models.Class{
		GroupID:    7,
		WeekNumber: 1,
		Date:       time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		StartTime:  "09:00",
		Topic:      "Fractions",
		Status:     models.ClassStatusScheduled,
	}
	require.NoError(t, repo.Insert(context.Background(), nil, class))
	assert.Equal(t, int64(42), class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListByYearBetween(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	yearID := int64(1)
	rows := sqlmock.NewRows([]string{
		"id", "group_id", "academic_year_id", "week_number", "date", "start_time",
		"end_time", "topic", "trimester_color", "status", "manual_override",
	}).AddRow(int64(42), int64(7), yearID, 15, time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC),
		"09:00", nil, "Fractions", nil, models.ClassStatusScheduled, false)

	mock.ExpectQuery("FROM classes WHERE academic_year_id").
		WithArgs(yearID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	classes, err := repo.ListByYearBetween(context.Background(), nil, yearID,
		time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Fractions", classes[0].Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateFieldsMarksOverride(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET topic = $1, manual_override = TRUE WHERE id = $2")).
		WithArgs("Decimals", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFields(context.Background(), 42, map[string]interface{}{"topic": "Decimals"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateFieldsUnknownID(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes SET").
		WithArgs("Decimals", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), 999, map[string]interface{}{"topic": "Decimals"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
