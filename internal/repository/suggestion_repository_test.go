package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/models"
)

func newSuggestionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSuggestionRepositoryDeleteByHoliday(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rescheduling_suggestions WHERE holiday_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByHoliday(context.Background(), nil, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rescheduling_suggestions")).
		WithArgs(int64(42), int64(5), "Class 'Fractions' scheduled on 2024-12-12 overlaps with holiday 'Winter Break'. Consider rescheduling.").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	suggestion := &models.ReschedulingSuggestion{
		ClassID:    42,
		HolidayID:  5,
		Suggestion: "Class 'Fractions' scheduled on 2024-12-12 overlaps with holiday 'Winter Break'. Consider rescheduling.",
	}
	require.NoError(t, repo.Upsert(context.Background(), nil, suggestion))
	assert.Equal(t, int64(9), suggestion.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryListByHoliday(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()
	repo := NewSuggestionRepository(db)

	topic := "Fractions"
	date := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "class_id", "holiday_id", "suggestion", "class_topic", "scheduled_date"}).
		AddRow(int64(9), int64(42), int64(5), "overlap", topic, date)

	mock.ExpectQuery("FROM rescheduling_suggestions rs").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	suggestions, err := repo.ListByHoliday(context.Background(), nil, 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.NotNil(t, suggestions[0].ClassTopic)
	assert.Equal(t, "Fractions", *suggestions[0].ClassTopic)
	assert.NoError(t, mock.ExpectationsWereMet())
}
