package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type holidayRepoStub struct {
	stored  map[int64]*models.Holiday
	nextID  int64
	deleted []int64
}

func newHolidayRepoStub() *holidayRepoStub {
	return &holidayRepoStub{stored: map[int64]*models.Holiday{}}
}

func (s *holidayRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error {
	s.nextID++
	holiday.ID = s.nextID
	copied := *holiday
	s.stored[holiday.ID] = &copied
	return nil
}

func (s *holidayRepoStub) FindByID(ctx context.Context, id int64) (*models.Holiday, error) {
	holiday, ok := s.stored[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return holiday, nil
}

func (s *holidayRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error {
	if _, ok := s.stored[holiday.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *holiday
	s.stored[holiday.ID] = &copied
	return nil
}

func (s *holidayRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := s.stored[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.stored, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *holidayRepoStub) ListByYear(ctx context.Context, academicYearID int64) ([]models.Holiday, error) {
	var holidays []models.Holiday
	for _, h := range s.stored {
		if h.AcademicYearID == academicYearID {
			holidays = append(holidays, *h)
		}
	}
	return holidays, nil
}

type holidayClassReaderStub struct {
	classes []models.Class
}

func (s holidayClassReaderStub) ListByYearBetween(ctx context.Context, exec sqlx.ExtContext, academicYearID int64, start, end time.Time) ([]models.Class, error) {
	var matched []models.Class
	for _, c := range s.classes {
		if c.AcademicYearID == nil || *c.AcademicYearID != academicYearID {
			continue
		}
		if c.Date.Before(start) || c.Date.After(end) {
			continue
		}
		matched = append(matched, c)
	}
	return matched, nil
}

type suggestionRepoStub struct {
	rows    map[int64][]models.ReschedulingSuggestion
	nextID  int64
	deletes int
}

func newSuggestionRepoStub() *suggestionRepoStub {
	return &suggestionRepoStub{rows: map[int64][]models.ReschedulingSuggestion{}}
}

func (s *suggestionRepoStub) DeleteByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) error {
	s.deletes++
	delete(s.rows, holidayID)
	return nil
}

func (s *suggestionRepoStub) Upsert(ctx context.Context, exec sqlx.ExtContext, suggestion *models.ReschedulingSuggestion) error {
	for i, existing := range s.rows[suggestion.HolidayID] {
		if existing.ClassID == suggestion.ClassID {
			suggestion.ID = existing.ID
			s.rows[suggestion.HolidayID][i] = *suggestion
			return nil
		}
	}
	s.nextID++
	suggestion.ID = s.nextID
	s.rows[suggestion.HolidayID] = append(s.rows[suggestion.HolidayID], *suggestion)
	return nil
}

func (s *suggestionRepoStub) ListByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) ([]models.SuggestionDetail, error) {
	var details []models.SuggestionDetail
	for _, row := range s.rows[holidayID] {
		details = append(details, models.SuggestionDetail{ReschedulingSuggestion: row})
	}
	return details, nil
}

type yearReaderStub struct {
	years map[int64]*models.AcademicYear
}

func (s yearReaderStub) FindByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	year, ok := s.years[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return year, nil
}

func defaultYearReader() yearReaderStub {
	return yearReaderStub{years: map[int64]*models.AcademicYear{
		1: {ID: 1, Name: "2024/2025", StartDate: date(2024, 9, 1), EndDate: date(2025, 6, 30)},
	}}
}

func yearID(v int64) *int64 { return &v }

func TestHolidayCreateComputesSuggestions(t *testing.T) {
	holidays := newHolidayRepoStub()
	suggestions := newSuggestionRepoStub()
	classes := holidayClassReaderStub{classes: []models.Class{
		{ID: 42, GroupID: 7, AcademicYearID: yearID(1), WeekNumber: 15, Date: date(2024, 12, 12), StartTime: "09:00", Topic: "Fractions"},
		{ID: 43, GroupID: 7, AcademicYearID: yearID(1), WeekNumber: 18, Date: date(2025, 1, 8), StartTime: "09:00", Topic: "Decimals"},
	}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewHolidayService(holidays, classes, suggestions, defaultYearReader(), tx, nil, nil)

	holiday, details, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Winter Break",
		StartDate:      "2024-12-10",
		EndDate:        "2024-12-20",
		AcademicYearID: 1,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, int64(42), details[0].ClassID)
	assert.Equal(t,
		"Class 'Fractions' scheduled on 2024-12-12 overlaps with holiday 'Winter Break'. Consider rescheduling.",
		details[0].Suggestion)
	assert.Equal(t, holiday.ID, details[0].HolidayID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidaySuggestionLabelWithoutTopic(t *testing.T) {
	holidays := newHolidayRepoStub()
	suggestions := newSuggestionRepoStub()
	classes := holidayClassReaderStub{classes: []models.Class{
		{ID: 42, GroupID: 7, AcademicYearID: yearID(1), Date: date(2024, 12, 12), StartTime: "09:00"},
	}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewHolidayService(holidays, classes, suggestions, defaultYearReader(), tx, nil, nil)

	_, details, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Winter Break",
		StartDate:      "2024-12-10",
		EndDate:        "2024-12-20",
		AcademicYearID: 1,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t,
		"Class scheduled on 2024-12-12 overlaps with holiday 'Winter Break'. Consider rescheduling.",
		details[0].Suggestion)
}

func TestHolidayUpdateReplacesSuggestions(t *testing.T) {
	holidays := newHolidayRepoStub()
	suggestions := newSuggestionRepoStub()
	classes := holidayClassReaderStub{classes: []models.Class{
		{ID: 42, GroupID: 7, AcademicYearID: yearID(1), Date: date(2024, 12, 12), StartTime: "09:00", Topic: "Fractions"},
		{ID: 43, GroupID: 7, AcademicYearID: yearID(1), Date: date(2025, 1, 8), StartTime: "09:00", Topic: "Decimals"},
	}}
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewHolidayService(holidays, classes, suggestions, defaultYearReader(), tx, nil, nil)

	holiday, details, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Winter Break",
		StartDate:      "2024-12-10",
		EndDate:        "2024-12-20",
		AcademicYearID: 1,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)

	// Shift the range onto the January class only.
	_, details, err = svc.Update(context.Background(), holiday.ID, dto.HolidayRequest{
		Name:           "Winter Break",
		StartDate:      "2025-01-06",
		EndDate:        "2025-01-10",
		AcademicYearID: 1,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, int64(43), details[0].ClassID)
	assert.Equal(t, 2, suggestions.deletes)
}

func TestHolidayCreateRejectsInvertedRange(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	svc := NewHolidayService(newHolidayRepoStub(), holidayClassReaderStub{}, newSuggestionRepoStub(), defaultYearReader(), tx, nil, nil)

	_, _, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Backwards",
		StartDate:      "2024-12-20",
		EndDate:        "2024-12-10",
		AcademicYearID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestHolidayCreateRejectsUnknownYear(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	svc := NewHolidayService(newHolidayRepoStub(), holidayClassReaderStub{}, newSuggestionRepoStub(), defaultYearReader(), tx, nil, nil)

	_, _, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Orphan",
		StartDate:      "2024-12-10",
		EndDate:        "2024-12-20",
		AcademicYearID: 99,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestHolidayDeleteSkipsRecomputation(t *testing.T) {
	holidays := newHolidayRepoStub()
	suggestions := newSuggestionRepoStub()
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewHolidayService(holidays, holidayClassReaderStub{}, suggestions, defaultYearReader(), tx, nil, nil)

	holiday, _, err := svc.Create(context.Background(), dto.HolidayRequest{
		Name:           "Short Break",
		StartDate:      "2024-10-01",
		EndDate:        "2024-10-02",
		AcademicYearID: 1,
	})
	require.NoError(t, err)

	deletesBefore := suggestions.deletes
	require.NoError(t, svc.Delete(context.Background(), holiday.ID))
	assert.Equal(t, deletesBefore, suggestions.deletes)
	assert.ErrorContains(t, svc.Delete(context.Background(), holiday.ID), "holiday not found")
}
