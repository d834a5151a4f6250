package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/models"
	"github.com/lessonforge/planner-api/internal/service"
)

type blackoutRepoMock struct {
	days   map[int64]models.NoClassDay
	nextID int64
}

func newBlackoutRepoMock() *blackoutRepoMock {
	return &blackoutRepoMock{days: map[int64]models.NoClassDay{}}
}

func (m *blackoutRepoMock) Create(ctx context.Context, day *models.NoClassDay) error {
	m.nextID++
	day.ID = m.nextID
	m.days[day.ID] = *day
	return nil
}

func (m *blackoutRepoMock) List(ctx context.Context) ([]models.NoClassDay, error) {
	days := make([]models.NoClassDay, 0, len(m.days))
	for _, day := range m.days {
		days = append(days, day)
	}
	return days, nil
}

func (m *blackoutRepoMock) Delete(ctx context.Context, id int64) error {
	if _, ok := m.days[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.days, id)
	return nil
}

type yearRepoMock struct {
	years []models.AcademicYear
}

func (m *yearRepoMock) Create(ctx context.Context, year *models.AcademicYear) error {
	year.ID = int64(len(m.years) + 1)
	m.years = append(m.years, *year)
	return nil
}

func (m *yearRepoMock) FindByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	for _, year := range m.years {
		if year.ID == id {
			return &year, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *yearRepoMock) List(ctx context.Context) ([]models.AcademicYear, error) {
	return m.years, nil
}

func newCalendarHandlerFixture() (*CalendarHandler, *blackoutRepoMock) {
	blackouts := newBlackoutRepoMock()
	svc := service.NewCalendarService(blackouts, &yearRepoMock{}, nil, nil)
	return NewCalendarHandler(svc), blackouts
}

func jsonRequest(t *testing.T, c *gin.Context, method, target, body string) {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func TestCreateNoClassDayReturnsCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, blackouts := newCalendarHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/no-class-days", `{"date":"2024-12-25","reason":"Christmas"}`)

	handler.CreateNoClassDay(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, blackouts.days, 1)
	require.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), blackouts.days[1].Date)
	require.Contains(t, w.Body.String(), "2024-12-25")
}

func TestCreateNoClassDayRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, blackouts := newCalendarHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/no-class-days", `{"date":"25/12/2024"}`)

	handler.CreateNoClassDay(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, blackouts.days)
}

func TestDeleteNoClassDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, blackouts := newCalendarHandlerFixture()
	require.NoError(t, blackouts.Create(context.Background(), &models.NoClassDay{
		Date: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
	}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/no-class-days/1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.DeleteNoClassDay(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, blackouts.days)
}

func TestDeleteNoClassDayNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCalendarHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/no-class-days/42", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.DeleteNoClassDay(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAcademicYearRejectsInvertedRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCalendarHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/academic-years",
		`{"name":"2024/2025","start_date":"2025-06-30","end_date":"2024-09-01"}`)

	handler.CreateAcademicYear(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAcademicYearReturnsCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newCalendarHandlerFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, http.MethodPost, "/academic-years",
		`{"name":"2024/2025","start_date":"2024-09-01","end_date":"2025-06-30"}`)

	handler.CreateAcademicYear(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "2024/2025")
}
