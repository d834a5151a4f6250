package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/jobs"
	"github.com/lessonforge/planner-api/pkg/storage"
)

type reportJobRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportJobRepoStub() *reportJobRepoStub {
	return &reportJobRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (s *reportJobRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *reportJobRepoStub) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (s *reportJobRepoStub) UpdateStatus(ctx context.Context, id, status string, filePath, errorMessage *string) error {
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = status
	if filePath != nil {
		job.FilePath = filePath
	}
	job.ErrorMessage = errorMessage
	return nil
}

type reportClassStub struct {
	classes []models.ClassDetail
	err     error
}

func (s reportClassStub) ListByLevelWeek(ctx context.Context, levelID int64, week int) ([]models.ClassDetail, error) {
	return s.classes, s.err
}

type enqueuerStub struct {
	queued []jobs.Job
	err    error
}

func (s *enqueuerStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.queued = append(s.queued, job)
	return nil
}

type reportFixture struct {
	svc     *ReportService
	reports *reportJobRepoStub
	queue   *enqueuerStub
}

func newReportFixture(t *testing.T, classes []models.ClassDetail) reportFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-secret", time.Minute)

	levels := newLevelRepoStub()
	require.NoError(t, levels.Create(context.Background(), &models.Level{Name: "B1", StartDate: date(2024, 9, 2)}))

	reports := newReportJobRepoStub()
	queue := &enqueuerStub{}
	svc := NewReportService(reports, reportClassStub{classes: classes}, levels, queue, store, signer, nil, nil)
	return reportFixture{svc: svc, reports: reports, queue: queue}
}

func agendaClasses() []models.ClassDetail {
	end := "10:30"
	return []models.ClassDetail{
		{
			Class: models.Class{
				ID:        1,
				Date:      date(2024, 9, 2),
				StartTime: "09:00",
				EndTime:   &end,
				Topic:     "Fractions",
				Status:    models.ClassStatusScheduled,
			},
			GroupName: "Group A",
		},
	}
}

func TestEnqueueCreatesQueuedJob(t *testing.T) {
	fx := newReportFixture(t, agendaClasses())

	resp, err := fx.svc.Enqueue(context.Background(), dto.AgendaReportRequest{LevelID: 1, Week: 1, Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	assert.Nil(t, resp.DownloadURL)
	require.Len(t, fx.queue.queued, 1)
	assert.Equal(t, resp.ID, fx.queue.queued[0].ID)
}

func TestEnqueueUnknownLevel(t *testing.T) {
	fx := newReportFixture(t, nil)

	_, err := fx.svc.Enqueue(context.Background(), dto.AgendaReportRequest{LevelID: 42, Week: 1, Format: "csv"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnqueueMarksJobFailedWhenQueueRejects(t *testing.T) {
	fx := newReportFixture(t, nil)
	fx.queue.err = errors.New("queue full")

	_, err := fx.svc.Enqueue(context.Background(), dto.AgendaReportRequest{LevelID: 1, Week: 1, Format: "csv"})
	require.Error(t, err)
	require.Len(t, fx.reports.jobs, 1)
	for _, job := range fx.reports.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.Contains(t, *job.ErrorMessage, "queue full")
	}
}

func TestProcessRendersCSVAndDownloadRoundTrip(t *testing.T) {
	fx := newReportFixture(t, agendaClasses())

	resp, err := fx.svc.Enqueue(context.Background(), dto.AgendaReportRequest{LevelID: 1, Week: 1, Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Process(context.Background(), jobs.Job{ID: resp.ID, Type: "agenda_report"}))

	status, err := fx.svc.Status(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDone, status.Status)
	require.NotNil(t, status.DownloadURL)

	token := strings.TrimPrefix(*status.DownloadURL, "/reports/download?token=")
	file, job, err := fx.svc.Download(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, resp.ID, job.ID)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Fractions")
	assert.Contains(t, string(content), "2024-09-02")
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	fx := newReportFixture(t, agendaClasses())
	resp, err := fx.svc.Enqueue(context.Background(), dto.AgendaReportRequest{LevelID: 1, Week: 1, Format: "csv"})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Process(context.Background(), jobs.Job{ID: resp.ID, Type: "agenda_report"}))

	status, err := fx.svc.Status(context.Background(), resp.ID)
	require.NoError(t, err)
	token := strings.TrimPrefix(*status.DownloadURL, "/reports/download?token=")

	_, _, err = fx.svc.Download(context.Background(), token+"x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestStatusUnknownJob(t *testing.T) {
	fx := newReportFixture(t, nil)

	_, err := fx.svc.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
