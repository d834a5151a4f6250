package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/export"
	"github.com/lessonforge/planner-api/pkg/jobs"
)

type reportJobRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateStatus(ctx context.Context, id, status string, filePath, errorMessage *string) error
}

type reportClassReader interface {
	ListByLevelWeek(ctx context.Context, levelID int64, week int) ([]models.ClassDetail, error)
}

type reportEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type reportURLSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

// ReportService produces agenda exports asynchronously: a request becomes a
// queued job, a worker renders the file, and the result is fetched through a
// signed download URL.
type ReportService struct {
	reports   reportJobRepository
	classes   reportClassReader
	levels    classLevelReader
	queue     reportEnqueuer
	storage   reportStorage
	signer    reportURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService wires report dependencies.
func NewReportService(
	reports reportJobRepository,
	classes reportClassReader,
	levels classLevelReader,
	queue reportEnqueuer,
	storage reportStorage,
	signer reportURLSigner,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:   reports,
		classes:   classes,
		levels:    levels,
		queue:     queue,
		storage:   storage,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Enqueue validates the request and queues an export job.
func (s *ReportService) Enqueue(ctx context.Context, req dto.AgendaReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.levels.FindByID(ctx, req.LevelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, fmt.Errorf("load level: %w", err)
	}

	now := time.Now().UTC()
	job := &models.ReportJob{
		ID:        uuid.NewString(),
		LevelID:   req.LevelID,
		Week:      req.Week,
		Format:    req.Format,
		Status:    models.ReportStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "agenda_report"}); err != nil {
		message := err.Error()
		_ = s.reports.UpdateStatus(ctx, job.ID, models.ReportStatusFailed, nil, &message)
		return nil, fmt.Errorf("enqueue report job: %w", err)
	}

	resp := dto.NewReportJobResponse(*job, nil)
	return &resp, nil
}

// Status reports job progress; when the job is done the response carries a
// signed download URL.
func (s *ReportService) Status(ctx context.Context, id string) (*dto.ReportJobResponse, error) {
	job, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, fmt.Errorf("load report job: %w", err)
	}

	var downloadURL *string
	if job.Status == models.ReportStatusDone && job.FilePath != nil {
		token, _, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			return nil, fmt.Errorf("sign download url: %w", err)
		}
		url := fmt.Sprintf("/reports/download?token=%s", token)
		downloadURL = &url
	}
	resp := dto.NewReportJobResponse(*job, downloadURL)
	return &resp, nil
}

// Download verifies a signed token and opens the exported file.
func (s *ReportService) Download(ctx context.Context, token string) (*os.File, *models.ReportJob, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, nil, fmt.Errorf("load report job: %w", err)
	}
	if job.Status != models.ReportStatusDone || job.FilePath == nil || *job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report file not available")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open report file: %w", err)
	}
	return file, job, nil
}

// Process renders one queued job. Wired as the queue handler.
func (s *ReportService) Process(ctx context.Context, queued jobs.Job) error {
	job, err := s.reports.FindByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}
	if err := s.reports.UpdateStatus(ctx, job.ID, models.ReportStatusProcessing, nil, nil); err != nil {
		return err
	}

	relPath, err := s.render(ctx, job)
	if err != nil {
		message := err.Error()
		if updateErr := s.reports.UpdateStatus(ctx, job.ID, models.ReportStatusFailed, nil, &message); updateErr != nil {
			s.logger.Error("failed to record report failure", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}
	if err := s.reports.UpdateStatus(ctx, job.ID, models.ReportStatusDone, &relPath, nil); err != nil {
		return err
	}

	s.logger.Info("agenda report rendered",
		zap.String("job_id", job.ID),
		zap.Int64("level_id", job.LevelID),
		zap.Int("week", job.Week),
		zap.String("format", job.Format))
	return nil
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) (string, error) {
	classes, err := s.classes.ListByLevelWeek(ctx, job.LevelID, job.Week)
	if err != nil {
		return "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Group", "Start", "End", "Topic", "Status"},
	}
	for _, class := range classes {
		end := ""
		if class.EndTime != nil {
			end = *class.EndTime
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":   class.Date.Format("2006-01-02"),
			"Group":  class.GroupName,
			"Start":  class.StartTime,
			"End":    end,
			"Topic":  class.Topic,
			"Status": class.Status,
		})
	}

	var rendered []byte
	switch job.Format {
	case models.ReportFormatPDF:
		title := fmt.Sprintf("Agenda - Level %d Week %d", job.LevelID, job.Week)
		rendered, err = s.pdf.Render(dataset, title)
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		return "", fmt.Errorf("render %s report: %w", job.Format, err)
	}

	filename := fmt.Sprintf("agenda_%s.%s", job.ID, job.Format)
	if _, err := s.storage.Save(filename, rendered); err != nil {
		return "", fmt.Errorf("store report file: %w", err)
	}
	return filename, nil
}
