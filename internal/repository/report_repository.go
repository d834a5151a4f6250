package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// ReportRepository persists agenda export jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a queued report job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	const query = `INSERT INTO report_jobs (id, level_id, week, format, status, created_at, updated_at)
VALUES (:id, :level_id, :week, :format, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID fetches a report job.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, level_id, week, format, status, file_path, error_message, created_at, updated_at
FROM report_jobs WHERE id = $1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateStatus moves a job to a new state, optionally recording the produced
// file or the failure message.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id, status string, filePath, errorMessage *string) error {
	const query = `UPDATE report_jobs
SET status = $1, file_path = COALESCE($2, file_path), error_message = $3, updated_at = NOW()
WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, status, filePath, errorMessage, id); err != nil {
		return fmt.Errorf("update report job status: %w", err)
	}
	return nil
}
