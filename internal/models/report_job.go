package models

import "time"

// Report job states.
const (
	ReportStatusQueued     = "QUEUED"
	ReportStatusProcessing = "PROCESSING"
	ReportStatusDone       = "DONE"
	ReportStatusFailed     = "FAILED"
)

// Report export formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// ReportJob tracks an asynchronous agenda export.
type ReportJob struct {
	ID           string    `db:"id" json:"id"`
	LevelID      int64     `db:"level_id" json:"level_id"`
	Week         int       `db:"week" json:"week"`
	Format       string    `db:"format" json:"format"`
	Status       string    `db:"status" json:"status"`
	FilePath     *string   `db:"file_path" json:"file_path,omitempty"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
