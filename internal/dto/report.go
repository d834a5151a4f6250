package dto

// AgendaReportRequest asks for an asynchronous agenda export.
type AgendaReportRequest struct {
	LevelID int64  `json:"level_id" validate:"required"`
	Week    int    `json:"week" validate:"required,min=1"`
	Format  string `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportJobResponse reports export progress and, once done, a signed URL.
type ReportJobResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Format      string  `json:"format"`
	DownloadURL *string `json:"download_url,omitempty"`
	Error       *string `json:"error,omitempty"`
}
