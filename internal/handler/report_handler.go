package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	"github.com/lessonforge/planner-api/internal/service"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/response"
)

// ReportHandler exposes asynchronous agenda exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Create godoc
// @Summary Queue an agenda export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.AgendaReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Router /reports/agenda [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.AgendaReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.service.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	job, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a rendered report
// @Tags Reports
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	file, job, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "text/csv"
	if job.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=agenda_%s.%s", job.ID, job.Format))
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, file.Name(), job.UpdatedAt, file)
}
