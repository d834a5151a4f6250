package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/service"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/response"
)

// IngestHandler exposes document ingestion and similarity search.
type IngestHandler struct {
	service *service.IngestService
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{service: svc}
}

// Ingest godoc
// @Summary Ingest documents into the search index
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents (.txt, .md)"
// @Success 200 {object} response.Envelope
// @Router /ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart form expected"))
		return
	}

	var files []service.IngestFile
	for _, header := range form.File["files"] {
		opened, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable file "+header.Filename))
			return
		}
		content, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read "+header.Filename))
			return
		}
		files = append(files, service.IngestFile{Name: header.Filename, Content: content})
	}

	resp, err := h.service.Ingest(c.Request.Context(), files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Query godoc
// @Summary Search ingested documents
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.QueryRequest true "Query payload"
// @Success 200 {object} response.Envelope
// @Router /query [post]
func (h *IngestHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.Query(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
