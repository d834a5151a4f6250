package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/service"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/response"
)

// HolidayHandler exposes holiday CRUD; create and update recompute the
// holiday's rescheduling suggestions.
type HolidayHandler struct {
	service *service.HolidayService
	metrics *service.MetricsService
}

// NewHolidayHandler constructs a holiday handler.
func NewHolidayHandler(svc *service.HolidayService, metrics *service.MetricsService) *HolidayHandler {
	return &HolidayHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List holidays of an academic year with their suggestions
// @Tags Holidays
// @Produce json
// @Param academic_year_id query int true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *HolidayHandler) List(c *gin.Context) {
	yearID, err := strconv.ParseInt(c.Query("academic_year_id"), 10, 64)
	if err != nil || yearID < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year_id query parameter is required"))
		return
	}
	holidays, err := h.service.ListByYear(c.Request.Context(), yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}

// Create godoc
// @Summary Create a holiday and compute its suggestions
// @Tags Holidays
// @Accept json
// @Produce json
// @Param payload body dto.HolidayRequest true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Router /holidays [post]
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	holiday, suggestions, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSuggestions(len(suggestions))
	response.Created(c, dto.NewHolidayResponse(*holiday, suggestions))
}

// Update godoc
// @Summary Update a holiday and recompute its suggestions
// @Tags Holidays
// @Accept json
// @Produce json
// @Param id path int true "Holiday ID"
// @Param payload body dto.HolidayRequest true "Holiday payload"
// @Success 200 {object} response.Envelope
// @Router /holidays/{id} [put]
func (h *HolidayHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	holiday, suggestions, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSuggestions(len(suggestions))
	response.JSON(c, http.StatusOK, dto.NewHolidayResponse(*holiday, suggestions), nil)
}

// Delete godoc
// @Summary Delete a holiday
// @Tags Holidays
// @Param id path int true "Holiday ID"
// @Success 204
// @Router /holidays/{id} [delete]
func (h *HolidayHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
