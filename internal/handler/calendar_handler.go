package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/service"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/response"
)

// CalendarHandler exposes blackout day and academic year endpoints.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// CreateNoClassDay godoc
// @Summary Register a blackout date
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.NoClassDayRequest true "Blackout payload"
// @Success 201 {object} response.Envelope
// @Router /no-class-days [post]
func (h *CalendarHandler) CreateNoClassDay(c *gin.Context) {
	var req dto.NoClassDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	day, err := h.service.CreateNoClassDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, day)
}

// ListNoClassDays godoc
// @Summary List blackout dates
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /no-class-days [get]
func (h *CalendarHandler) ListNoClassDays(c *gin.Context) {
	days, err := h.service.ListNoClassDays(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// DeleteNoClassDay godoc
// @Summary Delete a blackout date
// @Tags Calendar
// @Param id path int true "No-class day ID"
// @Success 204
// @Router /no-class-days/{id} [delete]
func (h *CalendarHandler) DeleteNoClassDay(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteNoClassDay(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateAcademicYear godoc
// @Summary Create an academic year
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.AcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *CalendarHandler) CreateAcademicYear(c *gin.Context) {
	var req dto.AcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.CreateAcademicYear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// ListAcademicYears godoc
// @Summary List academic years
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *CalendarHandler) ListAcademicYears(c *gin.Context) {
	years, err := h.service.ListAcademicYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}
