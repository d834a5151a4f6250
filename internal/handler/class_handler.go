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

// ClassHandler exposes class detail, manual edits and the weekly agenda.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Update godoc
// @Summary Apply a manual edit to a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body dto.ClassUpdate true "Partial update"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var patch dto.ClassUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Agenda godoc
// @Summary Weekly agenda for a level
// @Tags Classes
// @Produce json
// @Param level_id query int true "Level ID"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /agenda [get]
func (h *ClassHandler) Agenda(c *gin.Context) {
	levelID, err := strconv.ParseInt(c.Query("level_id"), 10, 64)
	if err != nil || levelID < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "level_id query parameter is required"))
		return
	}
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week query parameter is required"))
		return
	}
	agenda, err := h.service.Agenda(c.Request.Context(), levelID, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, agenda, nil)
}
