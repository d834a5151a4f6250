package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/service"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/response"
)

// LevelHandler exposes level, group and plan generation endpoints.
type LevelHandler struct {
	levels    *service.LevelService
	generator *service.GeneratorService
	classes   *service.ClassService
	metrics   *service.MetricsService
}

// NewLevelHandler constructs a level handler.
func NewLevelHandler(
	levels *service.LevelService,
	generator *service.GeneratorService,
	classes *service.ClassService,
	metrics *service.MetricsService,
) *LevelHandler {
	return &LevelHandler{levels: levels, generator: generator, classes: classes, metrics: metrics}
}

// Create godoc
// @Summary Create a level
// @Tags Levels
// @Accept json
// @Produce json
// @Param payload body dto.CreateLevelRequest true "Level payload"
// @Success 201 {object} response.Envelope
// @Router /levels [post]
func (h *LevelHandler) Create(c *gin.Context) {
	var req dto.CreateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.levels.CreateLevel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// Get godoc
// @Summary Get a level with its groups and schedules
// @Tags Levels
// @Produce json
// @Param id path int true "Level ID"
// @Success 200 {object} response.Envelope
// @Router /levels/{id} [get]
func (h *LevelHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	level, groups, err := h.levels.GetLevel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"level": level, "groups": groups}, nil)
}

// CreateGroup godoc
// @Summary Create a group with its weekly schedule
// @Tags Levels
// @Accept json
// @Produce json
// @Param id path int true "Level ID"
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /levels/{id}/groups [post]
func (h *LevelHandler) CreateGroup(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.levels.CreateGroup(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// GenerateClasses godoc
// @Summary Generate class sessions from a weekly plan
// @Tags Levels
// @Accept json
// @Produce json
// @Param id path int true "Level ID"
// @Param payload body dto.PlanPayload true "Plan payload"
// @Success 200 {object} response.Envelope
// @Router /levels/{id}/generate-classes [post]
func (h *LevelHandler) GenerateClasses(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.PlanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if payload.LevelID != id {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payload level_id does not match path"))
		return
	}

	generated, err := h.generator.Generate(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordClassesGenerated(generated)
	if h.classes != nil {
		h.classes.InvalidateAgendas(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, dto.GenerateClassesResponse{Generated: generated}, nil)
}
