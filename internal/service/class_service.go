package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type classRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error)
	ListByLevelWeek(ctx context.Context, levelID int64, week int) ([]models.ClassDetail, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
}

type classLevelReader interface {
	FindByID(ctx context.Context, id int64) (*models.Level, error)
}

type agendaCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ClassServiceConfig governs agenda caching.
type ClassServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ClassService reads agendas and applies manual edits to single classes.
type ClassService struct {
	classes   classRepository
	levels    classLevelReader
	cache     agendaCache
	cfg       ClassServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService wires class dependencies.
func NewClassService(
	classes classRepository,
	levels classLevelReader,
	cache agendaCache,
	cfg ClassServiceConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &ClassService{
		classes:   classes,
		levels:    levels,
		cache:     cache,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Get returns one class joined with its group and suggestions.
func (s *ClassService) Get(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	detail, err := s.classes.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, fmt.Errorf("load class: %w", err)
	}
	resp := dto.NewClassResponse(*detail)
	return &resp, nil
}

// Update applies a partial edit to a class. Any change to scheduling data
// marks the class as manually overridden and, unless the caller set a status
// explicitly, moves it to the rescheduled state. An empty patch is rejected
// before any read.
func (s *ClassService) Update(ctx context.Context, id int64, patch dto.ClassUpdate) (*dto.ClassResponse, error) {
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, fmt.Errorf("load class: %w", err)
	}

	updates := make(map[string]interface{})
	dataChanged := false

	if patch.Date != nil {
		date, parseErr := parseDate(*patch.Date)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		if !sameDay(date, class.Date) {
			updates["date"] = date
			dataChanged = true
		}
	}
	if patch.StartTime != nil && !clockEqual(*patch.StartTime, class.StartTime) {
		updates["start_time"] = *patch.StartTime
		dataChanged = true
	}
	if patch.EndTime.Set {
		switch {
		case patch.EndTime.Value == nil && class.EndTime != nil:
			updates["end_time"] = nil
			dataChanged = true
		case patch.EndTime.Value != nil && (class.EndTime == nil || !clockEqual(*patch.EndTime.Value, *class.EndTime)):
			updates["end_time"] = *patch.EndTime.Value
			dataChanged = true
		}
	}
	if patch.WeekNumber != nil && *patch.WeekNumber != class.WeekNumber {
		if *patch.WeekNumber < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "week_number must be positive")
		}
		updates["week_number"] = *patch.WeekNumber
		dataChanged = true
	}
	if patch.Topic != nil && *patch.Topic != class.Topic {
		updates["topic"] = *patch.Topic
		dataChanged = true
	}
	if patch.TrimesterColor != nil && (class.TrimesterColor == nil || *patch.TrimesterColor != *class.TrimesterColor) {
		updates["trimester_color"] = *patch.TrimesterColor
		dataChanged = true
	}

	switch {
	case patch.Status != nil:
		updates["status"] = *patch.Status
	case dataChanged:
		updates["status"] = models.ClassStatusRescheduled
	}

	if len(updates) > 0 {
		if err := s.classes.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, err
		}
		s.invalidateAgendas(ctx)
	}

	detail, err := s.classes.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload class: %w", err)
	}
	resp := dto.NewClassResponse(*detail)
	return &resp, nil
}

// Agenda returns the classes of one level week, served from cache when warm.
func (s *ClassService) Agenda(ctx context.Context, levelID int64, week int) (*dto.AgendaResponse, error) {
	if week < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week must be positive")
	}
	if _, err := s.levels.FindByID(ctx, levelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, fmt.Errorf("load level: %w", err)
	}

	key := agendaCacheKey(levelID, week)
	if s.cacheReady() {
		var cached dto.AgendaResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("agenda cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	classes, err := s.classes.ListByLevelWeek(ctx, levelID, week)
	if err != nil {
		return nil, err
	}
	agenda := &dto.AgendaResponse{
		LevelID: levelID,
		Week:    week,
		Classes: make([]dto.ClassResponse, 0, len(classes)),
	}
	for _, detail := range classes {
		agenda.Classes = append(agenda.Classes, dto.NewClassResponse(detail))
	}

	if s.cacheReady() {
		if err := s.cache.Set(ctx, key, agenda, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("agenda cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return agenda, nil
}

// InvalidateAgendas drops every cached agenda. Called after bulk generation.
func (s *ClassService) InvalidateAgendas(ctx context.Context) {
	s.invalidateAgendas(ctx)
}

func (s *ClassService) invalidateAgendas(ctx context.Context) {
	if !s.cacheReady() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "agenda:*"); err != nil {
		s.logger.Warn("agenda cache invalidation failed", zap.Error(err))
	}
}

func (s *ClassService) cacheReady() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

func agendaCacheKey(levelID int64, week int) string {
	return fmt.Sprintf("agenda:%d:%d", levelID, week)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// clockEqual compares wall-clock strings, tolerating a trailing seconds
// component on either side ("09:00" equals "09:00:00").
func clockEqual(a, b string) bool {
	return trimSeconds(a) == trimSeconds(b)
}

func trimSeconds(clock string) string {
	if len(clock) == 8 && strings.Count(clock, ":") == 2 {
		return clock[:5]
	}
	return clock
}
