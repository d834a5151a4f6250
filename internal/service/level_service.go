package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type levelRepository interface {
	Create(ctx context.Context, level *models.Level) error
	FindByID(ctx context.Context, id int64) (*models.Level, error)
}

type groupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id int64) (*models.Group, error)
	ListByLevel(ctx context.Context, levelID int64) ([]models.Group, error)
}

type slotRepository interface {
	Create(ctx context.Context, slot *models.ScheduleSlot) error
	ListByGroup(ctx context.Context, groupID int64) ([]models.ScheduleSlot, error)
}

type levelYearReader interface {
	FindByID(ctx context.Context, id int64) (*models.AcademicYear, error)
}

// LevelService manages levels, groups and their weekly schedule patterns.
type LevelService struct {
	levels    levelRepository
	groups    groupRepository
	slots     slotRepository
	years     levelYearReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLevelService wires level dependencies.
func NewLevelService(
	levels levelRepository,
	groups groupRepository,
	slots slotRepository,
	years levelYearReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *LevelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LevelService{
		levels:    levels,
		groups:    groups,
		slots:     slots,
		years:     years,
		validator: validate,
		logger:    logger,
	}
}

// CreateLevel registers a level. The optional academic year must exist; it is
// inherited by every class generated for the level.
func (s *LevelService) CreateLevel(ctx context.Context, req dto.CreateLevelRequest) (*dto.LevelResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	if req.AcademicYearID != nil {
		if _, err := s.years.FindByID(ctx, *req.AcademicYearID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "academic year does not exist")
			}
			return nil, fmt.Errorf("load academic year: %w", err)
		}
	}

	level := &models.Level{
		Name:           req.Name,
		StartDate:      startDate,
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.levels.Create(ctx, level); err != nil {
		return nil, err
	}
	resp := dto.NewLevelResponse(*level)
	return &resp, nil
}

// GetLevel returns a level with its groups and their schedules.
func (s *LevelService) GetLevel(ctx context.Context, id int64) (*dto.LevelResponse, []dto.GroupResponse, error) {
	level, err := s.levels.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, nil, fmt.Errorf("load level: %w", err)
	}
	groups, err := s.groups.ListByLevel(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	groupResponses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		slots, err := s.slots.ListByGroup(ctx, group.ID)
		if err != nil {
			return nil, nil, err
		}
		groupResponses = append(groupResponses, dto.NewGroupResponse(group, slots))
	}
	levelResp := dto.NewLevelResponse(*level)
	return &levelResp, groupResponses, nil
}

// CreateGroup registers a group under a level together with its weekly slots.
func (s *LevelService) CreateGroup(ctx context.Context, levelID int64, req dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := validateSlots(req.Schedule); err != nil {
		return nil, err
	}
	if _, err := s.levels.FindByID(ctx, levelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, fmt.Errorf("load level: %w", err)
	}

	group := &models.Group{LevelID: levelID, Name: req.Name}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}

	slots := make([]models.ScheduleSlot, 0, len(req.Schedule))
	for _, slotReq := range req.Schedule {
		slot := models.ScheduleSlot{
			GroupID:   group.ID,
			Weekday:   slotReq.Weekday,
			StartTime: slotReq.StartTime,
			EndTime:   slotReq.EndTime,
		}
		if err := s.slots.Create(ctx, &slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	s.logger.Info("group created",
		zap.Int64("level_id", levelID),
		zap.Int64("group_id", group.ID),
		zap.Int("slots", len(slots)))
	resp := dto.NewGroupResponse(*group, slots)
	return &resp, nil
}

// validateSlots enforces the slot invariants: parseable times, end after
// start and at most one slot per (weekday, start) pair.
func validateSlots(slots []dto.ScheduleSlotRequest) error {
	type slotKey struct {
		weekday int
		start   string
	}
	seen := make(map[slotKey]struct{}, len(slots))
	for _, slot := range slots {
		start, err := parseClock(slot.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("start_time %q must be HH:MM", slot.StartTime))
		}
		if slot.EndTime != nil {
			end, err := parseClock(*slot.EndTime)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("end_time %q must be HH:MM", *slot.EndTime))
			}
			if !end.After(start) {
				return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
			}
		}
		key := slotKey{weekday: slot.Weekday, start: trimSeconds(slot.StartTime)}
		if _, dup := seen[key]; dup {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("duplicate slot for weekday %d at %s", slot.Weekday, slot.StartTime))
		}
		seen[key] = struct{}{}
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", trimSeconds(value))
}
