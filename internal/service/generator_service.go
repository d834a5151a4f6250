package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type generatorLevelReader interface {
	FindByID(ctx context.Context, id int64) (*models.Level, error)
}

type generatorGroupLister interface {
	ListByLevel(ctx context.Context, levelID int64) ([]models.Group, error)
}

type generatorSlotLister interface {
	ListByGroup(ctx context.Context, groupID int64) ([]models.ScheduleSlot, error)
}

type generatorBlackoutReader interface {
	DateSet(ctx context.Context) (map[time.Time]struct{}, error)
}

type generatorClassWriter interface {
	DeleteGenerated(ctx context.Context, exec sqlx.ExtContext, groupID int64, week int) error
	HasManualOverride(ctx context.Context, exec sqlx.ExtContext, groupID int64, week int) (bool, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// GeneratorService turns a weekly lesson plan into concrete class rows.
type GeneratorService struct {
	levels    generatorLevelReader
	groups    generatorGroupLister
	slots     generatorSlotLister
	blackouts generatorBlackoutReader
	classes   generatorClassWriter
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGeneratorService wires generator dependencies.
func NewGeneratorService(
	levels generatorLevelReader,
	groups generatorGroupLister,
	slots generatorSlotLister,
	blackouts generatorBlackoutReader,
	classes generatorClassWriter,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{
		levels:    levels,
		groups:    groups,
		slots:     slots,
		blackouts: blackouts,
		classes:   classes,
		tx:        tx,
		validator: validate,
		logger:    logger,
	}
}

// Generate materialises the plan into class rows. For every (group, week)
// pair it purges previously generated rows, skips blackout dates, and skips
// inserting into weeks that contain manually overridden classes. The whole
// plan commits or rolls back as one unit.
func (s *GeneratorService) Generate(ctx context.Context, payload dto.PlanPayload) (generated int, err error) {
	if err = s.validator.Struct(payload); err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	level, err := s.levels.FindByID(ctx, payload.LevelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrScheduler,
				fmt.Sprintf("level %d not found", payload.LevelID))
		}
		return 0, fmt.Errorf("load level: %w", err)
	}

	levelGroups, err := s.groups.ListByLevel(ctx, level.ID)
	if err != nil {
		return 0, err
	}
	groupSet := make(map[int64]struct{}, len(levelGroups))
	for _, g := range levelGroups {
		groupSet[g.ID] = struct{}{}
	}

	blackouts, err := s.blackouts.DateSet(ctx)
	if err != nil {
		return 0, err
	}

	slotCache := make(map[int64][]models.ScheduleSlot)

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin plan transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, week := range payload.Weeks {
		// Colour assignments within a week are keyed by group; when a
		// group appears more than once the last entry wins, including an
		// explicit null that clears an earlier colour.
		colours := make(map[int64]*string, len(week.Topics))
		for _, topic := range week.Topics {
			colours[topic.GroupID] = topic.TrimesterColor
		}

		for _, topic := range week.Topics {
			if _, ok := groupSet[topic.GroupID]; !ok {
				s.logger.Info("skipping group outside level",
					zap.Int64("group_id", topic.GroupID),
					zap.Int64("level_id", level.ID))
				continue
			}

			if err = s.classes.DeleteGenerated(ctx, tx, topic.GroupID, week.WeekNumber); err != nil {
				return 0, err
			}

			overridden, checkErr := s.classes.HasManualOverride(ctx, tx, topic.GroupID, week.WeekNumber)
			if checkErr != nil {
				err = checkErr
				return 0, err
			}
			if overridden {
				s.logger.Info("skipping week with manual overrides",
					zap.Int64("group_id", topic.GroupID),
					zap.Int("week", week.WeekNumber))
				continue
			}

			groupSlots, ok := slotCache[topic.GroupID]
			if !ok {
				groupSlots, err = s.slots.ListByGroup(ctx, topic.GroupID)
				if err != nil {
					return 0, err
				}
				slotCache[topic.GroupID] = groupSlots
			}

			for _, slot := range groupSlots {
				date := classDate(level.StartDate, week.WeekNumber, slot.Weekday)
				if _, blocked := blackouts[date]; blocked {
					continue
				}
				class := &models.Class{
					GroupID:        topic.GroupID,
					AcademicYearID: level.AcademicYearID,
					WeekNumber:     week.WeekNumber,
					Date:           date,
					StartTime:      slot.StartTime,
					EndTime:        slot.EndTime,
					Topic:          topic.Topic,
					TrimesterColor: colours[topic.GroupID],
					Status:         models.ClassStatusScheduled,
					ManualOverride: false,
				}
				if err = s.classes.Insert(ctx, tx, class); err != nil {
					return 0, err
				}
				generated++
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit plan transaction: %w", err)
	}

	s.logger.Info("plan generated",
		zap.Int64("level_id", level.ID),
		zap.Int("classes", generated))
	return generated, nil
}

// classDate resolves the calendar date for a slot: week one starts on the
// level's start date and weekday offsets count from that day.
func classDate(startDate time.Time, weekNumber, weekday int) time.Time {
	y, m, d := startDate.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, (weekNumber-1)*7+weekday)
}
