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

type holidayRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error
	FindByID(ctx context.Context, id int64) (*models.Holiday, error)
	Update(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error
	Delete(ctx context.Context, id int64) error
	ListByYear(ctx context.Context, academicYearID int64) ([]models.Holiday, error)
}

type holidayClassReader interface {
	ListByYearBetween(ctx context.Context, exec sqlx.ExtContext, academicYearID int64, start, end time.Time) ([]models.Class, error)
}

type holidaySuggestionRepository interface {
	DeleteByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) error
	Upsert(ctx context.Context, exec sqlx.ExtContext, suggestion *models.ReschedulingSuggestion) error
	ListByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) ([]models.SuggestionDetail, error)
}

type holidayYearReader interface {
	FindByID(ctx context.Context, id int64) (*models.AcademicYear, error)
}

// HolidayService manages holidays and keeps their rescheduling suggestions in
// step with the class calendar.
type HolidayService struct {
	holidays    holidayRepository
	classes     holidayClassReader
	suggestions holidaySuggestionRepository
	years       holidayYearReader
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewHolidayService wires holiday dependencies.
func NewHolidayService(
	holidays holidayRepository,
	classes holidayClassReader,
	suggestions holidaySuggestionRepository,
	years holidayYearReader,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{
		holidays:    holidays,
		classes:     classes,
		suggestions: suggestions,
		years:       years,
		tx:          tx,
		validator:   validate,
		logger:      logger,
	}
}

// Create stores a holiday and computes its rescheduling suggestions in one
// transaction.
func (s *HolidayService) Create(ctx context.Context, req dto.HolidayRequest) (*models.Holiday, []models.SuggestionDetail, error) {
	holiday, err := s.buildHoliday(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var suggestions []models.SuggestionDetail
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.holidays.Create(ctx, tx, holiday); err != nil {
			return err
		}
		suggestions, err = s.recomputeForHoliday(ctx, tx, holiday)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return holiday, suggestions, nil
}

// Update rewrites a holiday and fully recomputes its suggestions.
func (s *HolidayService) Update(ctx context.Context, id int64, req dto.HolidayRequest) (*models.Holiday, []models.SuggestionDetail, error) {
	if _, err := s.holidays.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return nil, nil, fmt.Errorf("load holiday: %w", err)
	}

	holiday, err := s.buildHoliday(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	holiday.ID = id

	var suggestions []models.SuggestionDetail
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.holidays.Update(ctx, tx, holiday); err != nil {
			return err
		}
		suggestions, err = s.recomputeForHoliday(ctx, tx, holiday)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return holiday, suggestions, nil
}

// Delete removes a holiday; its suggestions follow via the FK cascade, so no
// recomputation happens here.
func (s *HolidayService) Delete(ctx context.Context, id int64) error {
	if err := s.holidays.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return err
	}
	return nil
}

// ListByYear returns an academic year's holidays, each with its current
// suggestions.
func (s *HolidayService) ListByYear(ctx context.Context, academicYearID int64) ([]dto.HolidayResponse, error) {
	if _, err := s.years.FindByID(ctx, academicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, fmt.Errorf("load academic year: %w", err)
	}

	holidays, err := s.holidays.ListByYear(ctx, academicYearID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		suggestions, err := s.suggestions.ListByHoliday(ctx, nil, h.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewHolidayResponse(h, suggestions))
	}
	return responses, nil
}

func (s *HolidayService) buildHoliday(ctx context.Context, req dto.HolidayRequest) (*models.Holiday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	if _, err := s.years.FindByID(ctx, req.AcademicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "academic year does not exist")
		}
		return nil, fmt.Errorf("load academic year: %w", err)
	}
	return &models.Holiday{
		Name:           req.Name,
		StartDate:      start,
		EndDate:        end,
		AcademicYearID: req.AcademicYearID,
	}, nil
}

// recomputeForHoliday replaces every suggestion of the holiday: old rows are
// deleted, one row is upserted per class of the holiday's academic year whose
// date falls inside the range, and the joined result is re-read in id order.
func (s *HolidayService) recomputeForHoliday(ctx context.Context, tx *sqlx.Tx, holiday *models.Holiday) ([]models.SuggestionDetail, error) {
	overlapping, err := s.classes.ListByYearBetween(ctx, tx, holiday.AcademicYearID, holiday.StartDate, holiday.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.suggestions.DeleteByHoliday(ctx, tx, holiday.ID); err != nil {
		return nil, err
	}

	for _, class := range overlapping {
		suggestion := &models.ReschedulingSuggestion{
			ClassID:    class.ID,
			HolidayID:  holiday.ID,
			Suggestion: suggestionText(class, holiday),
		}
		if err := s.suggestions.Upsert(ctx, tx, suggestion); err != nil {
			return nil, err
		}
	}

	s.logger.Info("holiday suggestions recomputed",
		zap.Int64("holiday_id", holiday.ID),
		zap.Int("overlapping_classes", len(overlapping)))
	return s.suggestions.ListByHoliday(ctx, tx, holiday.ID)
}

func (s *HolidayService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin holiday transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit holiday transaction: %w", err)
	}
	return nil
}

func suggestionText(class models.Class, holiday *models.Holiday) string {
	label := "Class"
	if class.Topic != "" {
		label = fmt.Sprintf("Class '%s'", class.Topic)
	}
	return fmt.Sprintf("%s scheduled on %s overlaps with holiday '%s'. Consider rescheduling.",
		label, class.Date.Format("2006-01-02"), holiday.Name)
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
