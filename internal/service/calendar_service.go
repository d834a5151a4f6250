package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type blackoutRepository interface {
	Create(ctx context.Context, day *models.NoClassDay) error
	List(ctx context.Context) ([]models.NoClassDay, error)
	Delete(ctx context.Context, id int64) error
}

type academicYearRepository interface {
	Create(ctx context.Context, year *models.AcademicYear) error
	FindByID(ctx context.Context, id int64) (*models.AcademicYear, error)
	List(ctx context.Context) ([]models.AcademicYear, error)
}

// CalendarService manages blackout dates and academic years.
type CalendarService struct {
	blackouts blackoutRepository
	years     academicYearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService wires calendar dependencies.
func NewCalendarService(
	blackouts blackoutRepository,
	years academicYearRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		blackouts: blackouts,
		years:     years,
		validator: validate,
		logger:    logger,
	}
}

// CreateNoClassDay registers a blackout date.
func (s *CalendarService) CreateNoClassDay(ctx context.Context, req dto.NoClassDayRequest) (*dto.NoClassDayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	day := &models.NoClassDay{Date: date, Reason: req.Reason}
	if err := s.blackouts.Create(ctx, day); err != nil {
		return nil, err
	}
	resp := dto.NewNoClassDayResponse(*day)
	return &resp, nil
}

// ListNoClassDays returns every blackout date ordered chronologically.
func (s *CalendarService) ListNoClassDays(ctx context.Context) ([]dto.NoClassDayResponse, error) {
	days, err := s.blackouts.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.NoClassDayResponse, 0, len(days))
	for _, day := range days {
		responses = append(responses, dto.NewNoClassDayResponse(day))
	}
	return responses, nil
}

// DeleteNoClassDay removes a blackout date.
func (s *CalendarService) DeleteNoClassDay(ctx context.Context, id int64) error {
	if err := s.blackouts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no-class day not found")
		}
		return err
	}
	return nil
}

// CreateAcademicYear registers an academic year.
func (s *CalendarService) CreateAcademicYear(ctx context.Context, req dto.AcademicYearRequest) (*dto.AcademicYearResponse, error) {
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
	year := &models.AcademicYear{Name: req.Name, StartDate: start, EndDate: end}
	if err := s.years.Create(ctx, year); err != nil {
		return nil, fmt.Errorf("create academic year: %w", err)
	}
	resp := dto.NewAcademicYearResponse(*year)
	return &resp, nil
}

// ListAcademicYears returns every academic year ordered by start date.
func (s *CalendarService) ListAcademicYears(ctx context.Context) ([]dto.AcademicYearResponse, error) {
	years, err := s.years.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.AcademicYearResponse, 0, len(years))
	for _, year := range years {
		responses = append(responses, dto.NewAcademicYearResponse(year))
	}
	return responses, nil
}
