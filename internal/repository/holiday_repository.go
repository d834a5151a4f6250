package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// HolidayRepository persists holidays. Write methods accept an optional
// sqlx.ExtContext for transaction participation.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs a holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a holiday and fills in its generated ID.
func (r *HolidayRepository) Create(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error {
	const query = `INSERT INTO holidays (name, start_date, end_date, academic_year_id)
VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, r.exec(exec), &holiday.ID, query,
		holiday.Name, holiday.StartDate, holiday.EndDate, holiday.AcademicYearID); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// FindByID fetches a holiday.
func (r *HolidayRepository) FindByID(ctx context.Context, id int64) (*models.Holiday, error) {
	const query = `SELECT id, name, start_date, end_date, academic_year_id FROM holidays WHERE id = $1`
	var holiday models.Holiday
	if err := r.db.GetContext(ctx, &holiday, query, id); err != nil {
		return nil, err
	}
	return &holiday, nil
}

// Update rewrites a holiday's fields. Returns sql.ErrNoRows when the ID is
// unknown.
func (r *HolidayRepository) Update(ctx context.Context, exec sqlx.ExtContext, holiday *models.Holiday) error {
	const query = `UPDATE holidays SET name = $1, start_date = $2, end_date = $3, academic_year_id = $4
WHERE id = $5`
	result, err := r.exec(exec).ExecContext(ctx, query,
		holiday.Name, holiday.StartDate, holiday.EndDate, holiday.AcademicYearID, holiday.ID)
	if err != nil {
		return fmt.Errorf("update holiday: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update holiday: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a holiday; its suggestions go with it via the FK cascade.
// Returns sql.ErrNoRows when the ID is unknown.
func (r *HolidayRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM holidays WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByYear returns the holidays of an academic year ordered by start date.
func (r *HolidayRepository) ListByYear(ctx context.Context, academicYearID int64) ([]models.Holiday, error) {
	const query = `SELECT id, name, start_date, end_date, academic_year_id
FROM holidays WHERE academic_year_id = $1 ORDER BY start_date, id`
	holidays := []models.Holiday{}
	if err := r.db.SelectContext(ctx, &holidays, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list holidays by year: %w", err)
	}
	return holidays, nil
}
