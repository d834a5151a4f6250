package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// SuggestionRepository persists rescheduling suggestions. All write methods
// accept an optional sqlx.ExtContext so the holiday recompute can run them
// inside one transaction.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository constructs a suggestion repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByHoliday removes every suggestion attached to a holiday.
func (r *SuggestionRepository) DeleteByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) error {
	const query = `DELETE FROM rescheduling_suggestions WHERE holiday_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, holidayID); err != nil {
		return fmt.Errorf("delete suggestions by holiday: %w", err)
	}
	return nil
}

// Upsert stores a suggestion, replacing the text when the (class, holiday)
// pair already exists.
func (r *SuggestionRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, suggestion *models.ReschedulingSuggestion) error {
	const query = `INSERT INTO rescheduling_suggestions (class_id, holiday_id, suggestion)
VALUES ($1, $2, $3)
ON CONFLICT (class_id, holiday_id) DO UPDATE SET suggestion = EXCLUDED.suggestion
RETURNING id`
	if err := sqlx.GetContext(ctx, r.exec(exec), &suggestion.ID, query,
		suggestion.ClassID, suggestion.HolidayID, suggestion.Suggestion); err != nil {
		return fmt.Errorf("upsert suggestion: %w", err)
	}
	return nil
}

// ListByHoliday returns a holiday's suggestions joined with the affected
// class's topic and date, in insertion order.
func (r *SuggestionRepository) ListByHoliday(ctx context.Context, exec sqlx.ExtContext, holidayID int64) ([]models.SuggestionDetail, error) {
	const query = `SELECT rs.id, rs.class_id, rs.holiday_id, rs.suggestion,
c.topic AS class_topic, c.date AS scheduled_date
FROM rescheduling_suggestions rs
JOIN classes c ON c.id = rs.class_id
WHERE rs.holiday_id = $1 ORDER BY rs.id`
	suggestions := []models.SuggestionDetail{}
	if err := sqlx.SelectContext(ctx, r.exec(exec), &suggestions, query, holidayID); err != nil {
		return nil, fmt.Errorf("list suggestions by holiday: %w", err)
	}
	return suggestions, nil
}
