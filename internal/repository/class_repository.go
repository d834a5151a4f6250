package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// ClassRepository persists generated class instances. Write methods accept an
// optional sqlx.ExtContext so they can participate in a caller-managed
// transaction; passing nil falls back to the pooled connection.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteGenerated removes the non-overridden classes of a group/week pair so
// the generator can replace them.
func (r *ClassRepository) DeleteGenerated(ctx context.Context, exec sqlx.ExtContext, groupID int64, week int) error {
	const query = `DELETE FROM classes WHERE group_id = $1 AND week_number = $2 AND manual_override = FALSE`
	if _, err := r.exec(exec).ExecContext(ctx, query, groupID, week); err != nil {
		return fmt.Errorf("delete generated classes: %w", err)
	}
	return nil
}

// HasManualOverride reports whether any class of the group/week pair carries a
// manual override.
func (r *ClassRepository) HasManualOverride(ctx context.Context, exec sqlx.ExtContext, groupID int64, week int) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM classes WHERE group_id = $1 AND week_number = $2 AND manual_override = TRUE)`
	var overridden bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &overridden, query, groupID, week); err != nil {
		return false, fmt.Errorf("check manual override: %w", err)
	}
	return overridden, nil
}

// Insert stores a class and fills in its generated ID.
func (r *ClassRepository) Insert(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	const query = `INSERT INTO classes
(group_id, academic_year_id, week_number, date, start_time, end_time, topic, trimester_color, status, manual_override)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := sqlx.GetContext(ctx, r.exec(exec), &class.ID, query,
		class.GroupID, class.AcademicYearID, class.WeekNumber, class.Date,
		class.StartTime, class.EndTime, class.Topic, class.TrimesterColor,
		class.Status, class.ManualOverride); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// FindByID fetches a class.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, group_id, academic_year_id, week_number, date, start_time, end_time,
topic, trimester_color, status, manual_override FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindDetailByID fetches a class together with its group name and any
// rescheduling suggestions.
func (r *ClassRepository) FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	const query = `SELECT c.id, c.group_id, c.academic_year_id, c.week_number, c.date, c.start_time,
c.end_time, c.topic, c.trimester_color, c.status, c.manual_override, g.name AS group_name
FROM classes c JOIN groups g ON g.id = c.group_id WHERE c.id = $1`
	var detail models.ClassDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	const suggestionsQuery = `SELECT id, class_id, holiday_id, suggestion
FROM rescheduling_suggestions WHERE class_id = $1 ORDER BY id`
	detail.Suggestions = []models.ReschedulingSuggestion{}
	if err := r.db.SelectContext(ctx, &detail.Suggestions, suggestionsQuery, id); err != nil {
		return nil, fmt.Errorf("load class suggestions: %w", err)
	}
	return &detail, nil
}

// ListByLevelWeek returns the classes of every group in a level for one week,
// ordered chronologically.
func (r *ClassRepository) ListByLevelWeek(ctx context.Context, levelID int64, week int) ([]models.ClassDetail, error) {
	const query = `SELECT c.id, c.group_id, c.academic_year_id, c.week_number, c.date, c.start_time,
c.end_time, c.topic, c.trimester_color, c.status, c.manual_override, g.name AS group_name
FROM classes c JOIN groups g ON g.id = c.group_id
WHERE g.level_id = $1 AND c.week_number = $2
ORDER BY c.date, c.start_time, g.name`
	classes := []models.ClassDetail{}
	if err := r.db.SelectContext(ctx, &classes, query, levelID, week); err != nil {
		return nil, fmt.Errorf("list classes by level and week: %w", err)
	}
	return classes, nil
}

// ListByYearBetween returns the classes of an academic year falling inside the
// inclusive date range. Classes with no academic year never match.
func (r *ClassRepository) ListByYearBetween(ctx context.Context, exec sqlx.ExtContext, academicYearID int64, start, end time.Time) ([]models.Class, error) {
	const query = `SELECT id, group_id, academic_year_id, week_number, date, start_time, end_time,
topic, trimester_color, status, manual_override
FROM classes WHERE academic_year_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, id`
	classes := []models.Class{}
	if err := sqlx.SelectContext(ctx, r.exec(exec), &classes, query, academicYearID, start, end); err != nil {
		return nil, fmt.Errorf("list classes by year and range: %w", err)
	}
	return classes, nil
}

// UpdateFields applies a partial update. The updates map keys are column
// names; every updated class is marked as a manual override. Returns
// sql.ErrNoRows when the ID is unknown.
func (r *ClassRepository) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+2)
	i := 1
	for _, column := range []string{"date", "start_time", "end_time", "week_number", "topic", "trimester_color", "status"} {
		value, ok := updates[column]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	setClauses = append(setClauses, "manual_override = TRUE")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE classes SET %s WHERE id = $%d", strings.Join(setClauses, ", "), i)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
