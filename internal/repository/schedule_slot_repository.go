package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// ScheduleSlotRepository persists weekly schedule slots.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs a schedule slot repository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// Create inserts a slot and fills in its generated ID.
func (r *ScheduleSlotRepository) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	const query = `INSERT INTO schedules (group_id, weekday, start_time, end_time)
VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, slot.GroupID, slot.Weekday, slot.StartTime, slot.EndTime).
		Scan(&slot.ID); err != nil {
		return fmt.Errorf("create schedule slot: %w", err)
	}
	return nil
}

// ListByGroup returns a group's slots ordered by weekday then start time.
func (r *ScheduleSlotRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, group_id, weekday, start_time, end_time
FROM schedules WHERE group_id = $1 ORDER BY weekday, start_time`
	slots := []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, groupID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}
