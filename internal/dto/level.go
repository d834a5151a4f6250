package dto

// CreateLevelRequest registers a new level. Dates use YYYY-MM-DD.
type CreateLevelRequest struct {
	Name           string `json:"name" validate:"required"`
	StartDate      string `json:"start_date" validate:"required"`
	AcademicYearID *int64 `json:"academic_year_id"`
}

// LevelResponse mirrors a stored level.
type LevelResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	StartDate      string `json:"start_date"`
	AcademicYearID *int64 `json:"academic_year_id,omitempty"`
}

// ScheduleSlotRequest defines one recurring weekly slot. Times use HH:MM.
type ScheduleSlotRequest struct {
	Weekday   int     `json:"weekday" validate:"min=0,max=6"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   *string `json:"end_time"`
}

// CreateGroupRequest registers a group with its weekly pattern.
type CreateGroupRequest struct {
	Name     string                `json:"name" validate:"required"`
	Schedule []ScheduleSlotRequest `json:"schedule" validate:"dive"`
}

// ScheduleSlotResponse mirrors a stored slot.
type ScheduleSlotResponse struct {
	ID        int64   `json:"id"`
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time,omitempty"`
}

// GroupResponse mirrors a stored group including its schedule.
type GroupResponse struct {
	ID       int64                  `json:"id"`
	LevelID  int64                  `json:"level_id"`
	Name     string                 `json:"name"`
	Schedule []ScheduleSlotResponse `json:"schedule"`
}
