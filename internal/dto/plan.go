package dto

// PlanTopic assigns a topic to a group for one week of the plan.
type PlanTopic struct {
	GroupID        int64   `json:"group_id" validate:"required"`
	Topic          string  `json:"topic" validate:"required"`
	TrimesterColor *string `json:"trimester_color"`
}

// PlanWeek groups the topic assignments of a single plan week.
type PlanWeek struct {
	WeekNumber int         `json:"week_number" validate:"required,min=1"`
	Topics     []PlanTopic `json:"topics" validate:"dive"`
}

// PlanPayload is a multi-week topic plan for one level.
type PlanPayload struct {
	LevelID int64      `json:"level_id" validate:"required"`
	Weeks   []PlanWeek `json:"weeks" validate:"dive"`
}

// GenerateClassesResponse reports how many sessions were created.
type GenerateClassesResponse struct {
	Generated int `json:"generated"`
}
