package dto

import "encoding/json"

// OptionalString distinguishes "absent", "explicit null" and "set" in
// PATCH payloads. An absent key leaves the stored value untouched, an
// explicit null clears it.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the key was present before decoding the value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// ClassUpdate is a partial update for one class. Dates use YYYY-MM-DD,
// times HH:MM.
type ClassUpdate struct {
	Date           *string        `json:"date"`
	StartTime      *string        `json:"start_time"`
	EndTime        OptionalString `json:"end_time"`
	WeekNumber     *int           `json:"week_number"`
	Topic          *string        `json:"topic"`
	TrimesterColor *string        `json:"trimester_color"`
	Status         *string        `json:"status"`
}

// Empty reports whether the patch carries no recognised field at all.
func (u ClassUpdate) Empty() bool {
	return u.Date == nil &&
		u.StartTime == nil &&
		!u.EndTime.Set &&
		u.WeekNumber == nil &&
		u.Topic == nil &&
		u.TrimesterColor == nil &&
		u.Status == nil
}

// GroupSummary is the compact group reference embedded in class output.
type GroupSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SuggestionResponse is a rescheduling suggestion joined with class context.
type SuggestionResponse struct {
	ID            int64   `json:"id"`
	ClassID       int64   `json:"class_id"`
	HolidayID     int64   `json:"holiday_id"`
	Suggestion    string  `json:"suggestion"`
	ClassTopic    *string `json:"class_topic,omitempty"`
	ScheduledDate *string `json:"scheduled_date,omitempty"`
}

// ClassResponse mirrors a stored class joined with its group.
type ClassResponse struct {
	ID             int64                `json:"id"`
	Group          GroupSummary         `json:"group"`
	WeekNumber     int                  `json:"week_number"`
	Date           string               `json:"date"`
	StartTime      string               `json:"start_time"`
	EndTime        *string              `json:"end_time,omitempty"`
	Topic          string               `json:"topic"`
	TrimesterColor *string              `json:"trimester_color,omitempty"`
	Status         string               `json:"status"`
	ManualOverride bool                 `json:"manual_override"`
	Suggestions    []SuggestionResponse `json:"suggestions,omitempty"`
}

// AgendaResponse lists the classes of one level week.
type AgendaResponse struct {
	LevelID int64           `json:"level_id"`
	Week    int             `json:"week"`
	Classes []ClassResponse `json:"classes"`
}
