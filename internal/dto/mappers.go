package dto

import (
	"github.com/lessonforge/planner-api/internal/models"
)

const dateLayout = "2006-01-02"

// NewSuggestionResponse converts a joined suggestion row.
func NewSuggestionResponse(s models.SuggestionDetail) SuggestionResponse {
	resp := SuggestionResponse{
		ID:         s.ID,
		ClassID:    s.ClassID,
		HolidayID:  s.HolidayID,
		Suggestion: s.Suggestion,
		ClassTopic: s.ClassTopic,
	}
	if s.ScheduledDate != nil {
		date := s.ScheduledDate.Format(dateLayout)
		resp.ScheduledDate = &date
	}
	return resp
}

// NewSuggestionResponses converts a slice of joined suggestion rows.
func NewSuggestionResponses(suggestions []models.SuggestionDetail) []SuggestionResponse {
	out := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, NewSuggestionResponse(s))
	}
	return out
}

// NewHolidayResponse converts a holiday and its suggestions.
func NewHolidayResponse(h models.Holiday, suggestions []models.SuggestionDetail) HolidayResponse {
	return HolidayResponse{
		ID:             h.ID,
		Name:           h.Name,
		StartDate:      h.StartDate.Format(dateLayout),
		EndDate:        h.EndDate.Format(dateLayout),
		AcademicYearID: h.AcademicYearID,
		Suggestions:    NewSuggestionResponses(suggestions),
	}
}

// NewClassResponse converts a class joined with its group name.
func NewClassResponse(detail models.ClassDetail) ClassResponse {
	resp := ClassResponse{
		ID:             detail.ID,
		Group:          GroupSummary{ID: detail.GroupID, Name: detail.GroupName},
		WeekNumber:     detail.WeekNumber,
		Date:           detail.Date.Format(dateLayout),
		StartTime:      detail.StartTime,
		EndTime:        detail.EndTime,
		Topic:          detail.Topic,
		TrimesterColor: detail.TrimesterColor,
		Status:         detail.Status,
		ManualOverride: detail.ManualOverride,
	}
	for _, s := range detail.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionResponse{
			ID:         s.ID,
			ClassID:    s.ClassID,
			HolidayID:  s.HolidayID,
			Suggestion: s.Suggestion,
		})
	}
	return resp
}

// NewAcademicYearResponse converts a stored academic year.
func NewAcademicYearResponse(y models.AcademicYear) AcademicYearResponse {
	return AcademicYearResponse{
		ID:        y.ID,
		Name:      y.Name,
		StartDate: y.StartDate.Format(dateLayout),
		EndDate:   y.EndDate.Format(dateLayout),
	}
}

// NewNoClassDayResponse converts a stored blackout date.
func NewNoClassDayResponse(d models.NoClassDay) NoClassDayResponse {
	return NoClassDayResponse{
		ID:     d.ID,
		Date:   d.Date.Format(dateLayout),
		Reason: d.Reason,
	}
}

// NewLevelResponse converts a stored level.
func NewLevelResponse(l models.Level) LevelResponse {
	return LevelResponse{
		ID:             l.ID,
		Name:           l.Name,
		StartDate:      l.StartDate.Format(dateLayout),
		AcademicYearID: l.AcademicYearID,
	}
}

// NewGroupResponse converts a group and its slots.
func NewGroupResponse(g models.Group, slots []models.ScheduleSlot) GroupResponse {
	resp := GroupResponse{
		ID:      g.ID,
		LevelID: g.LevelID,
		Name:    g.Name,
	}
	for _, slot := range slots {
		resp.Schedule = append(resp.Schedule, ScheduleSlotResponse{
			ID:        slot.ID,
			Weekday:   slot.Weekday,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return resp
}

// NewReportJobResponse converts a stored report job.
func NewReportJobResponse(job models.ReportJob, downloadURL *string) ReportJobResponse {
	return ReportJobResponse{
		ID:          job.ID,
		Status:      job.Status,
		Format:      job.Format,
		DownloadURL: downloadURL,
		Error:       job.ErrorMessage,
	}
}
