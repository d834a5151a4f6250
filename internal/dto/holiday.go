package dto

// HolidayRequest creates or replaces a holiday. Dates use YYYY-MM-DD.
type HolidayRequest struct {
	Name           string `json:"name" validate:"required"`
	StartDate      string `json:"start_date" validate:"required"`
	EndDate        string `json:"end_date" validate:"required"`
	AcademicYearID int64  `json:"academic_year_id" validate:"required"`
}

// HolidayResponse mirrors a holiday with its freshly computed suggestions.
type HolidayResponse struct {
	ID             int64                `json:"id"`
	Name           string               `json:"name"`
	StartDate      string               `json:"start_date"`
	EndDate        string               `json:"end_date"`
	AcademicYearID int64                `json:"academic_year_id"`
	Suggestions    []SuggestionResponse `json:"suggestions"`
}

// AcademicYearRequest creates an academic year.
type AcademicYearRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// AcademicYearResponse mirrors a stored academic year.
type AcademicYearResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// NoClassDayRequest registers a blackout date.
type NoClassDayRequest struct {
	Date   string  `json:"date" validate:"required"`
	Reason *string `json:"reason"`
}

// NoClassDayResponse mirrors a stored blackout date.
type NoClassDayResponse struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"`
	Reason *string `json:"reason,omitempty"`
}
