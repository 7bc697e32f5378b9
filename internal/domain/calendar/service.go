package calendar

import (
	"context"
)

// CalendarService manages the holiday table and answers working-day
// questions for absence synthesis and payroll.
type CalendarService interface {
	WorkCalendar

	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)

	// ListHolidays returns the holidays of one calendar year, ordered by
	// date.
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)

	DeleteHoliday(ctx context.Context, id string) error
}
