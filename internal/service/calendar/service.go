package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
)

const dayKeyFormat = "2006-01-02"

// CalendarServiceImpl derives working days from the weekday pattern minus
// stored holidays. All day math happens in the reference timezone.
type CalendarServiceImpl struct {
	holidayRepo calendar.HolidayRepository
	loc         *time.Location
}

func NewCalendarService(holidayRepo calendar.HolidayRepository, loc *time.Location) calendar.CalendarService {
	return &CalendarServiceImpl{holidayRepo: holidayRepo, loc: loc}
}

// WorkingDays implements calendar.WorkCalendar. Weekends are never working
// days; holidays drop out unless marked as working.
func (c *CalendarServiceImpl) WorkingDays(ctx context.Context, year int, month time.Month) (map[string]struct{}, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	holidays, err := c.holidayRepo.ListByRange(ctx, monthStart, nextMonth.Add(-time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	nonWorking := map[string]struct{}{}
	for _, h := range holidays {
		if !h.IsWorkday {
			nonWorking[h.Date.In(c.loc).Format(dayKeyFormat)] = struct{}{}
		}
	}

	days := map[string]struct{}{}
	for cursor := monthStart; cursor.Before(nextMonth); cursor = cursor.AddDate(0, 0, 1) {
		if cursor.Weekday() == time.Saturday || cursor.Weekday() == time.Sunday {
			continue
		}
		key := cursor.Format(dayKeyFormat)
		if _, skip := nonWorking[key]; skip {
			continue
		}
		days[key] = struct{}{}
	}
	return days, nil
}

// HolidaysByRange implements calendar.WorkCalendar.
func (c *CalendarServiceImpl) HolidaysByRange(ctx context.Context, start, end time.Time) (map[string]policy.HolidayKind, error) {
	holidays, err := c.holidayRepo.ListByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	out := make(map[string]policy.HolidayKind, len(holidays))
	for _, h := range holidays {
		out[h.Date.In(c.loc).Format(dayKeyFormat)] = h.Kind
	}
	return out, nil
}

// CreateHoliday implements calendar.CalendarService.
func (c *CalendarServiceImpl) CreateHoliday(ctx context.Context, req calendar.CreateHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	date, err := time.ParseInLocation(dayKeyFormat, req.Date, c.loc)
	if err != nil {
		return calendar.HolidayResponse{}, fmt.Errorf("invalid holiday date: %w", err)
	}

	holiday, err := c.holidayRepo.Create(ctx, calendar.Holiday{
		Date:      date,
		Name:      req.Name,
		Kind:      policy.HolidayKind(req.Kind),
		IsWorkday: req.IsWorkday,
	})
	if err != nil {
		return calendar.HolidayResponse{}, err
	}

	return mapHolidayToResponse(holiday, c.loc), nil
}

// ListHolidays implements calendar.CalendarService.
func (c *CalendarServiceImpl) ListHolidays(ctx context.Context, year int) ([]calendar.HolidayResponse, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, c.loc)
	end := start.AddDate(1, 0, 0).Add(-time.Second)

	holidays, err := c.holidayRepo.ListByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, mapHolidayToResponse(h, c.loc))
	}
	return responses, nil
}

// DeleteHoliday implements calendar.CalendarService.
func (c *CalendarServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	return c.holidayRepo.Delete(ctx, id)
}

func mapHolidayToResponse(h calendar.Holiday, loc *time.Location) calendar.HolidayResponse {
	return calendar.HolidayResponse{
		ID:        h.ID,
		Date:      h.Date.In(loc).Format(dayKeyFormat),
		Name:      h.Name,
		Kind:      string(h.Kind),
		IsWorkday: h.IsWorkday,
	}
}
