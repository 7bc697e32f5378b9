package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
)

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrHolidayExists   = errors.New("holiday already exists on that date")
)

// Holiday is a non-working or premium-pay calendar entry.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	Kind      policy.HolidayKind
	IsWorkday bool // special working holidays still count as working days
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HolidayRepository provides access to the stored holiday table.
type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
	Delete(ctx context.Context, id string) error
}

// WorkCalendar answers which calendar days count as working days. Day keys
// use the "2006-01-02" business-day format in the reference timezone.
type WorkCalendar interface {
	WorkingDays(ctx context.Context, year int, month time.Month) (map[string]struct{}, error)

	// HolidaysByRange maps business-day keys to holiday kind for premium
	// pay computation over a pay period.
	HolidaysByRange(ctx context.Context, start, end time.Time) (map[string]policy.HolidayKind, error)
}
