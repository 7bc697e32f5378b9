package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
)

// AttendanceJobs wraps the scheduled attendance maintenance work.
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	loc               *time.Location
	runHour           int
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, loc *time.Location, runHour int) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		loc:               loc,
		runHour:           runHour,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	if j.runHour < 0 {
		return
	}
	scheduler.AddJob("synthesize_absences", 1*time.Hour, j.SynthesizeAbsences)
}

// SynthesizeAbsences fills in absence records for the current month. In the
// first days of a month it also sweeps the previous month so late imports
// near the boundary still settle. Gated to one local hour per day; the
// synthesis itself is idempotent.
func (j *AttendanceJobs) SynthesizeAbsences(ctx context.Context) error {
	now := time.Now().In(j.loc)
	if now.Hour() != j.runHour {
		return nil
	}

	created, err := j.attendanceService.SynthesizeAbsences(ctx, now.Year(), now.Month())
	if err != nil {
		return fmt.Errorf("failed to synthesize absences for current month: %w", err)
	}

	total := created
	if now.Day() <= 3 {
		prev := now.AddDate(0, 0, -now.Day())
		created, err = j.attendanceService.SynthesizeAbsences(ctx, prev.Year(), prev.Month())
		if err != nil {
			return fmt.Errorf("failed to synthesize absences for previous month: %w", err)
		}
		total += created
	}

	slog.Info("Cron: absence synthesis complete", "created", total)
	return nil
}
