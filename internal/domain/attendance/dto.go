package attendance

import (
	"strings"

	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordPunchRequest struct {
	EmployeeID string    `json:"employee_id"`
	Direction  Direction `json:"direction"`
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	dir := Direction(strings.ToUpper(string(r.Direction)))
	if dir != DirectionIn && dir != DirectionOut {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be IN or OUT",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// PunchResult is the outcome of a live clock action. A rejected punch is not
// an error: the reason is surfaced to the terminal and nothing is stored.
type PunchResult struct {
	Accepted bool            `json:"accepted"`
	Reason   *string         `json:"reason,omitempty"`
	Record   *RecordResponse `json:"record,omitempty"`
}

type RecordResponse struct {
	ID            string           `json:"id"`
	EmployeeID    string           `json:"employee_id"`
	EmployeeName  *string          `json:"employee_name,omitempty"`
	BusinessDay   string           `json:"business_day"`
	MorningIn     *string          `json:"morning_in,omitempty"`
	MorningOut    *string          `json:"morning_out,omitempty"`
	AfternoonIn   *string          `json:"afternoon_in,omitempty"`
	AfternoonOut  *string          `json:"afternoon_out,omitempty"`
	TimeIn        *string          `json:"time_in,omitempty"`
	TimeOut       *string          `json:"time_out,omitempty"`
	HoursWorked   *decimal.Decimal `json:"hours_worked,omitempty"`
	IsLate        bool             `json:"is_late"`
	IsAbsent      bool             `json:"is_absent"`
	IsHalfDay     bool             `json:"is_half_day"`
	IsEarlyOut    bool             `json:"is_early_out"`
	LateMinutes   int              `json:"late_minutes"`
	TotalSessions int              `json:"total_sessions"`
	SessionType   *string          `json:"session_type,omitempty"`
	Status        string           `json:"status"`
}

type RecordFilter struct {
	EmployeeID *string
	StartDay   *string
	EndDay     *string
	Status     *string
	Page       int
	Limit      int
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDay != nil && *f.StartDay != "" {
		if _, ok := validator.IsValidDate(*f.StartDay); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_day",
				Message: "start_day must be YYYY-MM-DD",
			})
		}
	}
	if f.EndDay != nil && *f.EndDay != "" {
		if _, ok := validator.IsValidDate(*f.EndDay); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_day",
				Message: "end_day must be YYYY-MM-DD",
			})
		}
	}
	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, []string{"PENDING", "APPROVED", "REJECTED"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be PENDING, APPROVED or REJECTED",
			})
		}
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Records    []RecordResponse `json:"records"`
}

type ApproveRecordRequest struct {
	ID string `json:"id"`
}

type RejectRecordRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func (r *RejectRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
