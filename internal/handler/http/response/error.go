package response

import (
	"errors"
	"net/http"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/biometric"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrInvalidCredentials):
		Unauthorized(w, "Invalid employee code or pin")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyProcessed):
		Conflict(w, "Attendance record already processed")
	case errors.Is(err, attendance.ErrUnknownDirection):
		BadRequest(w, "Punch direction must be IN or OUT", nil)

	// Import domain errors
	case errors.Is(err, biometric.ErrBatchNotFound):
		NotFound(w, "Import batch not found")
	case errors.Is(err, biometric.ErrEmptyImport):
		BadRequest(w, "Import file has no data rows", nil)
	case errors.Is(err, biometric.ErrMissingColumns):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRuleNotFound):
		NotFound(w, "Payroll rule not found")
	case errors.Is(err, payroll.ErrRoleNotFound):
		NotFound(w, "Payroll role not found")
	case errors.Is(err, payroll.ErrResultNotFound):
		NotFound(w, "Payroll result not found")
	case errors.Is(err, payroll.ErrAssignmentExists):
		Conflict(w, "Rule is already assigned to this employee")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Period end must not precede period start", nil)
	case errors.Is(err, payroll.ErrResultFinalized):
		Conflict(w, "Payroll result has been finalized")

	// Calendar domain errors
	case errors.Is(err, calendar.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, calendar.ErrHolidayExists):
		Conflict(w, "Holiday already exists on that date")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
