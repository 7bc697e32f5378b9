package payroll

import (
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Computation is the full itemized output of the calculation routine.
// Pure given attendance, rates and config: computing twice for the same
// inputs yields the same values. Diagnostics carry non-fatal findings such
// as "no resolvable rate"; a zero computation is valid, not an error.
type Computation struct {
	EmployeeID  string    `json:"employee_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	DailyRate  decimal.Decimal `json:"daily_rate"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`

	DaysWorked     decimal.Decimal `json:"days_worked"`
	HoursWorked    decimal.Decimal `json:"hours_worked"`
	OvertimeHours  decimal.Decimal `json:"overtime_hours"`
	UndertimeHours decimal.Decimal `json:"undertime_hours"`
	LateHours      decimal.Decimal `json:"late_hours"`
	HolidayHours   decimal.Decimal `json:"holiday_hours"`

	RegularPay    decimal.Decimal `json:"regular_pay"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	HolidayPay    decimal.Decimal `json:"holiday_pay"`
	Allowances    decimal.Decimal `json:"allowances"`
	Bonuses       decimal.Decimal `json:"bonuses"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	GrossPay      decimal.Decimal `json:"gross_pay"`

	SSS            decimal.Decimal `json:"sss"`
	PhilHealth     decimal.Decimal `json:"philhealth"`
	PagIBIG        decimal.Decimal `json:"pagibig"`
	TaxableIncome  decimal.Decimal `json:"taxable_income"`
	WithholdingTax decimal.Decimal `json:"withholding_tax"`

	LateDeductions      decimal.Decimal `json:"late_deductions"`
	UndertimeDeductions decimal.Decimal `json:"undertime_deductions"`
	LoanDeductions      decimal.Decimal `json:"loan_deductions"`
	OtherDeductions     decimal.Decimal `json:"other_deductions"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`

	NetPay decimal.Decimal `json:"net_pay"`

	AppliedRules map[string]decimal.Decimal `json:"applied_rules,omitempty"`
	Diagnostics  []string                   `json:"diagnostics,omitempty"`
}

type GenerateRequest struct {
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // empty means all active
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.PeriodStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "period_start",
			Message: "period_start must be YYYY-MM-DD",
		})
	}
	end, okEnd := validator.IsValidDate(r.PeriodEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "period_end",
			Message: "period_end must be YYYY-MM-DD",
		})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "period_end",
			Message: "period_end must not precede period_start",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateRuleRequest struct {
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"is_percentage"`
	AppliesToAll bool            `json:"applies_to_all"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsInSlice(r.Kind, []string{
		string(RuleKindBase), string(RuleKindAllowance), string(RuleKindBonus),
		string(RuleKindDeduction), string(RuleKindLoan),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be base, allowance, bonus, deduction or loan",
		})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpsertRoleRequest struct {
	EmployeeID string          `json:"employee_id"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
	Department *string         `json:"department,omitempty"`
	Position   *string         `json:"position,omitempty"`
	IsActive   bool            `json:"is_active"`
}

func (r *UpsertRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.DailyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "daily_rate",
			Message: "daily_rate must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ResultFilter struct {
	EmployeeID  *string
	PeriodStart *string
	PeriodEnd   *string
	Status      *string
	Page        int
	Limit       int
}

type ResultResponse struct {
	Computation
	ID           string  `json:"id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Status       string  `json:"status"`
}

type ListResultsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Results    []ResultResponse `json:"results"`
}

// GenerateReport summarizes one period run across employees.
type GenerateReport struct {
	Computed    int      `json:"computed"`
	Skipped     int      `json:"skipped"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}
