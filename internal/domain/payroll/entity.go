package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleKind enumerates payroll rule categories.
type RuleKind string

const (
	RuleKindBase      RuleKind = "base"
	RuleKindAllowance RuleKind = "allowance"
	RuleKindBonus     RuleKind = "bonus"
	RuleKindDeduction RuleKind = "deduction"
	RuleKindLoan      RuleKind = "loan"
)

// Rule is one configurable earnings or deduction line. Global rules
// (AppliesToAll) apply to every employee; others require an assignment.
type Rule struct {
	ID           string
	Name         string
	Kind         RuleKind
	Amount       decimal.Decimal
	IsPercentage bool // percentage of period gross base pay when true
	AppliesToAll bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RuleAssignment links a non-global rule to one employee.
type RuleAssignment struct {
	ID         string
	RuleID     string
	EmployeeID string
	CreatedAt  time.Time
}

// Role is an optional per-employee rate override. An active role wins over
// any base rules when resolving the daily rate.
type Role struct {
	ID         string
	EmployeeID string
	DailyRate  decimal.Decimal
	Department *string
	Position   *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResultStatus is the lifecycle state of a computed payroll row.
type ResultStatus string

const (
	ResultStatusDraft     ResultStatus = "draft"
	ResultStatusFinalized ResultStatus = "finalized"
	ResultStatusPaid      ResultStatus = "paid"
)

// Result is one employee's fully itemized pay computation for one period.
// Unique per (EmployeeID, PeriodStart, PeriodEnd); regeneration upserts.
// All money fields are currency amounts; all *Hours fields are decimal
// hours; DaysWorked counts half days as 0.5.
type Result struct {
	ID          string
	EmployeeID  string
	PeriodStart time.Time
	PeriodEnd   time.Time

	DailyRate  decimal.Decimal
	HourlyRate decimal.Decimal

	DaysWorked     decimal.Decimal
	HoursWorked    decimal.Decimal
	OvertimeHours  decimal.Decimal
	UndertimeHours decimal.Decimal
	LateHours      decimal.Decimal
	HolidayHours   decimal.Decimal

	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	HolidayPay    decimal.Decimal
	Allowances    decimal.Decimal
	Bonuses       decimal.Decimal
	TotalEarnings decimal.Decimal
	GrossPay      decimal.Decimal

	SSS            decimal.Decimal
	PhilHealth     decimal.Decimal
	PagIBIG        decimal.Decimal
	TaxableIncome  decimal.Decimal
	WithholdingTax decimal.Decimal

	LateDeductions      decimal.Decimal
	UndertimeDeductions decimal.Decimal
	LoanDeductions      decimal.Decimal
	OtherDeductions     decimal.Decimal
	TotalDeductions     decimal.Decimal

	NetPay decimal.Decimal

	Status             ResultStatus
	AppliedRules       map[string]decimal.Decimal // rule name -> applied amount
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// Summary is the compatibility reporting row the aggregator appends beside
// every upserted result. External reports read these instead of the full
// itemized rows.
type Summary struct {
	ID              string
	EmployeeID      string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	CreatedAt       time.Time
}
