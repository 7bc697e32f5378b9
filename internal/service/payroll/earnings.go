package payroll

import (
	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// attendanceTotals aggregates a period's reconciled records. Only approved
// records count toward pay; pending and rejected days are tallied so the
// computation can say why hours are missing.
type attendanceTotals struct {
	DaysWorked     decimal.Decimal
	HoursWorked    decimal.Decimal
	OvertimeHours  decimal.Decimal
	UndertimeHours decimal.Decimal
	LateHours      decimal.Decimal
	HolidayHours   map[policy.HolidayKind]decimal.Decimal

	LateDays      int
	UndertimeDays int
	AbsentDays    int
	PendingDays   int
	RejectedDays  int
}

func (t attendanceTotals) totalHolidayHours() decimal.Decimal {
	var sum decimal.Decimal
	for _, hours := range t.HolidayHours {
		sum = sum.Add(hours)
	}
	return sum
}

// summarizeAttendance folds the period's day records into payable totals.
// Overtime accrues per day as hours beyond the standard day, so a long
// Monday never borrows against a short Friday.
func summarizeAttendance(records []attendance.Record, holidays map[string]policy.HolidayKind, pol policy.Config) attendanceTotals {
	totals := attendanceTotals{HolidayHours: map[policy.HolidayKind]decimal.Decimal{}}

	half := decimal.NewFromFloat(0.5)
	one := decimal.NewFromInt(1)

	for _, rec := range records {
		switch rec.ApprovalStatus {
		case attendance.ApprovalRejected:
			totals.RejectedDays++
			continue
		case attendance.ApprovalPending:
			totals.PendingDays++
			continue
		}
		if rec.IsAbsent {
			totals.AbsentDays++
			continue
		}

		var hours decimal.Decimal
		if rec.HoursWorked != nil {
			hours = *rec.HoursWorked
		}

		if rec.IsHalfDay {
			totals.DaysWorked = totals.DaysWorked.Add(half)
		} else {
			totals.DaysWorked = totals.DaysWorked.Add(one)
		}
		totals.HoursWorked = totals.HoursWorked.Add(hours)

		if overtime := hours.Sub(pol.StandardDailyHours); overtime.IsPositive() {
			totals.OvertimeHours = totals.OvertimeHours.Add(overtime)
		}
		if rec.IsLate {
			totals.LateDays++
			totals.LateHours = totals.LateHours.Add(minutesToHours(rec.LateMinutes))
		}
		if rec.IsEarlyOut {
			totals.UndertimeDays++
			totals.UndertimeHours = totals.UndertimeHours.Add(minutesToHours(rec.UndertimeMinutes))
		}
		if kind, ok := holidays[rec.BusinessDay]; ok {
			totals.HolidayHours[kind] = totals.HolidayHours[kind].Add(hours)
		}
	}

	return totals
}

type earnings struct {
	RegularPay    decimal.Decimal
	OvertimePay   decimal.Decimal
	HolidayPay    decimal.Decimal
	Allowances    decimal.Decimal
	Bonuses       decimal.Decimal
	TotalEarnings decimal.Decimal

	Applied map[string]decimal.Decimal
}

// computeEarnings prices the attendance totals at the hourly rate and
// applies allowance and bonus rules. Percentage rules apply to the worked
// pay base, regular plus overtime plus holiday premium.
func computeEarnings(totals attendanceTotals, hourly decimal.Decimal, rules []payroll.Rule, pol policy.Config) earnings {
	e := earnings{Applied: map[string]decimal.Decimal{}}

	regularHours := totals.HoursWorked.Sub(totals.OvertimeHours).Sub(totals.totalHolidayHours())
	if regularHours.IsNegative() {
		regularHours = decimal.Zero
	}
	e.RegularPay = regularHours.Mul(hourly).Round(2)
	e.OvertimePay = overtimePay(totals.OvertimeHours, hourly, pol)
	e.HolidayPay = holidayPay(totals.HolidayHours, hourly, pol)

	base := e.RegularPay.Add(e.OvertimePay).Add(e.HolidayPay)
	for _, rule := range rules {
		var amount decimal.Decimal
		switch rule.Kind {
		case payroll.RuleKindAllowance:
			amount = ruleAmount(rule, base)
			e.Allowances = e.Allowances.Add(amount)
		case payroll.RuleKindBonus:
			amount = ruleAmount(rule, base)
			e.Bonuses = e.Bonuses.Add(amount)
		default:
			continue
		}
		e.Applied[rule.Name] = amount
	}

	e.TotalEarnings = base.Add(e.Allowances).Add(e.Bonuses)
	return e
}

// overtimePay prices overtime in two tiers: hours up to the cap at the base
// multiplier, the excess at the higher one.
func overtimePay(overtimeHours, hourly decimal.Decimal, pol policy.Config) decimal.Decimal {
	if !overtimeHours.IsPositive() {
		return decimal.Zero
	}

	baseHours := overtimeHours
	var excessHours decimal.Decimal
	if pol.OvertimeCapHours.IsPositive() && overtimeHours.GreaterThan(pol.OvertimeCapHours) {
		baseHours = pol.OvertimeCapHours
		excessHours = overtimeHours.Sub(pol.OvertimeCapHours)
	}

	pay := baseHours.Mul(hourly).Mul(pol.OvertimeBaseMultiplier)
	pay = pay.Add(excessHours.Mul(hourly).Mul(pol.OvertimeExcessMultiplier))
	return pay.Round(2)
}

// holidayPay prices hours worked on holidays at hourly times
// (multiplier - 1) per holiday kind. Holiday hours are excluded from the
// regular hours base, so the multiplier is not applied twice.
func holidayPay(holidayHours map[policy.HolidayKind]decimal.Decimal, hourly decimal.Decimal, pol policy.Config) decimal.Decimal {
	one := decimal.NewFromInt(1)
	var pay decimal.Decimal
	for kind, hours := range holidayHours {
		premium := pol.HolidayMultiplier(kind).Sub(one)
		if !premium.IsPositive() {
			continue
		}
		pay = pay.Add(hours.Mul(hourly).Mul(premium))
	}
	return pay.Round(2)
}

// ruleAmount evaluates one rule against the percentage base.
func ruleAmount(rule payroll.Rule, base decimal.Decimal) decimal.Decimal {
	if rule.IsPercentage {
		return base.Mul(rule.Amount).Div(decimal.NewFromInt(100)).Round(2)
	}
	return rule.Amount.Round(2)
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
