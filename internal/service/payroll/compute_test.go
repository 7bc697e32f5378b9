package payroll

import (
	"testing"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func approvedDay(day string, hours float64) attendance.Record {
	h := decimal.NewFromFloat(hours)
	return attendance.Record{
		EmployeeID:     "emp-1",
		BusinessDay:    day,
		HoursWorked:    &h,
		TotalSessions:  2,
		ApprovalStatus: attendance.ApprovalApproved,
	}
}

func dec100(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestResolveRates(t *testing.T) {
	pol := policy.Default()

	role := &payroll.Role{DailyRate: dec100(800), IsActive: true}
	daily, hourly, source := resolveRates(role, nil, pol)
	assert.True(t, daily.Equal(dec100(800)))
	assert.True(t, hourly.Equal(dec100(100)))
	assert.Equal(t, rateFromRole, source)

	// An inactive role falls back to base rules.
	inactive := &payroll.Role{DailyRate: dec100(900), IsActive: false}
	rules := []payroll.Rule{
		{Name: "Basic Rate", Kind: payroll.RuleKindBase, Amount: dec100(600)},
		{Name: "Rate Adjustment", Kind: payroll.RuleKindBase, Amount: dec100(40)},
		{Name: "Meal Allowance", Kind: payroll.RuleKindAllowance, Amount: dec100(500)},
	}
	daily, hourly, source = resolveRates(inactive, rules, pol)
	assert.True(t, daily.Equal(dec100(640)))
	assert.True(t, hourly.Equal(dec100(80)))
	assert.Equal(t, rateFromRules, source)

	daily, _, source = resolveRates(nil, nil, pol)
	assert.True(t, daily.IsZero())
	assert.Equal(t, rateNone, source)
}

func TestSummarizeAttendance_SkipsUnapproved(t *testing.T) {
	pol := policy.Default()

	pending := approvedDay("2026-03-03", 8)
	pending.ApprovalStatus = attendance.ApprovalPending
	rejected := approvedDay("2026-03-04", 8)
	rejected.ApprovalStatus = attendance.ApprovalRejected
	absent := attendance.Record{BusinessDay: "2026-03-05", IsAbsent: true, ApprovalStatus: attendance.ApprovalApproved}

	half := approvedDay("2026-03-06", 4)
	half.IsHalfDay = true
	half.TotalSessions = 1

	totals := summarizeAttendance([]attendance.Record{
		approvedDay("2026-03-02", 8), pending, rejected, absent, half,
	}, nil, pol)

	assert.True(t, totals.DaysWorked.Equal(dec100(1.5)))
	assert.True(t, totals.HoursWorked.Equal(dec100(12)))
	assert.Equal(t, 1, totals.PendingDays)
	assert.Equal(t, 1, totals.RejectedDays)
	assert.Equal(t, 1, totals.AbsentDays)
}

func TestComputeEarnings_TwoTierOvertime(t *testing.T) {
	pol := policy.Default() // cap 8h, 1.25x then 1.5x

	// 18 standard days plus two 13-hour days: 170h total, 10h overtime.
	var records []attendance.Record
	for i := 2; i < 20; i++ {
		records = append(records, approvedDay("2026-03-02", 8))
	}
	records = append(records, approvedDay("2026-03-20", 13), approvedDay("2026-03-21", 13))

	totals := summarizeAttendance(records, nil, pol)
	assert.True(t, totals.OvertimeHours.Equal(dec100(10)))

	e := computeEarnings(totals, dec100(100), nil, pol)
	assert.True(t, e.RegularPay.Equal(dec100(16000)), "got %s", e.RegularPay)
	// 8h at 125 plus 2h at 150.
	assert.True(t, e.OvertimePay.Equal(dec100(1300)), "got %s", e.OvertimePay)
	assert.True(t, e.TotalEarnings.Equal(dec100(17300)))
}

func TestComputeEarnings_HolidayPremium(t *testing.T) {
	pol := policy.Default()
	holidays := map[string]policy.HolidayKind{"2026-06-12": policy.HolidayRegular}

	totals := summarizeAttendance([]attendance.Record{
		approvedDay("2026-06-11", 8),
		approvedDay("2026-06-12", 8),
	}, holidays, pol)
	assert.True(t, totals.totalHolidayHours().Equal(dec100(8)))

	e := computeEarnings(totals, dec100(100), nil, pol)
	// Holiday hours leave the regular base and come back at (multiplier - 1).
	assert.True(t, e.RegularPay.Equal(dec100(800)), "got %s", e.RegularPay)
	assert.True(t, e.HolidayPay.Equal(dec100(800)), "got %s", e.HolidayPay)
	assert.True(t, e.TotalEarnings.Equal(dec100(1600)), "got %s", e.TotalEarnings)
}

func TestComputeEarnings_OvertimeOnHoliday(t *testing.T) {
	pol := policy.Default()
	holidays := map[string]policy.HolidayKind{"2026-06-12": policy.HolidayRegular}

	// A 10-hour holiday shift: its 2 overtime hours and 10 holiday hours
	// both leave the regular base.
	totals := summarizeAttendance([]attendance.Record{
		approvedDay("2026-06-11", 8),
		approvedDay("2026-06-12", 10),
	}, holidays, pol)
	assert.True(t, totals.OvertimeHours.Equal(dec100(2)))
	assert.True(t, totals.totalHolidayHours().Equal(dec100(10)))

	e := computeEarnings(totals, dec100(100), nil, pol)
	assert.True(t, e.RegularPay.Equal(dec100(600)), "got %s", e.RegularPay)
	assert.True(t, e.OvertimePay.Equal(dec100(250)), "got %s", e.OvertimePay)
	assert.True(t, e.HolidayPay.Equal(dec100(1000)), "got %s", e.HolidayPay)
	assert.True(t, e.TotalEarnings.Equal(dec100(1850)), "got %s", e.TotalEarnings)
}

func TestComputeEarnings_PercentageAndFixedRules(t *testing.T) {
	pol := policy.Default()
	totals := summarizeAttendance([]attendance.Record{approvedDay("2026-03-02", 8)}, nil, pol)

	rules := []payroll.Rule{
		{Name: "Rice Subsidy", Kind: payroll.RuleKindAllowance, Amount: dec100(150)},
		{Name: "Perfect Attendance Bonus", Kind: payroll.RuleKindBonus, Amount: dec100(10), IsPercentage: true},
	}
	e := computeEarnings(totals, dec100(100), rules, pol)

	assert.True(t, e.Allowances.Equal(dec100(150)))
	assert.True(t, e.Bonuses.Equal(dec100(80)), "10%% of 800, got %s", e.Bonuses)
	assert.True(t, e.TotalEarnings.Equal(dec100(1030)))
	assert.True(t, e.Applied["Rice Subsidy"].Equal(dec100(150)))
	assert.True(t, e.Applied["Perfect Attendance Bonus"].Equal(dec100(80)))
}

func TestComputeDeductions_Statutory(t *testing.T) {
	pol := policy.Default()
	totals := attendanceTotals{HolidayHours: map[policy.HolidayKind]decimal.Decimal{}}

	d := computeDeductions(totals, dec100(17300), dec100(100), nil, pol)

	assert.True(t, d.SSS.Equal(dec100(832.5)), "got %s", d.SSS)
	assert.True(t, d.PhilHealth.Equal(dec100(432.5)), "2.5%% of 17300, got %s", d.PhilHealth)
	assert.True(t, d.PagIBIG.Equal(dec100(200)))
	assert.True(t, d.TaxableIncome.Equal(dec100(15835)))
	// Below the first taxed bracket floor.
	assert.True(t, d.WithholdingTax.IsZero())
	assert.True(t, d.Total.Equal(dec100(1465)))
}

func TestComputeDeductions_Withholding(t *testing.T) {
	pol := policy.Default()

	// 25000 taxable lands in the 15% bracket over 20833.
	tax := computeWithholding(dec100(25000), pol.TaxBrackets)
	want := dec100(25000).Sub(dec100(20833)).Mul(dec100(0.15)).Round(2)
	assert.True(t, tax.Equal(want), "got %s want %s", tax, want)

	assert.True(t, computeWithholding(dec100(10000), pol.TaxBrackets).IsZero())
	assert.True(t, computeWithholding(decimal.Zero, pol.TaxBrackets).IsZero())
}

func TestComputeDeductions_LateModes(t *testing.T) {
	pol := policy.Default()
	totals := attendanceTotals{
		HolidayHours: map[policy.HolidayKind]decimal.Decimal{},
		LateHours:    dec100(0.5),
		LateDays:     2,
	}

	d := computeDeductions(totals, dec100(1000), dec100(100), nil, pol)
	assert.True(t, d.Late.Equal(dec100(50)), "hourly mode, got %s", d.Late)

	pol.LateDeduction = policy.LateDeductFixed
	pol.LateFixedAmount = dec100(75)
	d = computeDeductions(totals, dec100(1000), dec100(100), nil, pol)
	assert.True(t, d.Late.Equal(dec100(150)), "fixed per instance, got %s", d.Late)
}

func TestComputeDeductions_LoanAndOtherRules(t *testing.T) {
	pol := policy.Default()
	totals := attendanceTotals{HolidayHours: map[policy.HolidayKind]decimal.Decimal{}}

	rules := []payroll.Rule{
		{Name: "Salary Loan", Kind: payroll.RuleKindLoan, Amount: dec100(500)},
		{Name: "Uniform Fee", Kind: payroll.RuleKindDeduction, Amount: dec100(2), IsPercentage: true},
	}
	d := computeDeductions(totals, dec100(10000), dec100(100), rules, pol)

	assert.True(t, d.Loans.Equal(dec100(500)))
	assert.True(t, d.Other.Equal(dec100(200)), "2%% of 10000, got %s", d.Other)
	assert.True(t, d.Applied["Salary Loan"].Equal(dec100(500)))
}

func TestLookupContribution_Boundaries(t *testing.T) {
	pol := policy.Default()

	// Exactly on a bracket edge belongs to the upper bracket.
	assert.True(t, lookupContribution(dec100(4250), pol.SSSBrackets).Equal(dec100(292.5)))
	assert.True(t, lookupContribution(dec100(4249.99), pol.SSSBrackets).Equal(dec100(180)))
	// Above the top bracket floor with no upper bound.
	assert.True(t, lookupContribution(dec100(50000), pol.SSSBrackets).Equal(dec100(1350)))
	assert.True(t, lookupContribution(decimal.Zero, pol.SSSBrackets).IsZero())
}
