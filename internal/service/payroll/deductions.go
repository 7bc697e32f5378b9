package payroll

import (
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

type deductions struct {
	SSS            decimal.Decimal
	PhilHealth     decimal.Decimal
	PagIBIG        decimal.Decimal
	TaxableIncome  decimal.Decimal
	WithholdingTax decimal.Decimal

	Late      decimal.Decimal
	Undertime decimal.Decimal
	Loans     decimal.Decimal
	Other     decimal.Decimal

	Total decimal.Decimal

	Applied map[string]decimal.Decimal
}

// computeDeductions works the deduction side: time-based deductions,
// statutory contributions on period gross, withholding on the taxable
// remainder, then loan and other deduction rules.
func computeDeductions(totals attendanceTotals, gross, hourly decimal.Decimal, rules []payroll.Rule, pol policy.Config) deductions {
	d := deductions{Applied: map[string]decimal.Decimal{}}

	d.Late = timeDeduction(totals.LateHours, totals.LateDays, hourly, pol)
	if pol.UndertimeDeducted {
		d.Undertime = timeDeduction(totals.UndertimeHours, totals.UndertimeDays, hourly, pol)
	}

	d.SSS = lookupContribution(gross, pol.SSSBrackets)
	d.PhilHealth = lookupContribution(gross, pol.PhilHealthBrackets)
	d.PagIBIG = lookupContribution(gross, pol.PagIBIGBrackets)

	d.TaxableIncome = gross.Sub(d.SSS).Sub(d.PhilHealth).Sub(d.PagIBIG)
	if d.TaxableIncome.IsNegative() {
		d.TaxableIncome = decimal.Zero
	}
	d.WithholdingTax = computeWithholding(d.TaxableIncome, pol.TaxBrackets)

	for _, rule := range rules {
		var amount decimal.Decimal
		switch rule.Kind {
		case payroll.RuleKindLoan:
			amount = ruleAmount(rule, gross)
			d.Loans = d.Loans.Add(amount)
		case payroll.RuleKindDeduction:
			amount = ruleAmount(rule, gross)
			d.Other = d.Other.Add(amount)
		default:
			continue
		}
		d.Applied[rule.Name] = amount
	}

	d.Total = d.SSS.Add(d.PhilHealth).Add(d.PagIBIG).Add(d.WithholdingTax).
		Add(d.Late).Add(d.Undertime).Add(d.Loans).Add(d.Other)
	return d
}

// timeDeduction converts late or undertime attendance into money per the
// configured mode.
func timeDeduction(hours decimal.Decimal, instances int, hourly decimal.Decimal, pol policy.Config) decimal.Decimal {
	switch pol.LateDeduction {
	case policy.LateDeductFixed:
		return pol.LateFixedAmount.Mul(decimal.NewFromInt(int64(instances))).Round(2)
	default:
		return hours.Mul(hourly).Round(2)
	}
}

// lookupContribution finds the bracket covering the pay amount. Brackets
// are half-open [MinPay, MaxPay); a zero MaxPay means unbounded. A rated
// bracket charges pay times Rate, a fixed one charges Amount.
func lookupContribution(pay decimal.Decimal, brackets []policy.ContributionBracket) decimal.Decimal {
	if !pay.IsPositive() {
		return decimal.Zero
	}
	for _, b := range brackets {
		if pay.LessThan(b.MinPay) {
			continue
		}
		if !b.MaxPay.IsZero() && !pay.LessThan(b.MaxPay) {
			continue
		}
		if !b.Rate.IsZero() {
			return pay.Mul(b.Rate).Round(2)
		}
		return b.Amount.Round(2)
	}
	return decimal.Zero
}

// computeWithholding applies the progressive table: the last bracket whose
// floor the taxable income reaches charges its base tax plus the marginal
// rate on the excess.
func computeWithholding(taxable decimal.Decimal, brackets []policy.TaxBracket) decimal.Decimal {
	if !taxable.IsPositive() || len(brackets) == 0 {
		return decimal.Zero
	}

	applicable := brackets[0]
	for _, b := range brackets {
		if taxable.GreaterThanOrEqual(b.MinIncome) {
			applicable = b
		}
	}

	excess := taxable.Sub(applicable.MinIncome)
	return applicable.BaseTax.Add(excess.Mul(applicable.Rate)).Round(2)
}
