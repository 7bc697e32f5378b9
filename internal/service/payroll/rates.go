package payroll

import (
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// rateSource records where the resolved daily rate came from, for the
// computation diagnostics.
type rateSource string

const (
	rateFromRole  rateSource = "role"
	rateFromRules rateSource = "base rules"
	rateNone      rateSource = "none"
)

// resolveRates determines the employee's daily and hourly rate. An active
// role override wins; otherwise the active base rules sum up; with neither
// the rates are zero and the caller emits a diagnostic.
func resolveRates(role *payroll.Role, rules []payroll.Rule, pol policy.Config) (daily, hourly decimal.Decimal, source rateSource) {
	source = rateNone

	if role != nil && role.IsActive && role.DailyRate.IsPositive() {
		daily = role.DailyRate
		source = rateFromRole
	} else {
		for _, rule := range rules {
			if rule.Kind != payroll.RuleKindBase || rule.IsPercentage {
				continue
			}
			daily = daily.Add(rule.Amount)
		}
		if daily.IsPositive() {
			source = rateFromRules
		}
	}

	if pol.StandardDailyHours.IsPositive() {
		hourly = daily.Div(pol.StandardDailyHours)
	}
	return daily, hourly, source
}
