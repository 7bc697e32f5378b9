package payroll

import "errors"

var (
	ErrRuleNotFound       = errors.New("payroll rule not found")
	ErrRoleNotFound       = errors.New("payroll role not found")
	ErrResultNotFound     = errors.New("payroll result not found")
	ErrAssignmentExists   = errors.New("rule is already assigned to this employee")
	ErrInvalidPeriod      = errors.New("period end must not precede period start")
	ErrResultFinalized    = errors.New("payroll result has been finalized")
)
