package biometric

import "errors"

var (
	ErrBatchNotFound     = errors.New("import batch not found")
	ErrEmptyImport       = errors.New("import content has no data rows")
	ErrMissingColumns    = errors.New("row is missing required columns")
	ErrEmployeeUnmatched = errors.New("row could not be matched to an employee")
)
