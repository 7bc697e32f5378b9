package attendance

import "errors"

// Attendance domain errors
var (
	// Live clock errors
	ErrAlreadyTimedIn   = errors.New("a time-in was already recorded within the duplicate window")
	ErrNotTimedIn       = errors.New("no time-in recorded for today")
	ErrUnknownDirection = errors.New("punch direction must be IN or OUT")

	// General errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrAlreadyProcessed = errors.New("attendance record has already been approved or rejected")
	ErrBadTimestamp     = errors.New("unparseable device timestamp")
)
