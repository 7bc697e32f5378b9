package attendance

import (
	"testing"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDay = "2026-03-02"

// local returns the UTC instant of a wall-clock time on the test day in the
// reference timezone.
func local(hour, minute int) *time.Time {
	t := time.Date(2026, 3, 2, hour, minute, 0, 0, testLoc).UTC()
	return &t
}

func classify(t *testing.T, pol policy.Config, seqs ...Sequence) DayClassification {
	t.Helper()
	cls, err := ClassifySessions(testDay, seqs, pol, testLoc)
	require.NoError(t, err)
	return cls
}

func TestClassify_FullDaySingleSequence(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(7, 55), Out: local(17, 5)})

	assert.False(t, cls.IsLate)
	assert.False(t, cls.IsAbsent)
	assert.False(t, cls.IsHalfDay)
	assert.False(t, cls.IsEarlyOut)
	assert.Equal(t, 2, cls.TotalSessions)
	require.NotNil(t, cls.SessionType)
	assert.Equal(t, attendance.SessionFullDay, *cls.SessionType)

	// Only the outer slots are filled by a lunch-spanning sequence.
	assert.Equal(t, local(7, 55), cls.MorningIn)
	assert.Nil(t, cls.MorningOut)
	assert.Nil(t, cls.AfternoonIn)
	assert.Equal(t, local(17, 5), cls.AfternoonOut)

	assert.True(t, cls.HoursWorked.Equal(decimal.NewFromFloat(9.17)),
		"got %s", cls.HoursWorked)
}

func TestClassify_LateGracePeriod(t *testing.T) {
	pol := policy.Default() // window start 08:00, grace 15min

	late := classify(t, pol, Sequence{In: local(8, 20), Out: local(17, 0)})
	assert.True(t, late.IsLate)
	assert.Equal(t, 20, late.LateMinutes)

	onTime := classify(t, pol, Sequence{In: local(8, 10), Out: local(17, 0)})
	assert.False(t, onTime.IsLate)
	assert.Equal(t, 0, onTime.LateMinutes)
}

func TestClassify_MorningHalfDay(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(7, 58), Out: local(12, 30)})

	assert.False(t, cls.IsAbsent)
	assert.True(t, cls.IsHalfDay)
	assert.True(t, cls.IsEarlyOut)
	assert.Equal(t, 1, cls.TotalSessions)
	require.NotNil(t, cls.SessionType)
	assert.Equal(t, attendance.SessionHalfDay, *cls.SessionType)
	assert.True(t, cls.HoursWorked.Equal(decimal.NewFromFloat(4.53)),
		"got %s", cls.HoursWorked)
	assert.Equal(t, 270, cls.UndertimeMinutes)
}

func TestClassify_TwoSessions(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol,
		Sequence{In: local(8, 0), Out: local(12, 0)},
		Sequence{In: local(13, 0), Out: local(17, 0)},
	)

	assert.Equal(t, 2, cls.TotalSessions)
	assert.False(t, cls.IsHalfDay)
	assert.False(t, cls.IsEarlyOut)
	assert.Equal(t, local(8, 0), cls.MorningIn)
	assert.Equal(t, local(12, 0), cls.MorningOut)
	assert.Equal(t, local(13, 0), cls.AfternoonIn)
	assert.Equal(t, local(17, 0), cls.AfternoonOut)
	assert.True(t, cls.HoursWorked.Equal(decimal.NewFromInt(8)))
}

func TestClassify_LunchGapPolicy(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(12, 30), Out: local(17, 0)})
	assert.Equal(t, local(12, 30), cls.AfternoonIn)
	assert.Nil(t, cls.MorningIn)

	pol.LunchGapIsAfternoon = false
	cls = classify(t, pol, Sequence{In: local(12, 30), Out: local(17, 0)})
	assert.Equal(t, local(12, 30), cls.MorningIn)
	assert.Nil(t, cls.AfternoonIn)
}

func TestClassify_SecondSequenceFillsRemainingSlot(t *testing.T) {
	pol := policy.Default()
	// First sequence lands in the afternoon; the second must take the
	// morning slot regardless of its own anchor.
	cls := classify(t, pol,
		Sequence{In: local(13, 5), Out: local(17, 0)},
		Sequence{In: local(7, 55), Out: local(11, 55)},
	)

	assert.Equal(t, local(13, 5), cls.AfternoonIn)
	assert.Equal(t, local(7, 55), cls.MorningIn)
	assert.Equal(t, 2, cls.TotalSessions)
}

func TestClassify_ExtraSequencesWarn(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol,
		Sequence{In: local(8, 0), Out: local(10, 0)},
		Sequence{In: local(10, 30), Out: local(12, 0)},
		Sequence{In: local(13, 0), Out: local(17, 0)},
	)

	assert.Equal(t, 2, cls.TotalSessions)
	require.Len(t, cls.Warnings, 1)
	assert.Contains(t, cls.Warnings[0], "ignored")
	// The ignored sequence contributes no hours.
	assert.True(t, cls.HoursWorked.Equal(decimal.NewFromFloat(3.5)),
		"got %s", cls.HoursWorked)
}

func TestClassify_OpenInIsAbsent(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(8, 0)})

	assert.True(t, cls.IsAbsent)
	assert.False(t, cls.IsHalfDay) // no OUT at all
	assert.Equal(t, 0, cls.TotalSessions)
	assert.True(t, cls.HoursWorked.IsZero())
}

func TestClassify_NoSequences(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol)

	assert.True(t, cls.IsAbsent)
	assert.Equal(t, 0, cls.TotalSessions)
	assert.Nil(t, cls.SessionType)
}

func TestClassify_EndOfDayOutIsNotHalfDay(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(13, 0), Out: local(17, 0)})

	assert.Equal(t, 1, cls.TotalSessions)
	assert.False(t, cls.IsHalfDay, "single session reaching the cutoff is not a half day")
	assert.False(t, cls.IsEarlyOut)
}

func TestClassify_BadDayKey(t *testing.T) {
	_, err := ClassifySessions("02/03/2026", nil, policy.Default(), testLoc)
	assert.Error(t, err)
}
