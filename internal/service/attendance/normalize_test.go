package attendance

import (
	"testing"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("PHT", 8*3600)

func TestParseDeviceTimestamp(t *testing.T) {
	n := NewNormalizer(testLoc)

	instant, dayKey, err := n.ParseDeviceTimestamp("02/03/2026 07:55")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", dayKey)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 55, 0, 0, time.UTC), instant)
}

func TestParseDeviceTimestamp_TrailingNoise(t *testing.T) {
	n := NewNormalizer(testLoc)

	cases := []string{
		"02/03/2026 07:55:12",
		"02/03/2026 07:55 (FP)",
		"  02/03/2026 07:55  DEV-0042",
	}
	for _, raw := range cases {
		_, dayKey, err := n.ParseDeviceTimestamp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2026-03-02", dayKey, raw)
	}
}

func TestParseDeviceTimestamp_Malformed(t *testing.T) {
	n := NewNormalizer(testLoc)

	cases := []string{
		"",
		"not a date",
		"32/01/2026 08:00",  // day out of range
		"15/13/2026 08:00",  // month out of range
		"15/06/2026 24:00",  // hour out of range
		"15/06/2026 08:61",  // minute out of range
		"2026-06-15 08:00",  // wrong layout
	}
	for _, raw := range cases {
		_, _, err := n.ParseDeviceTimestamp(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, attendance.ErrBadTimestamp, raw)
	}
}

// A punch near midnight must land on the same business day whether it comes
// from a device export or a live action. Getting this wrong silently shifts
// dates for every evening-shift punch.
func TestBusinessDayBoundary_Midnight(t *testing.T) {
	n := NewNormalizer(testLoc)

	// 23:30 local on the 2nd is 15:30 UTC on the 2nd.
	instant, dayKey, err := n.ParseDeviceTimestamp("02/03/2026 23:30")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", dayKey)

	_, liveDayKey := n.FromInstant(instant)
	assert.Equal(t, dayKey, liveDayKey)

	// 00:10 local on the 3rd is 16:10 UTC on the 2nd: the UTC date differs
	// from the business day.
	instant, dayKey, err = n.ParseDeviceTimestamp("03/03/2026 00:10")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", dayKey)
	assert.Equal(t, 2, instant.UTC().Day())

	_, liveDayKey = n.FromInstant(instant)
	assert.Equal(t, "2026-03-03", liveDayKey)
}

func TestDayStart(t *testing.T) {
	n := NewNormalizer(testLoc)

	start, err := n.DayStart("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, testLoc), start)

	_, err = n.DayStart("02/03/2026")
	assert.Error(t, err)
}
