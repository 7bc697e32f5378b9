package attendance

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
)

// dayKeyFormat is the business-day key layout used everywhere in the engine.
const dayKeyFormat = "2006-01-02"

// deviceStampRegex extracts DD/MM/YYYY HH:MM from a device export cell.
// Exports routinely carry trailing noise (seconds, verification codes,
// device serials) which is ignored.
var deviceStampRegex = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})`)

// Normalizer converts device and live timestamps into an absolute instant
// plus a business-day key in one fixed reference timezone. Every caller in
// the engine goes through the same Normalizer so punch parsing and day
// boundary math can never disagree near midnight.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	return &Normalizer{loc: loc}
}

// Location returns the reference timezone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseDeviceTimestamp parses a free-text device timestamp. The returned
// instant is UTC; the day key is computed in the reference timezone. A
// malformed cell returns a wrapped attendance.ErrBadTimestamp for the
// caller to collect as a row diagnostic.
func (n *Normalizer) ParseDeviceTimestamp(raw string) (time.Time, string, error) {
	m := deviceStampRegex.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", attendance.ErrBadTimestamp, raw)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if hour > 23 || minute > 59 {
		return time.Time{}, "", fmt.Errorf("%w: time out of range in %q", attendance.ErrBadTimestamp, raw)
	}

	local := time.Date(year, time.Month(month), day, hour, minute, 0, 0, n.loc)

	// time.Date normalizes out-of-range components (32/01 becomes 01/02);
	// a shifted round trip means the source values were invalid.
	if local.Day() != day || local.Month() != time.Month(month) || local.Year() != year {
		return time.Time{}, "", fmt.Errorf("%w: date out of range in %q", attendance.ErrBadTimestamp, raw)
	}

	return local.UTC(), local.Format(dayKeyFormat), nil
}

// FromInstant attributes an absolute instant (e.g. a live clock action) to
// its business day in the reference timezone.
func (n *Normalizer) FromInstant(instant time.Time) (time.Time, string) {
	local := instant.In(n.loc)
	return instant.UTC(), local.Format(dayKeyFormat)
}

// DayStart returns midnight of a business-day key in the reference
// timezone.
func (n *Normalizer) DayStart(dayKey string) (time.Time, error) {
	day, err := time.ParseInLocation(dayKeyFormat, dayKey, n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid business day key %q: %w", dayKey, err)
	}
	return day, nil
}
