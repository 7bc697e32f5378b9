package attendance

import (
	"sort"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
)

// Sequence is one resolved (IN, OUT) pair, possibly one-sided. Either side
// may be nil when the partner punch is missing; no punch is ever dropped.
type Sequence struct {
	In  *time.Time
	Out *time.Time
}

// Complete reports whether both sides of the pair are present.
func (s Sequence) Complete() bool {
	return s.In != nil && s.Out != nil
}

// Duration returns the worked span of a complete sequence, zero otherwise.
func (s Sequence) Duration() time.Duration {
	if !s.Complete() {
		return 0
	}
	return s.Out.Sub(*s.In)
}

// BuildSequences folds one employee-day's raw punches into ordered
// sequences. Punches arrive unordered; they are sorted by instant and
// scanned once keeping an open IN:
//
//   - a second IN while one is open closes the previous as (IN, nil)
//   - an OUT with no open IN becomes (nil, OUT)
//   - a trailing open IN becomes (IN, nil)
func BuildSequences(punches []attendance.Punch) []Sequence {
	if len(punches) == 0 {
		return nil
	}

	sorted := make([]attendance.Punch, len(punches))
	copy(sorted, punches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Instant.Before(sorted[j].Instant)
	})

	var sequences []Sequence
	var openIn *time.Time

	for _, p := range sorted {
		instant := p.Instant
		switch p.Direction {
		case attendance.DirectionIn:
			if openIn != nil {
				sequences = append(sequences, Sequence{In: openIn})
			}
			openIn = &instant
		case attendance.DirectionOut:
			if openIn != nil {
				sequences = append(sequences, Sequence{In: openIn, Out: &instant})
				openIn = nil
			} else {
				sequences = append(sequences, Sequence{Out: &instant})
			}
		}
	}

	if openIn != nil {
		sequences = append(sequences, Sequence{In: openIn})
	}

	return sequences
}
