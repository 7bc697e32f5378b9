package attendance

import (
	"fmt"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// DayClassification is the classifier's verdict for one employee-day:
// session slot assignments plus every derived flag the record carries.
type DayClassification struct {
	MorningIn    *time.Time
	MorningOut   *time.Time
	AfternoonIn  *time.Time
	AfternoonOut *time.Time
	TimeIn       *time.Time
	TimeOut      *time.Time

	HoursWorked      decimal.Decimal
	IsLate           bool
	IsAbsent         bool
	IsHalfDay        bool
	IsEarlyOut       bool
	LateMinutes      int
	UndertimeMinutes int
	TotalSessions    int
	SessionType      *attendance.SessionType

	Warnings []string
}

// ClassifySessions assigns a day's sequences to morning/afternoon slots and
// derives the attendance flags. All thresholds come from the policy config;
// boundaries are pinned to the business day in the reference timezone.
//
// Assignment, in sequence order:
//  1. a first complete sequence spanning noon through the afternoon start
//     is a single full-day session (morning-IN and afternoon-OUT only)
//  2. otherwise the sequence goes to morning or afternoon by its anchor
//     instant; the lunch-hour gap counts as afternoon per policy
//  3. a second sequence fills whichever slot is still empty
//  4. further sequences are ignored for assignment and recorded as warnings
func ClassifySessions(dayKey string, seqs []Sequence, pol policy.Config, loc *time.Location) (DayClassification, error) {
	day, err := time.ParseInLocation(dayKeyFormat, dayKey, loc)
	if err != nil {
		return DayClassification{}, fmt.Errorf("invalid business day key %q: %w", dayKey, err)
	}

	morningStart := pol.MorningStart.At(day, loc)
	noon := pol.Noon.At(day, loc)
	afternoonStart := pol.AfternoonStart.At(day, loc)
	cutoff := pol.EndOfDay.At(day, loc)

	var cls DayClassification
	var assigned []Sequence
	morningTaken, afternoonTaken := false, false
	fullDay := false

	for i, seq := range seqs {
		switch {
		case i == 0 && seq.Complete() && seq.In.Before(noon) && !seq.Out.Before(afternoonStart):
			// One sequence covering both halves of the day. Only the
			// morning-IN and afternoon-OUT slots are filled; the lunch
			// break, if any, was not punched.
			cls.MorningIn = seq.In
			cls.AfternoonOut = seq.Out
			morningTaken, afternoonTaken = true, true
			fullDay = true
			assigned = append(assigned, seq)

		case !morningTaken || !afternoonTaken:
			slot := chooseSlot(seq, noon, afternoonStart, pol.LunchGapIsAfternoon)
			if i > 0 {
				// The second sequence takes whichever slot remains.
				if morningTaken {
					slot = slotAfternoon
				} else if afternoonTaken {
					slot = slotMorning
				}
			}
			if slot == slotMorning && morningTaken {
				slot = slotAfternoon
			}
			if slot == slotAfternoon && afternoonTaken {
				slot = slotMorning
			}

			if slot == slotMorning {
				cls.MorningIn = seq.In
				cls.MorningOut = seq.Out
				morningTaken = true
			} else {
				cls.AfternoonIn = seq.In
				cls.AfternoonOut = seq.Out
				afternoonTaken = true
			}
			assigned = append(assigned, seq)

		default:
			cls.Warnings = append(cls.Warnings,
				fmt.Sprintf("sequence %d on %s ignored: both session slots already filled", i+1, dayKey))
		}
	}

	// Aggregate worked time over the sequences actually counted.
	var worked time.Duration
	for _, seq := range assigned {
		if seq.Complete() {
			worked += seq.Duration()
			cls.TotalSessions++
		}
		if seq.In != nil && (cls.TimeIn == nil || seq.In.Before(*cls.TimeIn)) {
			cls.TimeIn = seq.In
		}
		if seq.Out != nil && (cls.TimeOut == nil || seq.Out.After(*cls.TimeOut)) {
			cls.TimeOut = seq.Out
		}
	}
	if fullDay {
		cls.TotalSessions = 2
	}
	cls.HoursWorked = decimal.NewFromFloat(worked.Hours()).Round(2)

	cls.IsAbsent = cls.TimeIn == nil || cls.TimeOut == nil

	if cls.MorningIn != nil {
		graceLimit := morningStart.Add(time.Duration(pol.GracePeriodMinutes) * time.Minute)
		if cls.MorningIn.After(graceLimit) {
			cls.IsLate = true
			cls.LateMinutes = int(cls.MorningIn.Sub(morningStart).Minutes())
		}
	}

	if cls.TimeOut != nil && cls.TimeOut.Before(cutoff) {
		cls.IsEarlyOut = true
		cls.UndertimeMinutes = int(cutoff.Sub(*cls.TimeOut).Minutes())
	}

	// Half-day: at most one resolved session and an OUT that did not reach
	// the end-of-day cutoff. A day with no OUT at all is absent, not half.
	cls.IsHalfDay = cls.TotalSessions <= 1 && cls.TimeOut != nil && cls.TimeOut.Before(cutoff)

	switch {
	case cls.TotalSessions >= 2:
		st := attendance.SessionFullDay
		cls.SessionType = &st
	case cls.TotalSessions == 1:
		st := attendance.SessionHalfDay
		cls.SessionType = &st
	}

	return cls, nil
}

type sessionSlot int

const (
	slotMorning sessionSlot = iota
	slotAfternoon
)

// chooseSlot picks a session slot from the sequence's anchor instant: the
// IN side when present, the orphaned OUT otherwise.
func chooseSlot(seq Sequence, noon, afternoonStart time.Time, gapIsAfternoon bool) sessionSlot {
	anchor := seq.In
	if anchor == nil {
		anchor = seq.Out
	}
	if anchor.Before(noon) {
		return slotMorning
	}
	if anchor.Before(afternoonStart) {
		// The 12:00-12:59 lunch gap.
		if gapIsAfternoon {
			return slotAfternoon
		}
		return slotMorning
	}
	return slotAfternoon
}
