package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClockTime is a civil wall-clock time with no date or zone attached.
type ClockTime struct {
	Hour   int
	Minute int
}

// At pins the clock time onto a calendar day in the given location.
func (c ClockTime) At(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// Minutes returns the clock time as minutes past midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// HolidayKind distinguishes the two statutory holiday pay regimes.
type HolidayKind string

const (
	HolidayRegular HolidayKind = "regular"
	HolidaySpecial HolidayKind = "special"
)

// LateDeductionMode selects how late/undertime minutes are converted to money.
type LateDeductionMode string

const (
	// LateDeductHourly deducts recorded hours times the hourly rate.
	LateDeductHourly LateDeductionMode = "hourly"
	// LateDeductFixed deducts a fixed amount per late/undertime instance.
	LateDeductFixed LateDeductionMode = "fixed"
)

// ContributionBracket is one row of a statutory contribution table.
// When Rate is non-zero the employee share is pay * Rate, otherwise the
// fixed Amount applies. MaxPay of zero means no upper bound.
type ContributionBracket struct {
	MinPay decimal.Decimal
	MaxPay decimal.Decimal
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// TaxBracket is one row of the progressive withholding table. Tax owed is
// BaseTax plus Rate applied to the excess over MinIncome.
type TaxBracket struct {
	MinIncome decimal.Decimal
	BaseTax   decimal.Decimal
	Rate      decimal.Decimal
}

// Config carries every tunable threshold, rate and table the attendance and
// payroll engine reads. It is passed explicitly into component calls so the
// engine never reads ambient state and stays deterministic under test.
type Config struct {
	// Session windows.
	MorningStart   ClockTime // start of the morning attendance window
	Noon           ClockTime // morning/afternoon boundary
	AfternoonStart ClockTime // earliest regular afternoon clock-in
	EndOfDay       ClockTime // end-of-day cutoff for early-out and half-day checks

	GracePeriodMinutes int

	// A clock-in landing inside the Noon..AfternoonStart gap is treated as
	// an afternoon session when true. Preserved legacy behavior; adjustable.
	LunchGapIsAfternoon bool

	// Live clock-in duplicate rejection window.
	DuplicateClockInWindowMinutes int

	// Records no later than this many minutes are auto-approved.
	AutoApproveLateLimitMinutes int

	// Pay computation.
	StandardDailyHours       decimal.Decimal
	OvertimeCapHours         decimal.Decimal
	OvertimeBaseMultiplier   decimal.Decimal
	OvertimeExcessMultiplier decimal.Decimal
	HolidayMultipliers       map[HolidayKind]decimal.Decimal

	LateDeduction     LateDeductionMode
	LateFixedAmount   decimal.Decimal
	UndertimeDeducted bool

	// Statutory tables, keyed by period gross pay.
	SSSBrackets        []ContributionBracket
	PhilHealthBrackets []ContributionBracket
	PagIBIGBrackets    []ContributionBracket
	TaxBrackets        []TaxBracket
}

// Default returns the campus policy shipped with the system. Every value is
// overridable by the settings surface; the engine itself never consults
// anything but the Config handed to it.
func Default() Config {
	return Config{
		MorningStart:   ClockTime{Hour: 8},
		Noon:           ClockTime{Hour: 12},
		AfternoonStart: ClockTime{Hour: 13},
		EndOfDay:       ClockTime{Hour: 17},

		GracePeriodMinutes:            15,
		LunchGapIsAfternoon:           true,
		DuplicateClockInWindowMinutes: 240,
		AutoApproveLateLimitMinutes:   120,

		StandardDailyHours:       decimal.NewFromInt(8),
		OvertimeCapHours:         decimal.NewFromInt(8),
		OvertimeBaseMultiplier:   decimal.NewFromFloat(1.25),
		OvertimeExcessMultiplier: decimal.NewFromFloat(1.5),
		HolidayMultipliers: map[HolidayKind]decimal.Decimal{
			HolidayRegular: decimal.NewFromFloat(2.0),
			HolidaySpecial: decimal.NewFromFloat(1.3),
		},

		LateDeduction:     LateDeductHourly,
		LateFixedAmount:   decimal.Zero,
		UndertimeDeducted: true,

		SSSBrackets: []ContributionBracket{
			{MinPay: dec(0), MaxPay: dec(4250), Amount: dec(180)},
			{MinPay: dec(4250), MaxPay: dec(8250), Amount: dec(292.5)},
			{MinPay: dec(8250), MaxPay: dec(12250), Amount: dec(472.5)},
			{MinPay: dec(12250), MaxPay: dec(16250), Amount: dec(652.5)},
			{MinPay: dec(16250), MaxPay: dec(20250), Amount: dec(832.5)},
			{MinPay: dec(20250), MaxPay: dec(24250), Amount: dec(1012.5)},
			{MinPay: dec(24250), MaxPay: dec(29750), Amount: dec(1192.5)},
			{MinPay: dec(29750), Amount: dec(1350)},
		},
		PhilHealthBrackets: []ContributionBracket{
			{MinPay: dec(0), MaxPay: dec(10000), Amount: dec(250)},
			{MinPay: dec(10000), MaxPay: dec(99999), Rate: decimal.NewFromFloat(0.025)},
			{MinPay: dec(99999), Amount: dec(2500)},
		},
		PagIBIGBrackets: []ContributionBracket{
			{MinPay: dec(0), MaxPay: dec(1500), Rate: decimal.NewFromFloat(0.01)},
			{MinPay: dec(1500), MaxPay: dec(10000), Rate: decimal.NewFromFloat(0.02)},
			{MinPay: dec(10000), Amount: dec(200)},
		},
		TaxBrackets: []TaxBracket{
			{MinIncome: dec(0), BaseTax: dec(0), Rate: decimal.Zero},
			{MinIncome: dec(20833), BaseTax: dec(0), Rate: decimal.NewFromFloat(0.15)},
			{MinIncome: dec(33333), BaseTax: dec(1875), Rate: decimal.NewFromFloat(0.20)},
			{MinIncome: dec(66667), BaseTax: dec(8541.8), Rate: decimal.NewFromFloat(0.25)},
			{MinIncome: dec(166667), BaseTax: dec(33541.8), Rate: decimal.NewFromFloat(0.30)},
			{MinIncome: dec(666667), BaseTax: dec(183541.8), Rate: decimal.NewFromFloat(0.35)},
		},
	}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// HolidayMultiplier returns the pay multiplier for a holiday kind, falling
// back to 1 for unknown kinds so an unrecognized calendar entry never
// inflates pay.
func (c Config) HolidayMultiplier(kind HolidayKind) decimal.Decimal {
	if m, ok := c.HolidayMultipliers[kind]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}
