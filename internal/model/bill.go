package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountType controls how a bill's amount is compared to a transaction.
type AmountType string

const (
	AmountFixed    AmountType = "fixed"    // match within an absolute cent tolerance
	AmountVariable AmountType = "variable" // match within a percentage tolerance
)

// Frequency is a recurring bill's schedule rule.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
	FreqAnnual   Frequency = "annual"
)

// DefaultAmountTolerance is the percentage tolerance applied to
// variable bills that don't set one.
var DefaultAmountTolerance = decimal.NewFromInt(10)

// RecurringBill is a scheduled charge or deposit definition.
// Which schedule parameter is meaningful depends on Frequency:
// weekly/biweekly use DayOfWeek, monthly uses DayOfMonth or
// WeekOfMonth+DayOfWeek, annual keys off NextDueDate's month and day.
type RecurringBill struct {
	ID              string
	AccountID       string
	Description     string
	Amount          decimal.Decimal // same sign convention as Transaction
	AmountType      AmountType
	AmountTolerance decimal.Decimal // percent, variable bills only
	Frequency       Frequency
	DayOfMonth      int // 1-31, clamped to month length
	DayOfWeek       int // 0=Sunday..6=Saturday, -1 = unset
	WeekOfMonth     int // 1-4, or 5 for "last"
	NextDueDate     time.Time
	Category        string
	Active          bool
}

// Tolerance returns the effective percentage tolerance for a variable bill.
func (b RecurringBill) Tolerance() decimal.Decimal {
	if b.AmountTolerance.IsZero() {
		return DefaultAmountTolerance
	}
	return b.AmountTolerance
}
