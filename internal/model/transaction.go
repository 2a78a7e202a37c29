package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when an imported row carries no category.
const DefaultCategory = "Uncategorized"

// ProjectedSuffix marks synthesized transactions generated from a
// recurring bill's schedule. They are never persisted to the ledger.
const ProjectedSuffix = " (Projected)"

// Transaction is one ledger row for an account.
// Negative amount = debit/outflow, positive = credit/inflow.
type Transaction struct {
	ID              string
	AccountID       string
	Date            time.Time
	Description     string
	Category        string
	Amount          decimal.Decimal
	Balance         decimal.Decimal // running balance, computed for display
	Pending         bool            // reported before settlement
	Reconciled      bool            // user-confirmed, independent of pending
	Manual          bool            // entered by hand, not imported
	RecurringBillID string          // link to the matched recurring bill, if any
}

// Projected reports whether the transaction is a synthesized future
// occurrence rather than a real ledger entry.
func (t Transaction) Projected() bool {
	return strings.Contains(t.Description, ProjectedSuffix)
}

// BaseDescription returns the description with the projected suffix
// stripped, for comparing projections against real entries.
func (t Transaction) BaseDescription() string {
	return strings.TrimSpace(strings.ReplaceAll(t.Description, ProjectedSuffix, ""))
}

// SameDay reports whether the transaction falls on the given calendar day.
func (t Transaction) SameDay(d time.Time) bool {
	y1, m1, d1 := t.Date.Date()
	y2, m2, d2 := d.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
