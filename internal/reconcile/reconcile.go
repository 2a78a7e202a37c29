// Package reconcile merges incoming bank-export batches into the
// ledger, classifying each transaction as new, updated, skipped, or
// the posted form of a previously pending entry.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/match"
	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/similarity"
)

// ProjectedWindowDays bounds how far a real transaction's date may sit
// from a projected occurrence it replaces.
const ProjectedWindowDays = 7

// Counts summarizes one reconciliation call.
type Counts struct {
	New     int
	Updated int
	Skipped int
	Posted  int
}

// RowError reports one malformed incoming record. The rest of the
// batch proceeds.
type RowError struct {
	Index  int // position in the incoming batch
	ID     string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %s", e.Index, e.ID, e.Reason)
}

// BillMatch records the most recent transaction that matched a bill
// during one call. Input to the bill-update proposer.
type BillMatch struct {
	Amount decimal.Decimal
	Date   time.Time
}

// Result is the outcome of one reconciliation call.
type Result struct {
	Ledger  []model.Transaction
	Counts  Counts
	Errors  []RowError
	Matches map[string]BillMatch // bill ID -> latest matched amount/date
}

// Match-target search rules, in strict priority order.
const (
	ruleNone = iota
	ruleID
	rulePending
	ruleExact
)

// Run reconciles an incoming batch against a snapshot of the ledger.
// Inputs are not mutated; the returned ledger is a new slice. The
// whole batch is processed against the one snapshot, so callers must
// not interleave calls over overlapping ledger state.
func Run(incoming, ledger []model.Transaction, bills []model.RecurringBill) Result {
	next := make([]model.Transaction, len(ledger))
	copy(next, ledger)

	res := Result{Matches: make(map[string]BillMatch)}

	for i, in := range incoming {
		if reason := validateRow(in); reason != "" {
			res.Errors = append(res.Errors, RowError{Index: i, ID: in.ID, Reason: reason})
			continue
		}

		// Bill linking happens before and independent of duplicate
		// classification.
		if b := match.Bill(in, bills); b != nil {
			in.RecurringBillID = b.ID
			if in.Category == "" || in.Category == model.DefaultCategory {
				in.Category = b.Category
			}
			recordMatch(res.Matches, b.ID, in)
		}

		idx, rule := findTarget(next, in)
		if idx < 0 {
			next = appendNew(next, in)
			res.Counts.New++
			continue
		}

		target := next[idx]
		switch {
		case rule == rulePending && !in.Pending:
			// Pending -> posted transition.
			next[idx] = merge(in, target)
			next[idx].Pending = false
			res.Counts.Posted++

		case rule == rulePending:
			// Still pending, refreshed data.
			next[idx] = merge(in, target)
			res.Counts.Updated++

		case target.Manual:
			// Imported data supersedes the hand-entered duplicate.
			next[idx] = merge(in, target)
			res.Counts.Updated++

		default:
			res.Counts.Skipped++
		}
	}

	res.Ledger = next
	return res
}

func validateRow(in model.Transaction) string {
	switch {
	case in.ID == "":
		return "missing id"
	case in.Date.IsZero():
		return "missing date"
	case in.Description == "":
		return "missing description"
	default:
		return ""
	}
}

// findTarget locates the ledger entry the incoming transaction
// duplicates, trying identifier, pending-fuzzy, then exact-data match.
func findTarget(ledger []model.Transaction, in model.Transaction) (int, int) {
	for i, t := range ledger {
		if t.AccountID == in.AccountID && t.ID == in.ID {
			return i, ruleID
		}
	}
	for i, t := range ledger {
		// Projected placeholders are pending but are handled by the
		// replacement path in appendNew, not the posted transition.
		if t.AccountID == in.AccountID && t.Pending && !t.Projected() &&
			match.AmountsEqual(t.Amount, in.Amount) &&
			similarity.Match(t.Description, in.Description, similarity.PendingOverlap) {
			return i, rulePending
		}
	}
	for i, t := range ledger {
		if t.AccountID == in.AccountID && !t.Pending &&
			t.SameDay(in.Date) &&
			t.Description == in.Description &&
			match.AmountsEqual(t.Amount, in.Amount) {
			return i, ruleExact
		}
	}
	return -1, ruleNone
}

// appendNew adds a genuinely new entry, first replacing a projected
// placeholder linked to the same bill within the replacement window.
func appendNew(ledger []model.Transaction, in model.Transaction) []model.Transaction {
	if in.RecurringBillID != "" {
		for i, t := range ledger {
			if t.AccountID == in.AccountID && t.Projected() &&
				t.RecurringBillID == in.RecurringBillID &&
				withinDays(t.Date, in.Date, ProjectedWindowDays) {
				ledger[i] = in
				return ledger
			}
		}
	}
	return append(ledger, in)
}

// merge replaces the target's fields with incoming data while
// preserving the user's reconciled flag and any bill link the incoming
// transaction did not resolve itself.
func merge(in, target model.Transaction) model.Transaction {
	out := in
	out.Reconciled = target.Reconciled
	if out.RecurringBillID == "" && target.RecurringBillID != "" {
		out.RecurringBillID = target.RecurringBillID
		if out.Category == "" || out.Category == model.DefaultCategory {
			out.Category = target.Category
		}
	}
	return out
}

// recordMatch folds a matched transaction into the per-bill map.
// Latest date wins; equal dates prefer the later batch entry.
func recordMatch(matches map[string]BillMatch, billID string, in model.Transaction) {
	if prev, ok := matches[billID]; ok && in.Date.Before(prev.Date) {
		return
	}
	matches[billID] = BillMatch{Amount: in.Amount, Date: in.Date}
}

func withinDays(a, b time.Time, days int) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}
