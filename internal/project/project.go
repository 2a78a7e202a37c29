// Package project synthesizes future transactions from active
// recurring bills to support forward balance projection.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
	"github.com/ledgerly-dev/ledgerly/internal/schedule"
)

// maxOccurrences caps the per-bill loop so a degenerate schedule can
// never spin forever.
const maxOccurrences = 1000

// ID returns the deterministic identity of a projected occurrence, so
// repeated generation is idempotent and dismissals can be tracked.
func ID(billID string, date time.Time) string {
	return fmt.Sprintf("proj-%s-%s", billID, date.Format("2006-01-02"))
}

// Generate emits one projected transaction per occurrence of each
// active bill from its next due date through now+horizonDays. Output
// order is unspecified; callers sort by date before computing
// balances. Bills with invalid schedules are skipped and their errors
// returned for logging.
func Generate(bills []model.RecurringBill, now time.Time, horizonDays int) ([]model.Transaction, []error) {
	horizon := now.AddDate(0, 0, horizonDays)

	var out []model.Transaction
	var errs []error
	for _, b := range bills {
		if !b.Active {
			continue
		}
		occs, err := occurrences(b, now, horizon)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, d := range occs {
			out = append(out, projected(b, d))
		}
	}
	return out, errs
}

// occurrences walks the bill's schedule from NextDueDate (advancing
// past-due dates first) and collects every date inside (now, horizon].
func occurrences(b model.RecurringBill, now, horizon time.Time) ([]time.Time, error) {
	next := b.NextDueDate
	if next.IsZero() {
		var err error
		next, err = schedule.Next(now, b)
		if err != nil {
			return nil, err
		}
	}

	var dates []time.Time
	for i := 0; i < maxOccurrences && !next.After(horizon); i++ {
		if next.After(now) {
			dates = append(dates, next)
		}
		var err error
		next, err = schedule.Next(next, b)
		if err != nil {
			return nil, err
		}
	}
	return dates, nil
}

func projected(b model.RecurringBill, date time.Time) model.Transaction {
	return model.Transaction{
		ID:              ID(b.ID, date),
		AccountID:       b.AccountID,
		Date:            date,
		Description:     b.Description + model.ProjectedSuffix,
		Category:        b.Category,
		Amount:          b.Amount,
		Pending:         true,
		RecurringBillID: b.ID,
	}
}

// Filter drops projections the user dismissed and projections already
// realized by a ledger entry: a real transaction on the same account
// within the replacement window whose description equals the
// projection's suffix-stripped description, case-insensitively.
func Filter(projections, ledger []model.Transaction, dismissed map[string]bool) []model.Transaction {
	var out []model.Transaction
	for _, p := range projections {
		if dismissed[p.ID] {
			continue
		}
		if realized(p, ledger) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func realized(p model.Transaction, ledger []model.Transaction) bool {
	base := p.BaseDescription()
	for _, t := range ledger {
		if t.AccountID != p.AccountID || t.Projected() {
			continue
		}
		if !withinWindow(t.Date, p.Date) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(t.Description), base) {
			return true
		}
	}
	return false
}

func withinWindow(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= reconcile.ProjectedWindowDays*24*time.Hour
}
