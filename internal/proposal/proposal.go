// Package proposal turns reconciliation bill matches into next-due-date
// and amount updates awaiting user confirmation.
package proposal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
	"github.com/ledgerly-dev/ledgerly/internal/schedule"
)

// BillUpdate proposes new values for one recurring bill. Nothing is
// applied until the user confirms.
type BillUpdate struct {
	BillID        string
	Description   string
	MatchedDate   time.Time
	Amount        decimal.Decimal // observed amount of the latest match
	NextDueDate   time.Time       // next occurrence after the matched date
	AmountDiffers bool
	ScheduleErr   error // set when the bill's schedule rule is invalid
}

// Build produces one proposal per bill that received a match, in bill
// list order. A schedule error leaves the proposal's date empty and is
// recorded on the proposal for the caller to log.
func Build(bills []model.RecurringBill, matches map[string]reconcile.BillMatch) []BillUpdate {
	var updates []BillUpdate
	for _, b := range bills {
		m, ok := matches[b.ID]
		if !ok {
			continue
		}
		u := BillUpdate{
			BillID:        b.ID,
			Description:   b.Description,
			MatchedDate:   m.Date,
			Amount:        m.Amount,
			AmountDiffers: !b.Amount.Equal(m.Amount),
		}
		next, err := schedule.Next(m.Date, b)
		if err != nil {
			u.ScheduleErr = err
		} else {
			u.NextDueDate = next
		}
		updates = append(updates, u)
	}
	return updates
}

// Apply returns a copy of the bill with the confirmed proposal's
// values applied. Amount changes only apply to variable bills; fixed
// bills keep their nominal amount.
func Apply(b model.RecurringBill, u BillUpdate) (model.RecurringBill, error) {
	if b.ID != u.BillID {
		return b, errors.New("proposal does not belong to this bill")
	}
	if !u.NextDueDate.IsZero() {
		b.NextDueDate = u.NextDueDate
	}
	if b.AmountType == model.AmountVariable {
		b.Amount = u.Amount
	}
	return b, nil
}
