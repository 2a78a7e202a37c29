// Package balance computes running balances over an ordered
// transaction list.
package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

// Calculate returns a copy of the input with each Balance set to
// startingBalance plus the sum of amounts up to and including that
// entry, scanning in the given order. Inputs are not mutated and not
// sorted; callers wanting chronological balances sort first.
func Calculate(txns []model.Transaction, startingBalance decimal.Decimal) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	running := startingBalance
	for i, tx := range txns {
		running = running.Add(tx.Amount)
		tx.Balance = running
		out[i] = tx
	}
	return out
}

// SortByDate returns a copy sorted by date ascending. The sort is
// stable: entries on the same day keep their input order.
func SortByDate(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
