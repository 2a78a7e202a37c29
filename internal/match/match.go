// Package match links incoming transactions to recurring bill
// definitions by tolerant amount and description comparison.
package match

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/similarity"
)

// CentTolerance is the absolute amount tolerance for fixed bills and
// for amount-equality checks during reconciliation.
var CentTolerance = decimal.New(1, -2) // 0.01

// hundred converts a percentage tolerance into a fraction.
var hundred = decimal.NewFromInt(100)

// Bill returns the first active bill on the transaction's account that
// passes both the amount and description tests, or nil.
//
// When several bills satisfy both tests only list order decides; there
// is no closest-amount or most-specific-description ranking.
func Bill(tx model.Transaction, bills []model.RecurringBill) *model.RecurringBill {
	for i := range bills {
		b := &bills[i]
		if !b.Active || b.AccountID != tx.AccountID {
			continue
		}
		if !AmountMatches(*b, tx.Amount) {
			continue
		}
		if similarity.Match(tx.Description, b.Description, similarity.BillOverlap) {
			return b
		}
	}
	return nil
}

// AmountMatches applies the bill's amount rule: fixed bills accept
// within CentTolerance absolute, variable bills within the bill's
// percentage tolerance of its nominal amount.
func AmountMatches(b model.RecurringBill, amount decimal.Decimal) bool {
	diff := b.Amount.Sub(amount).Abs()
	if b.AmountType == model.AmountVariable {
		allowed := b.Amount.Abs().Mul(b.Tolerance()).Div(hundred)
		return diff.LessThanOrEqual(allowed)
	}
	return diff.LessThanOrEqual(CentTolerance)
}

// AmountsEqual reports whether two amounts agree within CentTolerance.
// Used by the reconciler for pending and exact-data matching.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(CentTolerance)
}
