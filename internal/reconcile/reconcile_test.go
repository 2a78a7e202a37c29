package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(id, desc, amount string, d time.Time) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   "a1",
		Date:        d,
		Description: desc,
		Amount:      dec(amount),
	}
}

func TestRun_NewEntries(t *testing.T) {
	incoming := []model.Transaction{
		tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10)),
		tx("t2", "PAYCHECK", "2500.00", day(time.January, 15)),
	}

	res := Run(incoming, nil, nil)
	assert.Equal(t, Counts{New: 2}, res.Counts)
	require.Len(t, res.Ledger, 2)
}

func TestRun_ReturnedLedgerCarriesMergedSnapshot(t *testing.T) {
	existing := tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10))
	incoming := tx("t2", "PAYCHECK", "2500.00", day(time.January, 15))

	res := Run([]model.Transaction{incoming}, []model.Transaction{existing}, nil)

	assert.Equal(t, Counts{New: 1}, res.Counts)
	require.Len(t, res.Ledger, 2)
	assert.Equal(t, "t1", res.Ledger[0].ID)
	assert.Equal(t, "t2", res.Ledger[1].ID)
}

func TestRun_IdempotentReimport(t *testing.T) {
	batch := []model.Transaction{
		tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10)),
		tx("t2", "PAYCHECK", "2500.00", day(time.January, 15)),
	}

	first := Run(batch, nil, nil)
	second := Run(batch, first.Ledger, nil)

	assert.Equal(t, Counts{Skipped: 2}, second.Counts)
	assert.Len(t, second.Ledger, 2)
}

func TestRun_PendingToPosted(t *testing.T) {
	pending := tx("p1", "SQ *CORNER DELI", "-42.00", day(time.January, 10))
	pending.Pending = true
	pending.Reconciled = true

	posted := tx("p1-cleared", "SQ *CORNER DELI 0110", "-42.00", day(time.January, 12))

	res := Run([]model.Transaction{posted}, []model.Transaction{pending}, nil)

	assert.Equal(t, Counts{Posted: 1}, res.Counts)
	require.Len(t, res.Ledger, 1)
	got := res.Ledger[0]
	assert.Equal(t, "p1-cleared", got.ID)
	assert.False(t, got.Pending)
	assert.True(t, got.Reconciled, "reconciled survives the posted transition")
	assert.Equal(t, day(time.January, 12), got.Date)
}

func TestRun_PendingRefreshedWhileStillPending(t *testing.T) {
	pending := tx("p1", "HOTEL HOLD", "-200.00", day(time.January, 10))
	pending.Pending = true
	pending.RecurringBillID = "b9"
	pending.Category = "Travel"

	update := tx("p2", "HOTEL HOLD", "-200.00", day(time.January, 11))
	update.Pending = true

	res := Run([]model.Transaction{update}, []model.Transaction{pending}, nil)

	assert.Equal(t, Counts{Updated: 1}, res.Counts)
	require.Len(t, res.Ledger, 1)
	assert.True(t, res.Ledger[0].Pending)
	assert.Equal(t, "b9", res.Ledger[0].RecurringBillID, "existing bill link kept when incoming has none")
	assert.Equal(t, "Travel", res.Ledger[0].Category)
}

func TestRun_ManualEntryReplacedByImport(t *testing.T) {
	manual := tx("m1", "RENT", "-1200.00", day(time.February, 1))
	manual.Manual = true
	manual.Reconciled = true

	imported := tx("m1", "RENT", "-1200.00", day(time.February, 1))

	res := Run([]model.Transaction{imported}, []model.Transaction{manual}, nil)

	assert.Equal(t, Counts{Updated: 1}, res.Counts)
	require.Len(t, res.Ledger, 1)
	assert.False(t, res.Ledger[0].Manual)
	assert.True(t, res.Ledger[0].Reconciled)
}

func TestRun_ExactDataDuplicateSkipped(t *testing.T) {
	existing := tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10))
	// Same date, description, amount, different bank id.
	dup := tx("t1-other", "COFFEE SHOP", "-4.50", day(time.January, 10))

	res := Run([]model.Transaction{dup}, []model.Transaction{existing}, nil)

	assert.Equal(t, Counts{Skipped: 1}, res.Counts)
	assert.Len(t, res.Ledger, 1)
}

func TestRun_BillLinking(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Netflix",
		Amount:      dec("-15.99"),
		AmountType:  model.AmountFixed,
		Category:    "Entertainment",
		Active:      true,
	}}

	in := tx("t1", "NETFLIX.COM", "-15.99", day(time.January, 5))
	res := Run([]model.Transaction{in}, nil, bills)

	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "b1", res.Ledger[0].RecurringBillID)
	assert.Equal(t, "Entertainment", res.Ledger[0].Category)

	m, ok := res.Matches["b1"]
	require.True(t, ok)
	assert.Equal(t, "-15.99", m.Amount.StringFixed(2))
	assert.Equal(t, day(time.January, 5), m.Date)
}

func TestRun_BillMatchLatestDateWins(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Electric Utility",
		Amount:      dec("-100.00"),
		AmountType:  model.AmountVariable,
		Active:      true,
	}}

	incoming := []model.Transaction{
		tx("t2", "ELECTRIC UTILITY PMT", "-104.00", day(time.February, 12)),
		tx("t1", "ELECTRIC UTILITY PMT", "-98.00", day(time.January, 12)),
	}

	res := Run(incoming, nil, bills)
	m := res.Matches["b1"]
	assert.Equal(t, "-104.00", m.Amount.StringFixed(2))
	assert.Equal(t, day(time.February, 12), m.Date)
}

func TestRun_BillMatchRecordedEvenWhenSkipped(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Netflix",
		Amount:      dec("-15.99"),
		AmountType:  model.AmountFixed,
		Active:      true,
	}}
	existing := tx("t1", "NETFLIX.COM", "-15.99", day(time.January, 5))

	res := Run([]model.Transaction{existing}, []model.Transaction{existing}, bills)

	assert.Equal(t, Counts{Skipped: 1}, res.Counts)
	_, ok := res.Matches["b1"]
	assert.True(t, ok)
}

func TestRun_ProjectedPlaceholderReplaced(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Rent",
		Amount:      dec("-1200.00"),
		AmountType:  model.AmountFixed,
		Active:      true,
	}}

	projected := tx("proj-b1-2025-03-01", "Rent (Projected)", "-1200.00", day(time.March, 1))
	projected.Pending = true
	projected.RecurringBillID = "b1"

	real := tx("t1", "RENT PAYMENT", "-1200.00", day(time.March, 3))

	res := Run([]model.Transaction{real}, []model.Transaction{projected}, bills)

	assert.Equal(t, Counts{New: 1}, res.Counts, "replacement still counts as new")
	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "t1", res.Ledger[0].ID)
	assert.False(t, res.Ledger[0].Projected())
}

func TestRun_ProjectedPlaceholderNotPostedDespiteSimilarDescription(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Rent",
		Amount:      dec("-1200.00"),
		AmountType:  model.AmountFixed,
		Active:      true,
	}}

	// Placeholder is pending and its description substring-matches the
	// incoming transaction, so without the projected exclusion it would
	// be classified as a posted pending entry.
	projected := tx("proj-b1-2025-03-01", "Rent (Projected)", "-1200.00", day(time.March, 1))
	projected.Pending = true
	projected.RecurringBillID = "b1"

	real := tx("t1", "Rent", "-1200.00", day(time.March, 1))

	res := Run([]model.Transaction{real}, []model.Transaction{projected}, bills)

	assert.Equal(t, Counts{New: 1}, res.Counts, "replacement counts as new, not posted")
	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "t1", res.Ledger[0].ID)
	assert.False(t, res.Ledger[0].Projected())
	assert.False(t, res.Ledger[0].Pending)
}

func TestRun_ProjectedOutsideWindowNotReplaced(t *testing.T) {
	bills := []model.RecurringBill{{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Rent",
		Amount:      dec("-1200.00"),
		AmountType:  model.AmountFixed,
		Active:      true,
	}}

	projected := tx("proj-b1-2025-03-20", "Rent (Projected)", "-1200.00", day(time.March, 20))
	projected.RecurringBillID = "b1"

	real := tx("t1", "RENT PAYMENT", "-1200.00", day(time.March, 3))

	res := Run([]model.Transaction{real}, []model.Transaction{projected}, bills)

	assert.Equal(t, Counts{New: 1}, res.Counts)
	assert.Len(t, res.Ledger, 2)
}

func TestRun_MalformedRowsReportedBatchContinues(t *testing.T) {
	good := tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10))
	noDate := tx("t2", "GROCERY", "-20.00", time.Time{})
	noDesc := tx("t3", "", "-5.00", day(time.January, 11))

	res := Run([]model.Transaction{noDate, good, noDesc}, nil, nil)

	assert.Equal(t, Counts{New: 1}, res.Counts)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 0, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Reason, "date")
	assert.Equal(t, 2, res.Errors[1].Index)
	assert.Contains(t, res.Errors[1].Reason, "description")
}

func TestRun_OtherAccountUntouched(t *testing.T) {
	other := tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10))
	other.AccountID = "a2"

	incoming := tx("t1", "COFFEE SHOP", "-4.50", day(time.January, 10))

	res := Run([]model.Transaction{incoming}, []model.Transaction{other}, nil)

	assert.Equal(t, Counts{New: 1}, res.Counts)
	assert.Len(t, res.Ledger, 2)
}

func TestRun_InputSnapshotNotMutated(t *testing.T) {
	pending := tx("p1", "SQ *CORNER DELI", "-42.00", day(time.January, 10))
	pending.Pending = true
	ledger := []model.Transaction{pending}

	posted := tx("p2", "SQ *CORNER DELI", "-42.00", day(time.January, 12))
	_ = Run([]model.Transaction{posted}, ledger, nil)

	assert.True(t, ledger[0].Pending, "caller's snapshot must stay intact")
	assert.Equal(t, "p1", ledger[0].ID)
}
