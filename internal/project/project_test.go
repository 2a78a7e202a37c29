package project

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

func rentBill() model.RecurringBill {
	return model.RecurringBill{
		ID:          "b1",
		AccountID:   "a1",
		Description: "Rent",
		Amount:      dec("-1200.00"),
		AmountType:  model.AmountFixed,
		Frequency:   model.FreqMonthly,
		DayOfMonth:  1,
		DayOfWeek:   -1,
		NextDueDate: day(time.March, 1),
		Category:    "Housing",
		Active:      true,
	}
}

func TestGenerate_MonthlyOccurrences(t *testing.T) {
	now := day(time.February, 15)

	got, errs := Generate([]model.RecurringBill{rentBill()}, now, 75)
	require.Empty(t, errs)
	require.Len(t, got, 3) // Mar 1, Apr 1, May 1 fall inside Feb 15 + 75d

	first := got[0]
	assert.Equal(t, "proj-b1-2025-03-01", first.ID)
	assert.Equal(t, "Rent (Projected)", first.Description)
	assert.Equal(t, "Housing", first.Category)
	assert.True(t, first.Pending)
	assert.Equal(t, "b1", first.RecurringBillID)
	assert.Equal(t, "-1200.00", first.Amount.StringFixed(2))
}

func TestGenerate_Deterministic(t *testing.T) {
	now := day(time.February, 15)
	bills := []model.RecurringBill{rentBill()}

	a, _ := Generate(bills, now, 60)
	b, _ := Generate(bills, now, 60)
	assert.Equal(t, a, b)
}

func TestGenerate_PastDueDateAdvances(t *testing.T) {
	b := rentBill()
	b.NextDueDate = day(time.January, 1) // long past

	got, errs := Generate([]model.RecurringBill{b}, day(time.March, 15), 30)
	require.Empty(t, errs)
	require.Len(t, got, 1)
	assert.Equal(t, day(time.April, 1), got[0].Date, "past occurrences are skipped, not emitted")
}

func TestGenerate_InactiveBillSkipped(t *testing.T) {
	b := rentBill()
	b.Active = false

	got, errs := Generate([]model.RecurringBill{b}, day(time.February, 15), 60)
	assert.Empty(t, errs)
	assert.Empty(t, got)
}

func TestGenerate_BadScheduleOnlyKillsThatBill(t *testing.T) {
	bad := rentBill()
	bad.ID = "b-bad"
	bad.Frequency = "fortnightly"
	bad.NextDueDate = time.Time{} // forces the resolver to run

	got, errs := Generate([]model.RecurringBill{bad, rentBill()}, day(time.February, 15), 30)
	require.Len(t, errs, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].RecurringBillID)
}

func TestFilter_Dismissed(t *testing.T) {
	projections, _ := Generate([]model.RecurringBill{rentBill()}, day(time.February, 15), 45)
	require.Len(t, projections, 2)

	dismissed := map[string]bool{"proj-b1-2025-03-01": true}
	got := Filter(projections, nil, dismissed)
	require.Len(t, got, 1)
	assert.Equal(t, "proj-b1-2025-04-01", got[0].ID)
}

func TestFilter_RealizedProjectionSuppressed(t *testing.T) {
	projections, _ := Generate([]model.RecurringBill{rentBill()}, day(time.February, 15), 20)
	require.Len(t, projections, 1) // Mar 1 only

	real := model.Transaction{
		ID:          "t1",
		AccountID:   "a1",
		Date:        day(time.March, 1),
		Description: "rent",
		Amount:      dec("-1200.00"),
	}

	got := Filter(projections, []model.Transaction{real}, nil)
	assert.Empty(t, got, "case-insensitive suffix-stripped match suppresses the projection")
}

func TestFilter_NearbyDateStillSuppresses(t *testing.T) {
	projections, _ := Generate([]model.RecurringBill{rentBill()}, day(time.February, 15), 20)
	require.Len(t, projections, 1)

	real := model.Transaction{
		ID:          "t1",
		AccountID:   "a1",
		Date:        day(time.March, 4),
		Description: "Rent",
		Amount:      dec("-1200.00"),
	}

	got := Filter(projections, []model.Transaction{real}, nil)
	assert.Empty(t, got)
}

func TestFilter_OtherAccountDoesNotSuppress(t *testing.T) {
	projections, _ := Generate([]model.RecurringBill{rentBill()}, day(time.February, 15), 20)

	real := model.Transaction{
		ID:          "t1",
		AccountID:   "a2",
		Date:        day(time.March, 1),
		Description: "Rent",
	}

	got := Filter(projections, []model.Transaction{real}, nil)
	assert.Len(t, got, 1)
}
