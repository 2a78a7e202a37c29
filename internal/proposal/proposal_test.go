package proposal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
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

func monthlyBill(id string, amount string) model.RecurringBill {
	return model.RecurringBill{
		ID:          id,
		AccountID:   "a1",
		Description: "Electric Utility",
		Amount:      dec(amount),
		AmountType:  model.AmountVariable,
		Frequency:   model.FreqMonthly,
		DayOfMonth:  12,
		DayOfWeek:   -1,
		Active:      true,
	}
}

func TestBuild_ProposesNextDateAndAmount(t *testing.T) {
	bills := []model.RecurringBill{monthlyBill("b1", "-100.00")}
	matches := map[string]reconcile.BillMatch{
		"b1": {Amount: dec("-104.50"), Date: day(time.January, 12)},
	}

	updates := Build(bills, matches)
	require.Len(t, updates, 1)

	u := updates[0]
	assert.Equal(t, "b1", u.BillID)
	assert.Equal(t, "-104.50", u.Amount.StringFixed(2))
	assert.True(t, u.AmountDiffers)
	assert.Equal(t, day(time.February, 12), u.NextDueDate)
	assert.NoError(t, u.ScheduleErr)
}

func TestBuild_UnmatchedBillsOmitted(t *testing.T) {
	bills := []model.RecurringBill{monthlyBill("b1", "-100.00"), monthlyBill("b2", "-50.00")}
	matches := map[string]reconcile.BillMatch{
		"b2": {Amount: dec("-50.00"), Date: day(time.March, 12)},
	}

	updates := Build(bills, matches)
	require.Len(t, updates, 1)
	assert.Equal(t, "b2", updates[0].BillID)
	assert.False(t, updates[0].AmountDiffers)
}

func TestBuild_ScheduleErrorRecorded(t *testing.T) {
	b := monthlyBill("b1", "-100.00")
	b.Frequency = "fortnightly"
	matches := map[string]reconcile.BillMatch{
		"b1": {Amount: dec("-100.00"), Date: day(time.January, 12)},
	}

	updates := Build([]model.RecurringBill{b}, matches)
	require.Len(t, updates, 1)
	assert.Error(t, updates[0].ScheduleErr)
	assert.True(t, updates[0].NextDueDate.IsZero())
}

func TestApply_VariableBill(t *testing.T) {
	b := monthlyBill("b1", "-100.00")
	u := BillUpdate{BillID: "b1", Amount: dec("-104.50"), NextDueDate: day(time.February, 12)}

	got, err := Apply(b, u)
	require.NoError(t, err)
	assert.Equal(t, "-104.50", got.Amount.StringFixed(2))
	assert.Equal(t, day(time.February, 12), got.NextDueDate)
}

func TestApply_FixedBillKeepsAmount(t *testing.T) {
	b := monthlyBill("b1", "-15.99")
	b.AmountType = model.AmountFixed
	u := BillUpdate{BillID: "b1", Amount: dec("-16.00"), NextDueDate: day(time.February, 12)}

	got, err := Apply(b, u)
	require.NoError(t, err)
	assert.Equal(t, "-15.99", got.Amount.StringFixed(2))
	assert.Equal(t, day(time.February, 12), got.NextDueDate)
}

func TestApply_WrongBill(t *testing.T) {
	b := monthlyBill("b1", "-100.00")
	_, err := Apply(b, BillUpdate{BillID: "b2"})
	assert.Error(t, err)
}
