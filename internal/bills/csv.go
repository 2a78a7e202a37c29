package bills

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

// Header is the CSV header for bills.csv.
const Header = "id,description,amount,amount_type,amount_tolerance,frequency,day_of_month,day_of_week,week_of_month,next_due_date,category,active"

const (
	numFields    = 12
	dateFormat   = "2006-01-02"
	colID        = 0
	colDesc      = 1
	colAmount    = 2
	colType      = 3
	colTolerance = 4
	colFrequency = 5
	colDayMonth  = 6
	colDayWeek   = 7
	colWeekMonth = 8
	colNextDue   = 9
	colCategory  = 10
	colActive    = 11
)

// ReadBills reads all rows from a bills.csv reader. The account ID is
// stamped by the caller.
func ReadBills(r io.Reader) ([]model.RecurringBill, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bills CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var out []model.RecurringBill
	for i, rec := range records[1:] {
		b, err := UnmarshalBill(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// WriteBills writes bills (including header) to a writer.
func WriteBills(w io.Writer, bs []model.RecurringBill) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range bs {
		if err := cw.Write(MarshalBill(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalBill converts a RecurringBill to a CSV row.
func MarshalBill(b model.RecurringBill) []string {
	row := make([]string, numFields)
	row[colID] = b.ID
	row[colDesc] = b.Description
	row[colAmount] = b.Amount.StringFixed(2)
	row[colType] = string(b.AmountType)

	if !b.AmountTolerance.IsZero() {
		row[colTolerance] = b.AmountTolerance.String()
	}

	row[colFrequency] = string(b.Frequency)

	if b.DayOfMonth > 0 {
		row[colDayMonth] = strconv.Itoa(b.DayOfMonth)
	}
	if b.DayOfWeek >= 0 {
		row[colDayWeek] = strconv.Itoa(b.DayOfWeek)
	}
	if b.WeekOfMonth > 0 {
		row[colWeekMonth] = strconv.Itoa(b.WeekOfMonth)
	}
	if !b.NextDueDate.IsZero() {
		row[colNextDue] = b.NextDueDate.Format(dateFormat)
	}

	row[colCategory] = b.Category
	if b.Active {
		row[colActive] = "true"
	}
	return row
}

// UnmarshalBill converts a CSV row to a RecurringBill.
func UnmarshalBill(record []string) (model.RecurringBill, error) {
	if len(record) != numFields {
		return model.RecurringBill{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.RecurringBill{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var tolerance decimal.Decimal
	if record[colTolerance] != "" {
		tolerance, err = decimal.NewFromString(record[colTolerance])
		if err != nil {
			return model.RecurringBill{}, fmt.Errorf("parsing amount_tolerance %q: %w", record[colTolerance], err)
		}
	}

	dayOfMonth, err := parseOptionalInt(record[colDayMonth], 0)
	if err != nil {
		return model.RecurringBill{}, fmt.Errorf("parsing day_of_month: %w", err)
	}
	dayOfWeek, err := parseOptionalInt(record[colDayWeek], -1)
	if err != nil {
		return model.RecurringBill{}, fmt.Errorf("parsing day_of_week: %w", err)
	}
	weekOfMonth, err := parseOptionalInt(record[colWeekMonth], 0)
	if err != nil {
		return model.RecurringBill{}, fmt.Errorf("parsing week_of_month: %w", err)
	}

	var nextDue time.Time
	if record[colNextDue] != "" {
		nextDue, err = time.Parse(dateFormat, record[colNextDue])
		if err != nil {
			return model.RecurringBill{}, fmt.Errorf("parsing next_due_date %q: %w", record[colNextDue], err)
		}
	}

	active := false
	if record[colActive] != "" {
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.RecurringBill{}, fmt.Errorf("parsing active: %w", err)
		}
	}

	return model.RecurringBill{
		ID:              record[colID],
		Description:     record[colDesc],
		Amount:          amount,
		AmountType:      model.AmountType(record[colType]),
		AmountTolerance: tolerance,
		Frequency:       model.Frequency(record[colFrequency]),
		DayOfMonth:      dayOfMonth,
		DayOfWeek:       dayOfWeek,
		WeekOfMonth:     weekOfMonth,
		NextDueDate:     nextDue,
		Category:        record[colCategory],
		Active:          active,
	}, nil
}

func parseOptionalInt(s string, unset int) (int, error) {
	if s == "" {
		return unset, nil
	}
	return strconv.Atoi(s)
}
