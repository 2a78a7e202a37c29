package ledger

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

// Header is the CSV header for transactions.csv.
const Header = "id,date,description,category,amount,pending,reconciled,manual,recurring_bill_id"

const (
	numFields     = 9
	dateFormat    = "2006-01-02"
	colID         = 0
	colDate       = 1
	colDesc       = 2
	colCategory   = 3
	colAmount     = 4
	colPending    = 5
	colReconciled = 6
	colManual     = 7
	colBillID     = 8
)

// ReadTransactions reads all rows from a transactions.csv reader.
// The account ID is not stored in the file; callers stamp it.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

// WriteTransactions writes transactions (including header) to a writer.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txns {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colDate] = tx.Date.Format(dateFormat)
	row[colDesc] = tx.Description
	row[colCategory] = tx.Category
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colPending] = marshalBool(tx.Pending)
	row[colReconciled] = marshalBool(tx.Reconciled)
	row[colManual] = marshalBool(tx.Manual)
	row[colBillID] = tx.RecurringBillID
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	pending, err := unmarshalBool(record[colPending])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing pending: %w", err)
	}
	reconciled, err := unmarshalBool(record[colReconciled])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing reconciled: %w", err)
	}
	manual, err := unmarshalBool(record[colManual])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing manual: %w", err)
	}

	category := record[colCategory]
	if category == "" {
		category = model.DefaultCategory
	}

	return model.Transaction{
		ID:              record[colID],
		Date:            date,
		Description:     record[colDesc],
		Category:        category,
		Amount:          amount,
		Pending:         pending,
		Reconciled:      reconciled,
		Manual:          manual,
		RecurringBillID: record[colBillID],
	}, nil
}

func marshalBool(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func unmarshalBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
