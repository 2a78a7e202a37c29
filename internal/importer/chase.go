package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
)

// ChaseParser parses Chase bank checking CSV exports into normalized
// transactions.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Malformed rows become RowErrors.
func (p *ChaseParser) Parse(r io.Reader) ([]model.Transaction, []reconcile.RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil, nil
	}

	var txns []model.Transaction
	var rowErrs []reconcile.RowError
	for i, rec := range records[1:] {
		tx, err := parseChaseRow(rec)
		if err != nil {
			rowErrs = append(rowErrs, reconcile.RowError{Index: i, Reason: err.Error()})
			continue
		}
		txns = append(txns, tx)
	}
	return txns, rowErrs, nil
}

func parseChaseRow(rec []string) (model.Transaction, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	desc := rec[chaseColDesc]
	if desc == "" {
		return model.Transaction{}, fmt.Errorf("missing description")
	}

	return model.Transaction{
		ID:          makeChaseID(date, desc, amount),
		Date:        date,
		Description: desc,
		Category:    model.DefaultCategory,
		Amount:      amount,
		Pending:     strings.EqualFold(rec[chaseColType], "PENDING"),
	}, nil
}

// makeChaseID derives a stable identifier like chase_20250103_GITHUB_-4.00,
// so re-importing the same export is idempotent.
func makeChaseID(date time.Time, desc string, amount decimal.Decimal) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s_%s", date.Format("20060102"), prefix, amount.StringFixed(2))
}
