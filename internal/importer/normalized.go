package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
)

// NormalizedParser parses the tool's own normalized export format:
// id,date,description,amount,category,pending. The id column may be
// empty; rows without one get a generated UUID.
type NormalizedParser struct{}

const (
	normDateFormat = "2006-01-02"
	normNumFields  = 6
	normColID      = 0
	normColDate    = 1
	normColDesc    = 2
	normColAmount  = 3
	normColCat     = 4
	normColPending = 5
)

// Format returns the parser name.
func (p *NormalizedParser) Format() string { return "normalized" }

// Parse reads a normalized CSV. Each malformed row becomes a RowError;
// the remaining rows still parse.
func (p *NormalizedParser) Parse(r io.Reader) ([]model.Transaction, []reconcile.RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = normNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading normalized CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil, nil
	}

	var txns []model.Transaction
	var rowErrs []reconcile.RowError
	for i, rec := range records[1:] {
		tx, err := parseNormalizedRow(rec)
		if err != nil {
			rowErrs = append(rowErrs, reconcile.RowError{Index: i, ID: rec[normColID], Reason: err.Error()})
			continue
		}
		txns = append(txns, tx)
	}
	return txns, rowErrs, nil
}

func parseNormalizedRow(rec []string) (model.Transaction, error) {
	if rec[normColDate] == "" {
		return model.Transaction{}, fmt.Errorf("missing date")
	}
	date, err := time.Parse(normDateFormat, rec[normColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[normColDate], err)
	}

	if rec[normColDesc] == "" {
		return model.Transaction{}, fmt.Errorf("missing description")
	}

	if rec[normColAmount] == "" {
		return model.Transaction{}, fmt.Errorf("missing amount")
	}
	amount, err := decimal.NewFromString(rec[normColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[normColAmount], err)
	}

	pending := false
	if rec[normColPending] != "" {
		pending, err = strconv.ParseBool(rec[normColPending])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing pending %q: %w", rec[normColPending], err)
		}
	}

	id := rec[normColID]
	if id == "" {
		id = uuid.NewString()
	}

	category := rec[normColCat]
	if category == "" {
		category = model.DefaultCategory
	}

	return model.Transaction{
		ID:          id,
		Date:        date,
		Description: rec[normColDesc],
		Category:    category,
		Amount:      amount,
		Pending:     pending,
	}, nil
}
