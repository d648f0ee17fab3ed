// Package ledgercsv reads and writes ledger transactions as CSV.
package ledgercsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// Header is the CSV header of a transaction export.
const Header = "id,transaction_date,posted_date,amount,type,description,merchant_original,merchant_normalized,category_id,categorization_method,confidence,external_id,import_id,source,is_reviewed"

const (
	numFields     = 15
	colID         = 0
	colDate       = 1
	colPosted     = 2
	colAmount     = 3
	colType       = 4
	colDesc       = 5
	colMerchOrig  = 6
	colMerchNorm  = 7
	colCategory   = 8
	colMethod     = 9
	colConf       = 10
	colExternalID = 11
	colImportID   = 12
	colSource     = 13
	colReviewed   = 14
)

// ReadTransactions reads every transaction from r. The account and user are
// not part of the file and are left empty.
func ReadTransactions(r io.Reader) ([]model.LedgerTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.LedgerTransaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes the header followed by txns.
func WriteTransactions(w io.Writer, txns []model.LedgerTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts t to a CSV row.
func MarshalTransaction(t model.LedgerTransaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	row[colDate] = t.TransactionDate.Format(model.DateFormat)
	if t.PostedDate != nil {
		row[colPosted] = t.PostedDate.Format(model.DateFormat)
	}
	row[colAmount] = t.Amount.StringFixed(2)
	row[colType] = string(t.Type)
	row[colDesc] = t.Description
	row[colMerchOrig] = t.MerchantOriginal
	row[colMerchNorm] = t.MerchantNormalized
	row[colCategory] = t.CategoryID
	row[colMethod] = string(t.CategorizationMethod)
	if !t.Confidence.IsZero() {
		row[colConf] = t.Confidence.StringFixed(2)
	}
	row[colExternalID] = t.ExternalID
	row[colImportID] = t.ImportID
	row[colSource] = string(t.Source)
	row[colReviewed] = strconv.FormatBool(t.IsReviewed)
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.LedgerTransaction, error) {
	if len(record) != numFields {
		return model.LedgerTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing transaction_date %q: %w", record[colDate], err)
	}

	var posted *time.Time
	if record[colPosted] != "" {
		p, err := time.Parse(model.DateFormat, record[colPosted])
		if err != nil {
			return model.LedgerTransaction{}, fmt.Errorf("parsing posted_date %q: %w", record[colPosted], err)
		}
		posted = &p
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	typ := model.Direction(record[colType])
	if !typ.Valid() {
		return model.LedgerTransaction{}, fmt.Errorf("unknown type %q", record[colType])
	}

	source := model.Source(record[colSource])
	if !source.Valid() {
		return model.LedgerTransaction{}, fmt.Errorf("unknown source %q", record[colSource])
	}

	var confidence decimal.Decimal
	if record[colConf] != "" {
		confidence, err = decimal.NewFromString(record[colConf])
		if err != nil {
			return model.LedgerTransaction{}, fmt.Errorf("parsing confidence %q: %w", record[colConf], err)
		}
	}

	reviewed, err := strconv.ParseBool(record[colReviewed])
	if err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing is_reviewed %q: %w", record[colReviewed], err)
	}

	return model.LedgerTransaction{
		ID:                   record[colID],
		ImportID:             record[colImportID],
		TransactionDate:      date,
		PostedDate:           posted,
		Amount:               amount,
		Type:                 typ,
		Description:          record[colDesc],
		MerchantOriginal:     record[colMerchOrig],
		MerchantNormalized:   record[colMerchNorm],
		CategoryID:           record[colCategory],
		CategorizationMethod: model.CategorizationMethod(record[colMethod]),
		Confidence:           confidence,
		ExternalID:           record[colExternalID],
		Source:               source,
		IsReviewed:           reviewed,
	}, nil
}
