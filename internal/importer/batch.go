package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

const (
	maxDescriptionLen = 500
	maxMerchantLen    = 200
	maxExternalIDLen  = 100
)

var amountRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// BatchRow is the wire form of one candidate row.
type BatchRow struct {
	TransactionDate  string `json:"transactionDate"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	TransactionType  string `json:"transactionType"`
	MerchantOriginal string `json:"merchantOriginal,omitempty"`
	ExternalID       string `json:"externalId,omitempty"`
	PostedDate       string `json:"postedDate,omitempty"`
}

// Batch is the wire form of a processing request.
type Batch struct {
	Transactions []BatchRow `json:"transactions"`
}

// DecodeBatch reads a JSON batch and converts it to candidate rows. Every
// field problem is collected into a single ValidationError.
func DecodeBatch(r io.Reader) ([]model.CandidateRow, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("decoding batch: %w", err)}
	}
	return b.Rows()
}

// Rows validates the batch and converts it to candidate rows.
func (b Batch) Rows() ([]model.CandidateRow, error) {
	if len(b.Transactions) == 0 {
		return nil, &ValidationError{Problems: []Problem{{Row: -1, Field: "transactions", Message: "at least one transaction is required"}}}
	}

	var problems []Problem
	rows := make([]model.CandidateRow, 0, len(b.Transactions))
	for i, br := range b.Transactions {
		row, ps := br.toCandidate(i)
		problems = append(problems, ps...)
		rows = append(rows, row)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return rows, nil
}

func (br BatchRow) toCandidate(i int) (model.CandidateRow, []Problem) {
	var problems []Problem
	add := func(field, format string, args ...any) {
		problems = append(problems, Problem{Row: i, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	var row model.CandidateRow

	d, err := time.Parse(model.DateFormat, br.TransactionDate)
	if err != nil {
		add("transactionDate", "expected YYYY-MM-DD, got %q", br.TransactionDate)
	}
	row.TransactionDate = d

	if !amountRe.MatchString(br.Amount) {
		add("amount", "expected unsigned decimal with at most 2 fraction digits, got %q", br.Amount)
	} else {
		row.Amount = decimal.RequireFromString(br.Amount)
	}

	n := utf8.RuneCountInString(br.Description)
	if n == 0 || n > maxDescriptionLen {
		add("description", "must be 1..%d characters, got %d", maxDescriptionLen, n)
	}
	row.Description = br.Description

	row.Type = model.Direction(br.TransactionType)
	if !row.Type.Valid() {
		add("transactionType", "must be debit or credit, got %q", br.TransactionType)
	}

	if n := utf8.RuneCountInString(br.MerchantOriginal); n > maxMerchantLen {
		add("merchantOriginal", "must be at most %d characters, got %d", maxMerchantLen, n)
	}
	row.MerchantOriginal = br.MerchantOriginal

	if n := utf8.RuneCountInString(br.ExternalID); n > maxExternalIDLen {
		add("externalId", "must be at most %d characters, got %d", maxExternalIDLen, n)
	}
	row.ExternalID = br.ExternalID

	if br.PostedDate != "" {
		pd, err := time.Parse(model.DateFormat, br.PostedDate)
		if err != nil {
			add("postedDate", "expected YYYY-MM-DD, got %q", br.PostedDate)
		} else {
			row.PostedDate = &pd
		}
	}

	return row, problems
}
