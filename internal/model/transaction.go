package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// Direction is the side of a bank row.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Valid reports whether d is debit or credit.
func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// Signed returns the balance effect of amount in direction d.
// Debits subtract, credits add.
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == Debit {
		return amount.Neg()
	}
	return amount
}

// CandidateRow is one parsed statement row, not yet persisted.
type CandidateRow struct {
	TransactionDate  time.Time
	Amount           decimal.Decimal // unsigned
	Description      string
	Type             Direction
	MerchantOriginal string
	ExternalID       string
	PostedDate       *time.Time
}

// SignedAmount returns the row's effect on the account balance.
func (r CandidateRow) SignedAmount() decimal.Decimal {
	return r.Type.Signed(r.Amount)
}

// Source records where a ledger transaction came from.
type Source string

const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceManual || s == SourceImport
}

// CategorizationMethod records how a category was assigned.
type CategorizationMethod string

const (
	MethodNone CategorizationMethod = ""
	MethodRule CategorizationMethod = "rule"
)

// LedgerTransaction is a persisted transaction.
type LedgerTransaction struct {
	ID                   string
	UserID               string
	AccountID            string
	ImportID             string
	TransactionDate      time.Time
	PostedDate           *time.Time
	Amount               decimal.Decimal // unsigned; see Type
	Type                 Direction
	Description          string
	MerchantOriginal     string
	MerchantNormalized   string
	CategoryID           string
	CategorizationMethod CategorizationMethod
	Confidence           decimal.Decimal
	ExternalID           string
	Source               Source
	IsReviewed           bool
	CreatedAt            time.Time
}

// SignedAmount returns the transaction's effect on the account balance.
func (t LedgerTransaction) SignedAmount() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}
