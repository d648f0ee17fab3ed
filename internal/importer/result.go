package importer

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/reconcile"
)

// Outcome is what happened to one candidate row.
type Outcome string

const (
	OutcomeImported  Outcome = "imported"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// RowOutcome records the result of one row.
type RowOutcome struct {
	Index         int     `json:"index"`
	Outcome       Outcome `json:"outcome"`
	TransactionID string  `json:"transactionId,omitempty"`
	RuleID        string  `json:"ruleId,omitempty"`
	Reason        string  `json:"reason,omitempty"`

	effect decimal.Decimal
}

// Result summarizes a processed batch.
type Result struct {
	Import       model.ImportRecord
	Imported     int
	Duplicates   int
	Failed       int
	BalanceCheck *reconcile.BalanceCheck
	Rows         []RowOutcome
}

// ImportView is the JSON rendering of an import record.
type ImportView struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	AccountID      string  `json:"accountId"`
	FileName       string  `json:"fileName,omitempty"`
	PeriodStart    string  `json:"periodStart,omitempty"`
	PeriodEnd      string  `json:"periodEnd,omitempty"`
	OpeningBalance *string `json:"openingBalance"`
	ClosingBalance *string `json:"closingBalance"`
	Imported       int     `json:"importedCount"`
	Duplicates     int     `json:"duplicateCount"`
	Failed         int     `json:"failedCount"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	CompletedAt    string  `json:"completedAt,omitempty"`
}

// NewImportView renders rec with two-decimal amounts.
func NewImportView(rec model.ImportRecord) ImportView {
	v := ImportView{
		ID:             rec.ID,
		UserID:         rec.UserID,
		AccountID:      rec.AccountID,
		FileName:       rec.FileName,
		PeriodStart:    formatDate(rec.PeriodStart),
		PeriodEnd:      formatDate(rec.PeriodEnd),
		OpeningBalance: fixed(rec.OpeningBalance),
		ClosingBalance: fixed(rec.ClosingBalance),
		Imported:       rec.Imported,
		Duplicates:     rec.Duplicates,
		Failed:         rec.Failed,
		Status:         string(rec.Status),
	}
	if !rec.CreatedAt.IsZero() {
		v.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if rec.CompletedAt != nil {
		v.CompletedAt = rec.CompletedAt.Format(time.RFC3339)
	}
	return v
}

// MarshalJSON renders the output contract of a processing call.
func (r Result) MarshalJSON() ([]byte, error) {
	rows := r.Rows
	if rows == nil {
		rows = []RowOutcome{}
	}
	return json.Marshal(struct {
		Import       ImportView              `json:"import"`
		Imported     int                     `json:"imported"`
		Duplicates   int                     `json:"duplicates"`
		Failed       int                     `json:"failed"`
		BalanceCheck *reconcile.BalanceCheck `json:"balanceCheck,omitempty"`
		Rows         []RowOutcome            `json:"rows"`
	}{
		Import:       NewImportView(r.Import),
		Imported:     r.Imported,
		Duplicates:   r.Duplicates,
		Failed:       r.Failed,
		BalanceCheck: r.BalanceCheck,
		Rows:         rows,
	})
}

func fixed(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(model.DateFormat)
}
