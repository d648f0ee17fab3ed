// Package dedup detects statement rows that already exist in the ledger.
//
// The duplicate key is (account, transaction date, unsigned amount).
// Description and direction are not part of the key, so two distinct
// transactions with the same date and amount on one account are reported
// as duplicates. That false positive is accepted.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// TransactionFinder looks up ledger transactions by the duplicate key.
type TransactionFinder interface {
	FindByDateAndAmount(ctx context.Context, accountID string, date time.Time, amount decimal.Decimal) ([]model.LedgerTransaction, error)
}

// Detector decides whether candidate rows are already in the ledger.
type Detector struct {
	finder TransactionFinder
}

// NewDetector creates a Detector backed by finder.
func NewDetector(finder TransactionFinder) *Detector {
	return &Detector{finder: finder}
}

// IsDuplicate reports whether any ledger transaction on accountID has the
// row's date and amount.
func (d *Detector) IsDuplicate(ctx context.Context, accountID string, row model.CandidateRow) (bool, error) {
	existing, err := d.finder.FindByDateAndAmount(ctx, accountID, row.TransactionDate, row.Amount.Abs())
	if err != nil {
		return false, fmt.Errorf("looking up %s %s: %w", row.TransactionDate.Format(model.DateFormat), row.Amount.StringFixed(2), err)
	}
	return len(existing) > 0, nil
}
