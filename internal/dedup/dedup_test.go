package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

type fakeFinder struct {
	txns  []model.LedgerTransaction
	err   error
	calls int
}

func (f *fakeFinder) FindByDateAndAmount(_ context.Context, accountID string, date time.Time, amount decimal.Decimal) ([]model.LedgerTransaction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.LedgerTransaction
	for _, t := range f.txns {
		if t.AccountID == accountID && t.TransactionDate.Equal(date) && t.Amount.Equal(amount) {
			out = append(out, t)
		}
	}
	return out, nil
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsDuplicate(t *testing.T) {
	finder := &fakeFinder{txns: []model.LedgerTransaction{
		{AccountID: "acc_1", TransactionDate: date(2025, 3, 1), Amount: dec("42.50"), Type: model.Debit, Description: "Coffee"},
	}}
	d := NewDetector(finder)

	tests := []struct {
		name    string
		account string
		row     model.CandidateRow
		want    bool
	}{
		{"same key", "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("42.50"), Type: model.Debit}, true},
		{"direction ignored", "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("42.5"), Type: model.Credit}, true},
		{"description ignored", "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("42.50"), Description: "Refund"}, true},
		{"other date", "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 2), Amount: dec("42.50")}, false},
		{"other amount", "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("42.51")}, false},
		{"other account", "acc_2", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("42.50")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.IsDuplicate(context.Background(), tt.account, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDuplicate_FinderError(t *testing.T) {
	finder := &fakeFinder{err: errors.New("disk on fire")}
	d := NewDetector(finder)

	_, err := d.IsDuplicate(context.Background(), "acc_1", model.CandidateRow{TransactionDate: date(2025, 3, 1), Amount: dec("1.00")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2025-03-01 1.00")
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, 1, finder.calls)
}
