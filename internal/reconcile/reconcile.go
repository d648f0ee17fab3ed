// Package reconcile compares a statement's reported closing balance with the
// balance implied by the rows that were imported.
package reconcile

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// BalanceCheck is the outcome of a reconciliation. It is informational and
// never affects committed rows.
type BalanceCheck struct {
	OpeningBalance  decimal.Decimal
	ClosingBalance  decimal.Decimal
	ComputedClosing decimal.Decimal
	Difference      decimal.Decimal // absolute, rounded to cents
	IsReconciled    bool
}

// Reconcile returns nil unless both opening and closing are set. Effects are
// the signed balance effects of the imported rows only.
func Reconcile(opening, closing *decimal.Decimal, effects []decimal.Decimal) *BalanceCheck {
	if opening == nil || closing == nil {
		return nil
	}

	computed := *opening
	for _, e := range effects {
		computed = computed.Add(e)
	}
	diff := computed.Sub(*closing).Abs().Round(2)

	return &BalanceCheck{
		OpeningBalance:  *opening,
		ClosingBalance:  *closing,
		ComputedClosing: computed,
		Difference:      diff,
		IsReconciled:    diff.IsZero(),
	}
}

type balanceCheckJSON struct {
	OpeningBalance  string `json:"openingBalance"`
	ClosingBalance  string `json:"closingBalance"`
	ComputedClosing string `json:"computedClosing"`
	Difference      string `json:"difference"`
	IsReconciled    bool   `json:"isReconciled"`
}

// MarshalJSON renders every amount with two decimals.
func (c BalanceCheck) MarshalJSON() ([]byte, error) {
	return json.Marshal(balanceCheckJSON{
		OpeningBalance:  c.OpeningBalance.StringFixed(2),
		ClosingBalance:  c.ClosingBalance.StringFixed(2),
		ComputedClosing: c.ComputedClosing.StringFixed(2),
		Difference:      c.Difference.StringFixed(2),
		IsReconciled:    c.IsReconciled,
	})
}
