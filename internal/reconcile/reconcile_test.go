package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func effects(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = decimal.RequireFromString(s)
	}
	return out
}

func TestReconcile_Balanced(t *testing.T) {
	got := Reconcile(decp("10000.00"), decp("8500.00"), effects("-1000.00", "-500.00"))
	require.NotNil(t, got)
	assert.Equal(t, "8500.00", got.ComputedClosing.StringFixed(2))
	assert.Equal(t, "0.00", got.Difference.StringFixed(2))
	assert.True(t, got.IsReconciled)
}

func TestReconcile_Mismatch(t *testing.T) {
	got := Reconcile(decp("10000.00"), decp("9000.00"), effects("-500.00"))
	require.NotNil(t, got)
	assert.Equal(t, "9500.00", got.ComputedClosing.StringFixed(2))
	assert.Equal(t, "500.00", got.Difference.StringFixed(2))
	assert.False(t, got.IsReconciled)
}

func TestReconcile_DifferenceIsAbsolute(t *testing.T) {
	got := Reconcile(decp("100.00"), decp("300.00"), effects("50.00"))
	require.NotNil(t, got)
	assert.Equal(t, "150.00", got.ComputedClosing.StringFixed(2))
	assert.Equal(t, "150.00", got.Difference.StringFixed(2))
}

func TestReconcile_MixedDirections(t *testing.T) {
	got := Reconcile(decp("0"), decp("12.34"), effects("20.00", "-7.66"))
	require.NotNil(t, got)
	assert.True(t, got.IsReconciled)
}

func TestReconcile_NoRows(t *testing.T) {
	got := Reconcile(decp("50.00"), decp("50.00"), nil)
	require.NotNil(t, got)
	assert.True(t, got.IsReconciled)
}

func TestReconcile_MissingBalances(t *testing.T) {
	assert.Nil(t, Reconcile(nil, decp("1.00"), nil))
	assert.Nil(t, Reconcile(decp("1.00"), nil, nil))
	assert.Nil(t, Reconcile(nil, nil, effects("1.00")))
}

func TestBalanceCheck_MarshalJSON(t *testing.T) {
	got := Reconcile(decp("10000"), decp("9000"), effects("-500"))
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"openingBalance": "10000.00",
		"closingBalance": "9000.00",
		"computedClosing": "9500.00",
		"difference": "500.00",
		"isReconciled": false
	}`, string(data))
}
