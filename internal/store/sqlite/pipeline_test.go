package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudivdz85/nautical-fin/internal/importer"
	"github.com/rudivdz85/nautical-fin/internal/model"
)

func TestProcessorAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "10000.00")

	cat, err := s.CreateCategory(ctx, model.Category{UserID: user, Name: "Transport", Kind: model.CategoryKindExpense})
	require.NoError(t, err)
	rule, err := s.CreateRule(ctx, model.Rule{UserID: user, CategoryID: cat.ID, Priority: 10,
		Predicate: model.MerchantExact{Merchant: "Uber"}})
	require.NoError(t, err)
	_, err = s.CreateMapping(ctx, model.MerchantMapping{OriginalName: "UBER *TRIP", NormalizedName: "Uber"})
	require.NoError(t, err)

	rec, err := importer.NewCreator(s, s).Create(ctx, importer.CreateParams{
		UserID: user, AccountID: a.ID, OpeningBalance: decp("10000.00"), ClosingBalance: decp("8976.50"),
	})
	require.NoError(t, err)

	rows, err := importer.DecodeBatch(strings.NewReader(`{"transactions":[
		{"transactionDate":"2025-01-05","amount":"23.50","description":"Ride","transactionType":"debit","merchantOriginal":"UBER *TRIP"},
		{"transactionDate":"2025-01-06","amount":"1000","description":"Rent","transactionType":"debit"},
		{"transactionDate":"2025-01-06","amount":"1000.00","description":"Rent again","transactionType":"debit"}
	]}`))
	require.NoError(t, err)

	p := importer.NewProcessor(importer.StoresFrom(s), zerolog.Nop())
	res, err := p.Process(ctx, rec.ID, user, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, model.ImportCompleted, res.Import.Status)
	require.NotNil(t, res.BalanceCheck)
	assert.True(t, res.BalanceCheck.IsReconciled)
	assert.Equal(t, rule.ID, res.Rows[0].RuleID)

	acct, err := s.FindAccount(ctx, a.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "8976.50", acct.Balance.StringFixed(2))

	txns, err := s.TransactionsForAccount(ctx, a.ID, user)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Uber", txns[0].MerchantNormalized)
	assert.Equal(t, cat.ID, txns[0].CategoryID)
	assert.Equal(t, rec.ID, txns[0].ImportID)
	assert.Empty(t, txns[1].CategoryID)

	rules, err := s.RulesForUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, rules[0].TimesApplied)

	_, err = p.Process(ctx, rec.ID, user, rows)
	var verr *importer.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, importer.ErrAlreadyProcessed)
}
