package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

const user = "user_1"

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAccount(t *testing.T, s *Store, balance string) model.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), model.Account{
		UserID: user, Name: "Checking", Type: model.AccountTypeChecking, Currency: "USD", Balance: dec(balance),
	})
	require.NoError(t, err)
	return a
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fin.db")
	s, err := Open(path)
	require.NoError(t, err)
	a, err := s.CreateAccount(context.Background(), model.Account{UserID: user, Name: "Savings", Type: model.AccountTypeSavings})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.FindAccount(context.Background(), a.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "Savings", got.Name)
	assert.Equal(t, "0.00", got.Balance.StringFixed(2))
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "250.10")

	got, err := s.FindAccount(ctx, a.ID, user)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = s.FindAccount(ctx, a.ID, "user_2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.AccountsForUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "10000.00")

	require.NoError(t, s.AdjustBalance(ctx, a.ID, user, dec("-1000.00")))
	require.NoError(t, s.AdjustBalance(ctx, a.ID, user, dec("-500.00")))
	require.NoError(t, s.AdjustBalance(ctx, a.ID, user, dec("0.01")))

	got, err := s.FindAccount(ctx, a.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "8500.01", got.Balance.StringFixed(2))

	assert.ErrorIs(t, s.AdjustBalance(ctx, "acc_missing", user, dec("1")), store.ErrNotFound)
}

func TestAdjustBalance_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "0.00")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AdjustBalance(ctx, a.ID, user, dec("1.25")))
		}()
	}
	wg.Wait()

	got, err := s.FindAccount(ctx, a.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "25.00", got.Balance.StringFixed(2))
}

func TestImports_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "0")

	start, end := date(2025, 1, 1), date(2025, 1, 31)
	rec, err := s.CreateImport(ctx, model.ImportRecord{
		UserID: user, AccountID: a.ID, FileName: "jan.ofx",
		PeriodStart: &start, PeriodEnd: &end, OpeningBalance: decp("100"),
	})
	require.NoError(t, err)

	got, err := s.FindImport(ctx, rec.ID, user)
	require.NoError(t, err)
	assert.Equal(t, model.ImportProcessing, got.Status)
	assert.Equal(t, "jan.ofx", got.FileName)
	require.NotNil(t, got.PeriodStart)
	assert.True(t, got.PeriodStart.Equal(start))
	require.NotNil(t, got.OpeningBalance)
	assert.Equal(t, "100.00", got.OpeningBalance.StringFixed(2))
	assert.Nil(t, got.ClosingBalance)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, s.ClaimImport(ctx, rec.ID, user))
	assert.ErrorIs(t, s.ClaimImport(ctx, rec.ID, user), store.ErrNotClaimable)
	assert.ErrorIs(t, s.ClaimImport(ctx, "imp_missing", user), store.ErrNotFound)

	final, err := s.UpdateImport(ctx, rec.ID, user, store.ImportUpdate{
		Status: model.ImportPartial, Imported: 3, Duplicates: 1, Failed: 2, CompletedAt: date(2025, 2, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ImportPartial, final.Status)
	assert.Equal(t, 3, final.Imported)
	assert.Equal(t, 1, final.Duplicates)
	assert.Equal(t, 2, final.Failed)
	require.NotNil(t, final.CompletedAt)

	_, err = s.UpdateImport(ctx, "imp_missing", user, store.ImportUpdate{Status: model.ImportFailed})
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ImportsForUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClaimImport_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "0")
	rec, err := s.CreateImport(ctx, model.ImportRecord{UserID: user, AccountID: a.ID})
	require.NoError(t, err)

	var mu sync.Mutex
	wins := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ClaimImport(ctx, rec.ID, user) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := newAccount(t, s, "0")
	cat, err := s.CreateCategory(ctx, model.Category{UserID: user, Name: "Software", Kind: model.CategoryKindExpense})
	require.NoError(t, err)

	posted := date(2025, 1, 4)
	txn, err := s.CreateTransaction(ctx, model.LedgerTransaction{
		UserID: user, AccountID: a.ID, TransactionDate: date(2025, 1, 3), PostedDate: &posted,
		Amount: dec("4"), Type: model.Debit, Description: "GITHUB *PRO",
		MerchantOriginal: "GITHUB", MerchantNormalized: "GitHub",
		CategoryID: cat.ID, CategorizationMethod: model.MethodRule, Confidence: dec("1"),
		Source: model.SourceImport,
	})
	require.NoError(t, err)

	got, err := s.FindByDateAndAmount(ctx, a.ID, date(2025, 1, 3), dec("4.00"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, txn.ID, got[0].ID)
	assert.Equal(t, "GitHub", got[0].MerchantNormalized)
	assert.Equal(t, cat.ID, got[0].CategoryID)
	assert.Equal(t, model.MethodRule, got[0].CategorizationMethod)
	assert.Equal(t, "1.00", got[0].Confidence.StringFixed(2))
	assert.Equal(t, model.SourceImport, got[0].Source)
	assert.False(t, got[0].IsReviewed)
	require.NotNil(t, got[0].PostedDate)
	assert.True(t, got[0].PostedDate.Equal(posted))
	assert.Empty(t, got[0].ImportID)

	got, err = s.FindByDateAndAmount(ctx, a.ID, date(2025, 1, 3), dec("4.01"))
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := s.TransactionsForAccount(ctx, a.ID, user)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRulesAndMappings(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cat, err := s.CreateCategory(ctx, model.Category{UserID: user, Name: "Transport", Kind: model.CategoryKindExpense})
	require.NoError(t, err)

	late, err := s.CreateRule(ctx, model.Rule{UserID: user, CategoryID: cat.ID, Priority: 20,
		Predicate: model.DescriptionPattern{Pattern: "uber"}, MaxAmount: decp("150")})
	require.NoError(t, err)
	early, err := s.CreateRule(ctx, model.Rule{UserID: user, CategoryID: cat.ID, Priority: 10,
		Predicate: model.MerchantExact{Merchant: "Lyft"}})
	require.NoError(t, err)

	got, err := s.RulesForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, model.MerchantExact{Merchant: "Lyft"}, got[0].Predicate)
	assert.Nil(t, got[0].MinAmount)
	assert.Equal(t, late.ID, got[1].ID)
	assert.Equal(t, model.DescriptionPattern{Pattern: "uber"}, got[1].Predicate)
	require.NotNil(t, got[1].MaxAmount)
	assert.Equal(t, "150.00", got[1].MaxAmount.StringFixed(2))

	require.NoError(t, s.IncrementApplied(ctx, late.ID, user))
	got, err = s.RulesForUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, got[1].TimesApplied)
	assert.ErrorIs(t, s.IncrementApplied(ctx, "rul_missing", user), store.ErrNotFound)

	_, err = s.CreateMapping(ctx, model.MerchantMapping{OriginalName: "UBER *TRIP", NormalizedName: "Uber"})
	require.NoError(t, err)
	_, err = s.CreateMapping(ctx, model.MerchantMapping{UserID: user, OriginalName: "UBER *TRIP", NormalizedName: "Uber Rides"})
	require.NoError(t, err)
	maps, err := s.MappingsForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, maps, 2)
	assert.Equal(t, "Uber Rides", maps[0].NormalizedName)
	assert.Equal(t, "Uber", maps[1].NormalizedName)

	cats, err := s.CategoriesForUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}
