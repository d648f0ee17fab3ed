// Package memory is an in-process ledger store. It backs tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/id"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/rules"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

// Store keeps every collection in memory behind one mutex.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]model.Account
	imports      map[string]model.ImportRecord
	claimed      map[string]bool
	transactions []model.LedgerTransaction
	rules        []model.Rule
	mappings     []model.MerchantMapping
	categories   []model.Category
	now          func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[string]model.Account),
		imports:  make(map[string]model.ImportRecord),
		claimed:  make(map[string]bool),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount stores a, assigning an ID if it has none.
func (s *Store) CreateAccount(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = id.New(id.Account)
	}
	if _, ok := s.accounts[a.ID]; ok {
		return model.Account{}, fmt.Errorf("account %s already exists", a.ID)
	}
	s.accounts[a.ID] = a
	return a, nil
}

// FindAccount returns the user's account.
func (s *Store) FindAccount(_ context.Context, accountID, userID string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return model.Account{}, fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}
	return a, nil
}

// AdjustBalance adds delta to the account balance.
func (s *Store) AdjustBalance(_ context.Context, accountID, userID string, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	s.accounts[accountID] = a
	return nil
}

// CreateImport stores rec in the processing state.
func (s *Store) CreateImport(_ context.Context, rec model.ImportRecord) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = id.New(id.Import)
	}
	if _, ok := s.imports[rec.ID]; ok {
		return model.ImportRecord{}, fmt.Errorf("import %s already exists", rec.ID)
	}
	rec.Status = model.ImportProcessing
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.imports[rec.ID] = rec
	return rec, nil
}

// FindImport returns the user's import record.
func (s *Store) FindImport(_ context.Context, importID, userID string) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.imports[importID]
	if !ok || rec.UserID != userID {
		return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	return rec, nil
}

// ClaimImport marks a processing import as taken. Only the first claim on a
// processing record succeeds.
func (s *Store) ClaimImport(_ context.Context, importID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.imports[importID]
	if !ok || rec.UserID != userID {
		return fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	if rec.Status != model.ImportProcessing || s.claimed[importID] {
		return fmt.Errorf("import %s: %w", importID, store.ErrNotClaimable)
	}
	s.claimed[importID] = true
	return nil
}

// UpdateImport writes the final status and counters.
func (s *Store) UpdateImport(_ context.Context, importID, userID string, u store.ImportUpdate) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.imports[importID]
	if !ok || rec.UserID != userID {
		return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	rec.Status = u.Status
	rec.Imported = u.Imported
	rec.Duplicates = u.Duplicates
	rec.Failed = u.Failed
	if !u.CompletedAt.IsZero() {
		completed := u.CompletedAt
		rec.CompletedAt = &completed
	}
	s.imports[importID] = rec
	return rec, nil
}

// CreateTransaction appends t to the ledger.
func (s *Store) CreateTransaction(_ context.Context, t model.LedgerTransaction) (model.LedgerTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = id.New(id.Transaction)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	s.transactions = append(s.transactions, t)
	return t, nil
}

// FindByDateAndAmount returns the account's transactions on date with the
// given unsigned amount.
func (s *Store) FindByDateAndAmount(_ context.Context, accountID string, date time.Time, amount decimal.Decimal) ([]model.LedgerTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerTransaction
	for _, t := range s.transactions {
		if t.AccountID == accountID && sameDay(t.TransactionDate, date) && t.Amount.Equal(amount) {
			out = append(out, t)
		}
	}
	return out, nil
}

// TransactionsForAccount returns the account's transactions in insertion order.
func (s *Store) TransactionsForAccount(_ context.Context, accountID, userID string) ([]model.LedgerTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerTransaction
	for _, t := range s.transactions {
		if t.AccountID == accountID && t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateRule stores r.
func (s *Store) CreateRule(_ context.Context, r model.Rule) (model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Predicate == nil {
		return model.Rule{}, fmt.Errorf("rule %q has no predicate", r.Name)
	}
	if r.ID == "" {
		r.ID = id.New(id.Rule)
	}
	s.rules = append(s.rules, r)
	return r, nil
}

// RulesForUser returns the user's rules sorted by ascending priority.
func (s *Store) RulesForUser(_ context.Context, userID string) ([]model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Rule
	for _, r := range s.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	rules.SortByPriority(out)
	return out, nil
}

// IncrementApplied bumps the rule's usage counter.
func (s *Store) IncrementApplied(_ context.Context, ruleID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == ruleID && s.rules[i].UserID == userID {
			s.rules[i].TimesApplied++
			return nil
		}
	}
	return fmt.Errorf("rule %s: %w", ruleID, store.ErrNotFound)
}

// CreateMapping stores m. An empty UserID makes it global.
func (s *Store) CreateMapping(_ context.Context, m model.MerchantMapping) (model.MerchantMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = id.New(id.Mapping)
	}
	s.mappings = append(s.mappings, m)
	return m, nil
}

// MappingsForUser returns the user's mappings followed by global ones.
func (s *Store) MappingsForUser(_ context.Context, userID string) ([]model.MerchantMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var own, global []model.MerchantMapping
	for _, m := range s.mappings {
		switch m.UserID {
		case userID:
			own = append(own, m)
		case "":
			global = append(global, m)
		}
	}
	return append(own, global...), nil
}

// CreateCategory stores c.
func (s *Store) CreateCategory(_ context.Context, c model.Category) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = id.New(id.Category)
	}
	s.categories = append(s.categories, c)
	return c, nil
}

// CategoriesForUser returns the user's categories.
func (s *Store) CategoriesForUser(_ context.Context, userID string) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(model.DateFormat) == b.Format(model.DateFormat)
}
