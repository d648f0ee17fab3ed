package importer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/dedup"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

// ImportStore loads and advances import records. It does not enforce
// the processing-only precondition itself.
type ImportStore interface {
	FindImport(ctx context.Context, importID, userID string) (model.ImportRecord, error)
	// ClaimImport atomically admits one processing run. It returns
	// store.ErrNotClaimable when the record is not processing or was
	// already claimed.
	ClaimImport(ctx context.Context, importID, userID string) error
	UpdateImport(ctx context.Context, importID, userID string, u store.ImportUpdate) (model.ImportRecord, error)
}

// ImportCreator creates import records.
type ImportCreator interface {
	CreateImport(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error)
}

// AccountFinder loads accounts.
type AccountFinder interface {
	FindAccount(ctx context.Context, accountID, userID string) (model.Account, error)
}

// AccountStore loads accounts and applies additive balance changes.
type AccountStore interface {
	AccountFinder
	AdjustBalance(ctx context.Context, accountID, userID string, delta decimal.Decimal) error
}

// TransactionStore finds and creates ledger transactions.
type TransactionStore interface {
	dedup.TransactionFinder
	CreateTransaction(ctx context.Context, t model.LedgerTransaction) (model.LedgerTransaction, error)
}

// RuleStore returns a user's rules sorted by ascending priority and
// records rule usage.
type RuleStore interface {
	RulesForUser(ctx context.Context, userID string) ([]model.Rule, error)
	IncrementApplied(ctx context.Context, ruleID, userID string) error
}

// MerchantStore returns the merchant mappings visible to a user.
type MerchantStore interface {
	MappingsForUser(ctx context.Context, userID string) ([]model.MerchantMapping, error)
}

// Stores groups the collaborators of a Processor.
type Stores struct {
	Imports      ImportStore
	Accounts     AccountStore
	Transactions TransactionStore
	Rules        RuleStore
	Merchants    MerchantStore
}

// Ledger is implemented by stores that cover every collaborator.
type Ledger interface {
	ImportStore
	AccountStore
	TransactionStore
	RuleStore
	MerchantStore
}

// StoresFrom uses l for every collaborator.
func StoresFrom(l Ledger) Stores {
	return Stores{Imports: l, Accounts: l, Transactions: l, Rules: l, Merchants: l}
}
