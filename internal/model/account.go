package model

import "github.com/shopspring/decimal"

// AccountType classifies ledger accounts.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeCash       AccountType = "cash"
)

// Account is a user's bank-backed ledger account.
type Account struct {
	ID       string
	UserID   string
	Name     string
	Type     AccountType
	Currency string
	Balance  decimal.Decimal // running balance, adjusted additively
}

// CategoryKind classifies categories.
type CategoryKind string

const (
	CategoryKindExpense  CategoryKind = "expense"
	CategoryKindIncome   CategoryKind = "income"
	CategoryKindTransfer CategoryKind = "transfer"
)

// Category is a target for categorization rules.
type Category struct {
	ID     string
	UserID string
	Name   string
	Kind   CategoryKind
}

// MerchantMapping maps a raw merchant string to a user-chosen name.
// An empty UserID marks a global mapping.
type MerchantMapping struct {
	ID             string
	UserID         string
	OriginalName   string
	NormalizedName string
}
