// Package categories holds the category set a new ledger starts with.
package categories

import "github.com/rudivdz85/nautical-fin/internal/model"

// Defaults returns the starter categories for userID. IDs are left empty for
// the store to assign.
func Defaults(userID string) []model.Category {
	defs := []struct {
		name string
		kind model.CategoryKind
	}{
		{"Groceries", model.CategoryKindExpense},
		{"Dining", model.CategoryKindExpense},
		{"Transport", model.CategoryKindExpense},
		{"Utilities", model.CategoryKindExpense},
		{"Rent", model.CategoryKindExpense},
		{"Subscriptions", model.CategoryKindExpense},
		{"Healthcare", model.CategoryKindExpense},
		{"Shopping", model.CategoryKindExpense},
		{"Salary", model.CategoryKindIncome},
		{"Interest", model.CategoryKindIncome},
		{"Transfers", model.CategoryKindTransfer},
	}
	out := make([]model.Category, 0, len(defs))
	for _, d := range defs {
		out = append(out, model.Category{UserID: userID, Name: d.name, Kind: d.kind})
	}
	return out
}

// ByName indexes cats by name.
func ByName(cats []model.Category) map[string]model.Category {
	m := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		m[c.Name] = c
	}
	return m
}
