package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/id"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

const transactionColumns = `id, user_id, account_id, import_id, transaction_date, posted_date, amount, type, description,
	merchant_original, merchant_normalized, category_id, categorization_method, confidence, external_id,
	source, is_reviewed, created_at`

// CreateTransaction inserts t.
func (s *Store) CreateTransaction(ctx context.Context, t model.LedgerTransaction) (model.LedgerTransaction, error) {
	if t.ID == "" {
		t.ID = id.New(id.Transaction)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	var confidence string
	if !t.Confidence.IsZero() {
		confidence = t.Confidence.StringFixed(2)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, nullString(t.ImportID),
		t.TransactionDate.Format(model.DateFormat), nullDate(t.PostedDate),
		t.Amount.StringFixed(2), string(t.Type), t.Description,
		t.MerchantOriginal, t.MerchantNormalized, nullString(t.CategoryID),
		string(t.CategorizationMethod), confidence, t.ExternalID,
		string(t.Source), t.IsReviewed, t.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	return t, nil
}

// FindByDateAndAmount returns the account's transactions on date with the
// given unsigned amount.
func (s *Store) FindByDateAndAmount(ctx context.Context, accountID string, date time.Time, amount decimal.Decimal) ([]model.LedgerTransaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND transaction_date = ? AND amount = ? ORDER BY rowid`,
		accountID, date.Format(model.DateFormat), amount.Abs().StringFixed(2))
}

// TransactionsForAccount returns the account's transactions by date.
func (s *Store) TransactionsForAccount(ctx context.Context, accountID, userID string) ([]model.LedgerTransaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND user_id = ? ORDER BY transaction_date, rowid`,
		accountID, userID)
}

func (s *Store) queryTransactions(ctx context.Context, q string, args ...any) ([]model.LedgerTransaction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.LedgerTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(sc scanner) (model.LedgerTransaction, error) {
	var t model.LedgerTransaction
	var importID, posted, categoryID sql.NullString
	var txnDate, amount, typ, method, confidence, source, created string
	if err := sc.Scan(&t.ID, &t.UserID, &t.AccountID, &importID, &txnDate, &posted, &amount, &typ, &t.Description,
		&t.MerchantOriginal, &t.MerchantNormalized, &categoryID, &method, &confidence, &t.ExternalID,
		&source, &t.IsReviewed, &created); err != nil {
		return model.LedgerTransaction{}, err
	}
	t.ImportID = importID.String
	t.CategoryID = categoryID.String
	t.Type = model.Direction(typ)
	t.CategorizationMethod = model.CategorizationMethod(method)
	t.Source = model.Source(source)

	var err error
	if t.TransactionDate, err = time.Parse(model.DateFormat, txnDate); err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing transaction_date %q: %w", txnDate, err)
	}
	if t.PostedDate, err = parseNullDate(posted); err != nil {
		return model.LedgerTransaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if confidence != "" {
		if t.Confidence, err = decimal.NewFromString(confidence); err != nil {
			return model.LedgerTransaction{}, fmt.Errorf("parsing confidence %q: %w", confidence, err)
		}
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	return t, nil
}

// CreateRule stores r.
func (s *Store) CreateRule(ctx context.Context, r model.Rule) (model.Rule, error) {
	if r.Predicate == nil {
		return model.Rule{}, fmt.Errorf("rule %q has no predicate", r.Name)
	}
	if r.ID == "" {
		r.ID = id.New(id.Rule)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (id, user_id, name, category_id, kind, value, min_amount, max_amount, priority, times_applied)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Name, r.CategoryID, string(r.Predicate.Kind()), r.Predicate.Value(),
		nullDecimal(r.MinAmount), nullDecimal(r.MaxAmount), r.Priority, r.TimesApplied)
	if err != nil {
		return model.Rule{}, fmt.Errorf("inserting rule: %w", err)
	}
	return r, nil
}

// RulesForUser returns the user's rules sorted by ascending priority, then
// insertion order.
func (s *Store) RulesForUser(ctx context.Context, userID string) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, category_id, kind, value, min_amount, max_amount, priority, times_applied
		 FROM rules WHERE user_id = ? ORDER BY priority, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []model.Rule
	for rows.Next() {
		var r model.Rule
		var kind, value string
		var minAmt, maxAmt sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.CategoryID, &kind, &value, &minAmt, &maxAmt, &r.Priority, &r.TimesApplied); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Predicate = model.NewPredicate(model.PredicateKind(kind), value)
		if r.Predicate == nil {
			return nil, fmt.Errorf("rule %s: unknown kind %q", r.ID, kind)
		}
		if r.MinAmount, err = parseNullDecimal(minAmt); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.MaxAmount, err = parseNullDecimal(maxAmt); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IncrementApplied bumps the rule's usage counter.
func (s *Store) IncrementApplied(ctx context.Context, ruleID, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rules SET times_applied = times_applied + 1 WHERE id = ? AND user_id = ?`, ruleID, userID)
	if err != nil {
		return fmt.Errorf("incrementing rule %s: %w", ruleID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rule %s: %w", ruleID, store.ErrNotFound)
	}
	return nil
}

// CreateMapping stores m. An empty UserID makes it global.
func (s *Store) CreateMapping(ctx context.Context, m model.MerchantMapping) (model.MerchantMapping, error) {
	if m.ID == "" {
		m.ID = id.New(id.Mapping)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO merchant_mappings (id, user_id, original_name, normalized_name) VALUES (?, ?, ?, ?)`,
		m.ID, m.UserID, m.OriginalName, m.NormalizedName)
	if err != nil {
		return model.MerchantMapping{}, fmt.Errorf("inserting merchant mapping: %w", err)
	}
	return m, nil
}

// MappingsForUser returns the user's mappings followed by global ones.
func (s *Store) MappingsForUser(ctx context.Context, userID string) ([]model.MerchantMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, original_name, normalized_name FROM merchant_mappings
		 WHERE user_id = ? OR user_id = '' ORDER BY user_id = '', rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("query merchant mappings: %w", err)
	}
	defer rows.Close()

	var out []model.MerchantMapping
	for rows.Next() {
		var m model.MerchantMapping
		if err := rows.Scan(&m.ID, &m.UserID, &m.OriginalName, &m.NormalizedName); err != nil {
			return nil, fmt.Errorf("scan merchant mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
