// Package sqlite is the on-disk ledger store, backed by modernc.org/sqlite.
//
// Money is stored as TEXT rounded to two decimals and round-trips through
// shopspring/decimal. Dates are stored as YYYY-MM-DD and timestamps as RFC 3339.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	// Register the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/rudivdz85/nautical-fin/internal/id"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

// Store is a SQLite-backed ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers, which keeps AdjustBalance's
	// read-modify-write atomic within the process.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting migration: %w", err)
	}
	defer tx.Rollback()

	for _, q := range schema {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return tx.Commit()
}

// CreateAccount stores a, assigning an ID if it has none.
func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.ID == "" {
		a.ID = id.New(id.Account)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, type, currency, balance) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), a.Currency, a.Balance.StringFixed(2))
	if err != nil {
		return model.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	return a, nil
}

// FindAccount returns the user's account.
func (s *Store) FindAccount(ctx context.Context, accountID, userID string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, currency, balance FROM accounts WHERE id = ? AND user_id = ?`,
		accountID, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	return a, nil
}

// AccountsForUser returns the user's accounts by name.
func (s *Store) AccountsForUser(ctx context.Context, userID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, currency, balance FROM accounts WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdjustBalance adds delta to the account balance in one transaction.
func (s *Store) AdjustBalance(ctx context.Context, accountID, userID string, delta decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting balance update: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ? AND user_id = ?`, accountID, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}
	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parsing balance %q: %w", raw, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ? AND user_id = ?`,
		bal.Add(delta).StringFixed(2), accountID, userID); err != nil {
		return fmt.Errorf("writing balance: %w", err)
	}
	return tx.Commit()
}

// CreateCategory stores c.
func (s *Store) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if c.ID == "" {
		c.ID = id.New(id.Category)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, user_id, name, kind) VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Kind))
	if err != nil {
		return model.Category{}, fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return c, nil
}

// CategoriesForUser returns the user's categories by name.
func (s *Store) CategoriesForUser(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, name, kind FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		var kind string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = model.CategoryKind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var a model.Account
	var typ, bal string
	if err := sc.Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Currency, &bal); err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)
	d, err := decimal.NewFromString(bal)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", bal, err)
	}
	a.Balance = d
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.StringFixed(2), Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateFormat), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", ns.String, err)
	}
	return &d, nil
}

func parseNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(model.DateFormat, ns.String)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", ns.String, err)
	}
	return &t, nil
}
