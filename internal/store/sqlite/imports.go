package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rudivdz85/nautical-fin/internal/id"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

const importColumns = `id, user_id, account_id, file_name, period_start, period_end, opening_balance, closing_balance,
	imported_count, duplicate_count, failed_count, status, created_at, completed_at`

// CreateImport stores rec in the processing state.
func (s *Store) CreateImport(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error) {
	if rec.ID == "" {
		rec.ID = id.New(id.Import)
	}
	rec.Status = model.ImportProcessing
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO imports (`+importColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.AccountID, rec.FileName,
		nullDate(rec.PeriodStart), nullDate(rec.PeriodEnd),
		nullDecimal(rec.OpeningBalance), nullDecimal(rec.ClosingBalance),
		rec.Imported, rec.Duplicates, rec.Failed, string(rec.Status),
		rec.CreatedAt.UTC().Format(time.RFC3339), nullTime(rec.CompletedAt))
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("inserting import: %w", err)
	}
	return rec, nil
}

// FindImport returns the user's import record.
func (s *Store) FindImport(ctx context.Context, importID, userID string) (model.ImportRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+importColumns+` FROM imports WHERE id = ? AND user_id = ?`, importID, userID)
	rec, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("loading import %s: %w", importID, err)
	}
	return rec, nil
}

// ImportsForUser returns the user's imports, newest first.
func (s *Store) ImportsForUser(ctx context.Context, userID string) ([]model.ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+importColumns+` FROM imports WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []model.ImportRecord
	for rows.Next() {
		rec, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ClaimImport marks a processing import as taken with a single conditional
// update, so at most one concurrent caller succeeds.
func (s *Store) ClaimImport(ctx context.Context, importID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE imports SET claimed_at = ?
		 WHERE id = ? AND user_id = ? AND status = ? AND claimed_at IS NULL`,
		s.now().Format(time.RFC3339), importID, userID, string(model.ImportProcessing))
	if err != nil {
		return fmt.Errorf("claiming import %s: %w", importID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claiming import %s: %w", importID, err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM imports WHERE id = ? AND user_id = ?`, importID, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("claiming import %s: %w", importID, err)
	}
	return fmt.Errorf("import %s: %w", importID, store.ErrNotClaimable)
}

// UpdateImport writes the final status and counters.
func (s *Store) UpdateImport(ctx context.Context, importID, userID string, u store.ImportUpdate) (model.ImportRecord, error) {
	var completed sql.NullString
	if !u.CompletedAt.IsZero() {
		completed = sql.NullString{String: u.CompletedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE imports SET status = ?, imported_count = ?, duplicate_count = ?, failed_count = ?, completed_at = ?
		 WHERE id = ? AND user_id = ?`,
		string(u.Status), u.Imported, u.Duplicates, u.Failed, completed, importID, userID)
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("updating import %s: %w", importID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	return s.FindImport(ctx, importID, userID)
}

func scanImport(sc scanner) (model.ImportRecord, error) {
	var rec model.ImportRecord
	var periodStart, periodEnd, opening, closing, completed sql.NullString
	var status, created string
	if err := sc.Scan(&rec.ID, &rec.UserID, &rec.AccountID, &rec.FileName,
		&periodStart, &periodEnd, &opening, &closing,
		&rec.Imported, &rec.Duplicates, &rec.Failed, &status, &created, &completed); err != nil {
		return model.ImportRecord{}, err
	}
	rec.Status = model.ImportStatus(status)

	var err error
	if rec.PeriodStart, err = parseNullDate(periodStart); err != nil {
		return model.ImportRecord{}, err
	}
	if rec.PeriodEnd, err = parseNullDate(periodEnd); err != nil {
		return model.ImportRecord{}, err
	}
	if rec.OpeningBalance, err = parseNullDecimal(opening); err != nil {
		return model.ImportRecord{}, err
	}
	if rec.ClosingBalance, err = parseNullDecimal(closing); err != nil {
		return model.ImportRecord{}, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return model.ImportRecord{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	if completed.Valid {
		t, err := time.Parse(time.RFC3339, completed.String)
		if err != nil {
			return model.ImportRecord{}, fmt.Errorf("parsing completed_at %q: %w", completed.String, err)
		}
		rec.CompletedAt = &t
	}
	return rec, nil
}
