package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// CreateParams describes a new import record.
type CreateParams struct {
	UserID         string
	AccountID      string
	FileName       string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
}

// Creator opens import records for processing.
type Creator struct {
	imports  ImportCreator
	accounts AccountFinder
}

// NewCreator creates a Creator.
func NewCreator(imports ImportCreator, accounts AccountFinder) *Creator {
	return &Creator{imports: imports, accounts: accounts}
}

// Create verifies the target account and stores a new import record in the
// processing state.
func (c *Creator) Create(ctx context.Context, params CreateParams) (model.ImportRecord, error) {
	if params.AccountID == "" {
		return model.ImportRecord{}, &ValidationError{Problems: []Problem{{Row: -1, Field: "accountId", Message: "is required"}}}
	}
	if params.PeriodStart != nil && params.PeriodEnd != nil && params.PeriodStart.After(*params.PeriodEnd) {
		return model.ImportRecord{}, invalid(fmt.Sprintf("statement period start %s is after end %s",
			params.PeriodStart.Format(model.DateFormat), params.PeriodEnd.Format(model.DateFormat)))
	}
	if _, err := c.accounts.FindAccount(ctx, params.AccountID, params.UserID); err != nil {
		return model.ImportRecord{}, notFound("account", params.AccountID, err)
	}

	rec, err := c.imports.CreateImport(ctx, model.ImportRecord{
		UserID:         params.UserID,
		AccountID:      params.AccountID,
		FileName:       params.FileName,
		PeriodStart:    params.PeriodStart,
		PeriodEnd:      params.PeriodEnd,
		OpeningBalance: params.OpeningBalance,
		ClosingBalance: params.ClosingBalance,
		Status:         model.ImportProcessing,
	})
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("creating import: %w", err)
	}
	return rec, nil
}
