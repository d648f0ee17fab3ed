package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/dedup"
	"github.com/rudivdz85/nautical-fin/internal/merchant"
	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/reconcile"
	"github.com/rudivdz85/nautical-fin/internal/rules"
	"github.com/rudivdz85/nautical-fin/internal/store"
)

var ruleConfidence = decimal.NewFromInt(1)

// Processor commits a statement's candidate rows into the ledger.
//
// Rows are handled one at a time in input order: later duplicate checks and
// the running balance depend on earlier rows. There is no batch-wide
// transaction. A row that fails is counted and skipped, and rows committed
// before it stay committed.
type Processor struct {
	stores Stores
	dedup  *dedup.Detector
	log    zerolog.Logger
	now    func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(s Stores, log zerolog.Logger) *Processor {
	return &Processor{
		stores: s,
		dedup:  dedup.NewDetector(s.Transactions),
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// batch is the per-call state shared by every row.
type batch struct {
	rec      model.ImportRecord
	engine   *rules.Engine
	mappings []model.MerchantMapping
	log      zerolog.Logger
}

// Process runs rows through the import pipeline and finalizes the import.
//
// It fails without touching any row when rows is empty, the import or its
// account does not exist for userID, or the import is no longer processing.
// Per-row failures are reported only through the counters.
func (p *Processor) Process(ctx context.Context, importID, userID string, rows []model.CandidateRow) (*Result, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Problems: []Problem{{Row: -1, Field: "transactions", Message: "at least one transaction is required"}}}
	}

	rec, err := p.stores.Imports.FindImport(ctx, importID, userID)
	if err != nil {
		return nil, notFound("import", importID, err)
	}
	if rec.Status != model.ImportProcessing {
		return nil, &ValidationError{Err: fmt.Errorf("import %s is %s: %w", importID, rec.Status, ErrAlreadyProcessed)}
	}
	if _, err := p.stores.Accounts.FindAccount(ctx, rec.AccountID, userID); err != nil {
		return nil, notFound("account", rec.AccountID, err)
	}

	ruleSet, err := p.stores.Rules.RulesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	mappings, err := p.stores.Merchants.MappingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading merchant mappings: %w", err)
	}

	if err := p.stores.Imports.ClaimImport(ctx, importID, userID); err != nil {
		if errors.Is(err, store.ErrNotClaimable) {
			return nil, &ValidationError{Err: fmt.Errorf("import %s: %w", importID, ErrAlreadyProcessed)}
		}
		return nil, fmt.Errorf("claiming import %s: %w", importID, err)
	}

	b := batch{
		rec:      rec,
		engine:   rules.NewEngine(ruleSet),
		mappings: mappings,
		log:      p.log.With().Str("import_id", importID).Str("account_id", rec.AccountID).Logger(),
	}

	b.log.Debug().Int("rules", b.engine.Len()).Int("mappings", len(mappings)).Int("rows", len(rows)).Msg("import claimed")

	res := &Result{Rows: make([]RowOutcome, 0, len(rows))}
	var effects []decimal.Decimal
	for i, row := range rows {
		out := p.processRow(ctx, b, i, row)
		switch out.Outcome {
		case OutcomeImported:
			res.Imported++
			effects = append(effects, out.effect)
		case OutcomeDuplicate:
			res.Duplicates++
		default:
			res.Failed++
		}
		res.Rows = append(res.Rows, out)
	}

	status := model.StatusFromCounts(len(rows), res.Failed)
	final, err := p.stores.Imports.UpdateImport(ctx, importID, userID, store.ImportUpdate{
		Status:      status,
		Imported:    res.Imported,
		Duplicates:  res.Duplicates,
		Failed:      res.Failed,
		CompletedAt: p.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("finalizing import %s: %w", importID, err)
	}
	res.Import = final
	res.BalanceCheck = reconcile.Reconcile(rec.OpeningBalance, rec.ClosingBalance, effects)

	ev := b.log.Info().
		Str("status", string(status)).
		Int("imported", res.Imported).
		Int("duplicates", res.Duplicates).
		Int("failed", res.Failed)
	if res.BalanceCheck != nil {
		ev = ev.Bool("reconciled", res.BalanceCheck.IsReconciled).
			Str("difference", res.BalanceCheck.Difference.StringFixed(2))
	}
	ev.Msg("import processed")

	return res, nil
}

// processRow runs one row through duplicate check, merchant resolution,
// rule matching, persistence and balance adjustment.
func (p *Processor) processRow(ctx context.Context, b batch, i int, row model.CandidateRow) RowOutcome {
	out := RowOutcome{Index: i}
	log := b.log.With().Int("row", i).Logger()

	dup, err := p.dedup.IsDuplicate(ctx, b.rec.AccountID, row)
	if err != nil {
		return p.fail(log, out, "duplicate check", err)
	}
	if dup {
		out.Outcome = OutcomeDuplicate
		log.Debug().Msg("duplicate row skipped")
		return out
	}

	normalized := merchant.Resolve(row.MerchantOriginal, b.mappings)
	rule, matched := b.engine.Match(normalized, row.Description, row.Amount)

	txn := model.LedgerTransaction{
		UserID:             b.rec.UserID,
		AccountID:          b.rec.AccountID,
		ImportID:           b.rec.ID,
		TransactionDate:    row.TransactionDate,
		PostedDate:         row.PostedDate,
		Amount:             row.Amount,
		Type:               row.Type,
		Description:        row.Description,
		MerchantOriginal:   row.MerchantOriginal,
		MerchantNormalized: normalized,
		ExternalID:         row.ExternalID,
		Source:             model.SourceImport,
		IsReviewed:         false,
	}
	if matched {
		txn.CategoryID = rule.CategoryID
		txn.CategorizationMethod = model.MethodRule
		txn.Confidence = ruleConfidence
		out.RuleID = rule.ID
	}

	created, err := p.stores.Transactions.CreateTransaction(ctx, txn)
	if err != nil {
		return p.fail(log, out, "creating transaction", err)
	}
	out.TransactionID = created.ID

	effect := row.SignedAmount()
	if err := p.stores.Accounts.AdjustBalance(ctx, b.rec.AccountID, b.rec.UserID, effect); err != nil {
		return p.fail(log, out, "adjusting balance", err)
	}

	if matched {
		if err := p.stores.Rules.IncrementApplied(ctx, rule.ID, b.rec.UserID); err != nil {
			log.Warn().Err(err).Str("rule_id", rule.ID).Msg("recording rule usage")
		}
	}

	out.Outcome = OutcomeImported
	out.effect = effect
	log.Debug().Str("transaction_id", created.ID).Str("rule_id", out.RuleID).Msg("row imported")
	return out
}

func (p *Processor) fail(log zerolog.Logger, out RowOutcome, step string, err error) RowOutcome {
	out.Outcome = OutcomeFailed
	out.Reason = fmt.Sprintf("%s: %v", step, err)
	log.Warn().Err(err).Str("step", step).Msg("row failed")
	return out
}

func notFound(entity, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("loading %s %s: %w", entity, id, err)
}
