package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportStatus represents the lifecycle state of an import.
type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportPartial    ImportStatus = "partial"
	ImportFailed     ImportStatus = "failed"
)

// Terminal reports whether s is a final status.
func (s ImportStatus) Terminal() bool {
	return s == ImportCompleted || s == ImportPartial || s == ImportFailed
}

// StatusFromCounts derives the final import status from the row total and
// the number of failed rows.
func StatusFromCounts(total, failed int) ImportStatus {
	switch {
	case failed == 0:
		return ImportCompleted
	case failed >= total:
		return ImportFailed
	default:
		return ImportPartial
	}
}

// ImportRecord tracks one statement-ingestion attempt.
type ImportRecord struct {
	ID             string
	UserID         string
	AccountID      string
	FileName       string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	Imported       int
	Duplicates     int
	Failed         int
	Status         ImportStatus
	CreatedAt      time.Time
	CompletedAt    *time.Time
}
