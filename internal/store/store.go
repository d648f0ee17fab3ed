// Package store holds the errors and parameter types shared by ledger store
// implementations.
package store

import (
	"errors"
	"time"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrNotClaimable is returned by ClaimImport when the import is no
	// longer processing or has already been claimed.
	ErrNotClaimable = errors.New("import not claimable")
)

// ImportUpdate holds the final outcome written back to an import record.
type ImportUpdate struct {
	Status      model.ImportStatus
	Imported    int
	Duplicates  int
	Failed      int
	CompletedAt time.Time
}
