// Package importlog keeps an append-only CSV record of per-row import
// outcomes.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rudivdz85/nautical-fin/internal/importer"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp     time.Time
	ImportID      string
	Row           int
	Outcome       importer.Outcome
	TransactionID string
	RuleID        string
	Reason        string
}

// Header is the CSV header of the import log.
const Header = "timestamp,import_id,row,outcome,transaction_id,rule_id,reason"

const (
	numFields   = 7
	colTime     = 0
	colImportID = 1
	colRow      = 2
	colOutcome  = 3
	colTxnID    = 4
	colRuleID   = 5
	colReason   = 6
)

// FromResult converts the row outcomes of a processed import to log entries.
func FromResult(ts time.Time, importID string, rows []importer.RowOutcome) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Timestamp:     ts,
			ImportID:      importID,
			Row:           r.Index,
			Outcome:       r.Outcome,
			TransactionID: r.TransactionID,
			RuleID:        r.RuleID,
			Reason:        r.Reason,
		})
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colImportID] = e.ImportID
	row[colRow] = strconv.Itoa(e.Row)
	row[colOutcome] = string(e.Outcome)
	row[colTxnID] = e.TransactionID
	row[colRuleID] = e.RuleID
	row[colReason] = e.Reason
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	return Entry{
		Timestamp:     ts,
		ImportID:      record[colImportID],
		Row:           row,
		Outcome:       importer.Outcome(record[colOutcome]),
		TransactionID: record[colTxnID],
		RuleID:        record[colRuleID],
		Reason:        record[colReason],
	}, nil
}

// Append writes entries to the log at path, creating the file and header if
// needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in the log at path, or nil if the file does not
// exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// ForImport returns the entries in the log at path for one import.
func ForImport(path, importID string) ([]Entry, error) {
	all, err := Read(path)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.ImportID == importID {
			out = append(out, e)
		}
	}
	return out, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
