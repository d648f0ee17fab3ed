package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyProcessed is wrapped by the ValidationError returned when an
// import is no longer in the processing state.
var ErrAlreadyProcessed = errors.New("import already processed")

// NotFoundError reports a missing import record or account.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Problem is a single field-level validation failure. Row is -1 when the
// problem is not tied to one row.
type Problem struct {
	Row     int
	Field   string
	Message string
}

func (p Problem) String() string {
	if p.Row < 0 {
		if p.Field == "" {
			return p.Message
		}
		return fmt.Sprintf("%s: %s", p.Field, p.Message)
	}
	return fmt.Sprintf("transactions[%d].%s: %s", p.Row, p.Field, p.Message)
}

// ValidationError reports input that cannot be processed. No row is touched
// when it is returned.
type ValidationError struct {
	Problems []Problem
	Err      error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems)+1)
	if e.Err != nil {
		msgs = append(msgs, e.Err.Error())
	}
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(msg string) *ValidationError {
	return &ValidationError{Problems: []Problem{{Row: -1, Message: msg}}}
}
