package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is the prefix that identifies what an ID refers to.
type Kind string

const (
	Import      Kind = "imp"
	Transaction Kind = "txn"
	Account     Kind = "acc"
	Rule        Kind = "rul"
	Mapping     Kind = "map"
	Category    Kind = "cat"
)

// New returns a fresh ID like "imp_5f0c...".
func New(k Kind) string {
	return Format(k, uuid.New())
}

// Format returns the ID for kind k and UUID u.
func Format(k Kind, u uuid.UUID) string {
	return string(k) + "_" + u.String()
}

// Parse splits "imp_5f0c..." into its kind and UUID.
func Parse(s string) (Kind, uuid.UUID, error) {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return "", uuid.Nil, fmt.Errorf("invalid ID format: %q", s)
	}
	u, err := uuid.Parse(rest)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("invalid UUID in ID %q: %w", s, err)
	}
	return Kind(prefix), u, nil
}

// Is reports whether s is a well-formed ID of kind k.
func Is(k Kind, s string) bool {
	got, _, err := Parse(s)
	return err == nil && got == k
}
