package model

import "github.com/shopspring/decimal"

// PredicateKind names a rule predicate variant.
type PredicateKind string

const (
	KindMerchantExact      PredicateKind = "merchant_exact"
	KindMerchantPattern    PredicateKind = "merchant_pattern"
	KindDescriptionPattern PredicateKind = "description_pattern"
)

// Predicate is the matching condition of a rule. The set of variants is
// closed: MerchantExact, MerchantPattern and DescriptionPattern.
type Predicate interface {
	Kind() PredicateKind
	Value() string
	isPredicate()
}

// MerchantExact matches the normalized merchant name, case-insensitively.
type MerchantExact struct{ Merchant string }

// MerchantPattern matches a regular expression against the normalized
// merchant name, case-insensitively.
type MerchantPattern struct{ Pattern string }

// DescriptionPattern matches a regular expression against the raw
// description, case-insensitively.
type DescriptionPattern struct{ Pattern string }

func (MerchantExact) Kind() PredicateKind      { return KindMerchantExact }
func (MerchantPattern) Kind() PredicateKind    { return KindMerchantPattern }
func (DescriptionPattern) Kind() PredicateKind { return KindDescriptionPattern }

func (p MerchantExact) Value() string      { return p.Merchant }
func (p MerchantPattern) Value() string    { return p.Pattern }
func (p DescriptionPattern) Value() string { return p.Pattern }

func (MerchantExact) isPredicate()      {}
func (MerchantPattern) isPredicate()    {}
func (DescriptionPattern) isPredicate() {}

// NewPredicate builds the variant for kind. It returns nil for an unknown kind.
func NewPredicate(kind PredicateKind, value string) Predicate {
	switch kind {
	case KindMerchantExact:
		return MerchantExact{Merchant: value}
	case KindMerchantPattern:
		return MerchantPattern{Pattern: value}
	case KindDescriptionPattern:
		return DescriptionPattern{Pattern: value}
	default:
		return nil
	}
}

// Rule is a user-defined categorization rule.
type Rule struct {
	ID           string
	UserID       string
	Name         string
	CategoryID   string
	Predicate    Predicate
	MinAmount    *decimal.Decimal // inclusive
	MaxAmount    *decimal.Decimal // inclusive
	Priority     int              // lower runs first
	TimesApplied int
}
