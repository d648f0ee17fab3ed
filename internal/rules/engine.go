// Package rules selects the categorization rule for a statement row.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// Engine evaluates an ordered rule set. It is safe for concurrent use.
type Engine struct {
	rules    []model.Rule
	patterns []*regexp.Regexp // parallel to rules; nil for exact rules and bad patterns
}

// NewEngine prepares rules for matching. Rules are evaluated in the order
// given; callers pass them sorted by ascending priority. Patterns that fail
// to compile never match.
func NewEngine(rules []model.Rule) *Engine {
	e := &Engine{
		rules:    rules,
		patterns: make([]*regexp.Regexp, len(rules)),
	}
	for i, r := range rules {
		switch p := r.Predicate.(type) {
		case model.MerchantPattern:
			e.patterns[i] = compile(p.Pattern)
		case model.DescriptionPattern:
			e.patterns[i] = compile(p.Pattern)
		}
	}
	return e
}

func compile(pattern string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil
	}
	return re
}

// Match returns the first rule that matches the row, if any.
func (e *Engine) Match(merchant, description string, amount decimal.Decimal) (model.Rule, bool) {
	for i, r := range e.rules {
		if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
			continue
		}
		if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
			continue
		}

		var matched bool
		switch p := r.Predicate.(type) {
		case model.MerchantExact:
			matched = strings.EqualFold(p.Merchant, merchant)
		case model.MerchantPattern:
			matched = e.patterns[i] != nil && e.patterns[i].MatchString(merchant)
		case model.DescriptionPattern:
			matched = e.patterns[i] != nil && e.patterns[i].MatchString(description)
		}
		if matched {
			return r, true
		}
	}
	return model.Rule{}, false
}

// Len returns the number of rules in the engine.
func (e *Engine) Len() int { return len(e.rules) }

// SortByPriority sorts rules by ascending priority, keeping the input order
// for equal priorities.
func SortByPriority(rules []model.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
}

// ValidPattern reports whether pattern compiles.
func ValidPattern(pattern string) bool {
	return compile(pattern) != nil
}
