package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// FileRule is one entry of a rules YAML file. Exactly one of Merchant,
// MerchantPattern and DescriptionPattern must be set.
type FileRule struct {
	Name               string `yaml:"name"`
	Category           string `yaml:"category"`
	Priority           int    `yaml:"priority"`
	Merchant           string `yaml:"merchant,omitempty"`
	MerchantPattern    string `yaml:"merchant_pattern,omitempty"`
	DescriptionPattern string `yaml:"description_pattern,omitempty"`
	MinAmount          string `yaml:"min_amount,omitempty"`
	MaxAmount          string `yaml:"max_amount,omitempty"`
}

// File is the top-level rules YAML structure.
type File struct {
	Rules []FileRule `yaml:"rules"`
}

// Parse decodes and validates a rules YAML document. Category is left as
// written; callers resolve it to a category ID.
func Parse(data []byte) ([]model.Rule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}

	out := make([]model.Rule, 0, len(f.Rules))
	for i, fr := range f.Rules {
		r, err := fr.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, fr.Name, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadFile reads and parses a rules YAML file.
func LoadFile(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %q: %w", path, err)
	}
	return rules, nil
}

// Rule validates fr and converts it to a rule.
func (fr FileRule) Rule() (model.Rule, error) {
	if strings.TrimSpace(fr.Category) == "" {
		return model.Rule{}, fmt.Errorf("category is required")
	}

	var preds []model.Predicate
	if fr.Merchant != "" {
		preds = append(preds, model.MerchantExact{Merchant: fr.Merchant})
	}
	if fr.MerchantPattern != "" {
		preds = append(preds, model.MerchantPattern{Pattern: fr.MerchantPattern})
	}
	if fr.DescriptionPattern != "" {
		preds = append(preds, model.DescriptionPattern{Pattern: fr.DescriptionPattern})
	}
	if len(preds) != 1 {
		return model.Rule{}, fmt.Errorf("exactly one of merchant, merchant_pattern, description_pattern is required, got %d", len(preds))
	}

	minAmt, err := parseBound(fr.MinAmount)
	if err != nil {
		return model.Rule{}, fmt.Errorf("min_amount: %w", err)
	}
	maxAmt, err := parseBound(fr.MaxAmount)
	if err != nil {
		return model.Rule{}, fmt.Errorf("max_amount: %w", err)
	}
	if minAmt != nil && maxAmt != nil && minAmt.GreaterThan(*maxAmt) {
		return model.Rule{}, fmt.Errorf("min_amount %s exceeds max_amount %s", minAmt.StringFixed(2), maxAmt.StringFixed(2))
	}

	return model.Rule{
		Name:       fr.Name,
		CategoryID: fr.Category,
		Predicate:  preds[0],
		MinAmount:  minAmt,
		MaxAmount:  maxAmt,
		Priority:   fr.Priority,
	}, nil
}

func parseBound(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", s, err)
	}
	return &d, nil
}
