package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/model"
	"github.com/rudivdz85/nautical-fin/internal/rules"
)

func newRuleCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(newRuleAddCommand(cfgPath), newRuleListCommand(cfgPath), newRuleLoadCommand(cfgPath))
	return cmd
}

func newRuleAddCommand(cfgPath *string) *cobra.Command {
	var fr rules.FileRule

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a categorization rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fr.Rule()
			if err != nil {
				return err
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			saved, err := saveRules(cmd.Context(), e, []model.Rule{r})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved[0].ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&fr.Name, "name", "", "rule name")
	cmd.Flags().StringVar(&fr.Category, "category", "", "category name or ID (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().IntVar(&fr.Priority, "priority", 100, "evaluation order, lowest first")
	cmd.Flags().StringVar(&fr.Merchant, "merchant", "", "exact normalized merchant name")
	cmd.Flags().StringVar(&fr.MerchantPattern, "merchant-pattern", "", "regular expression on the normalized merchant")
	cmd.Flags().StringVar(&fr.DescriptionPattern, "description-pattern", "", "regular expression on the description")
	cmd.Flags().StringVar(&fr.MinAmount, "min", "", "minimum unsigned amount")
	cmd.Flags().StringVar(&fr.MaxAmount, "max", "", "maximum unsigned amount")
	cmd.MarkFlagsOneRequired("merchant", "merchant-pattern", "description-pattern")
	cmd.MarkFlagsMutuallyExclusive("merchant", "merchant-pattern", "description-pattern")

	return cmd
}

func newRuleLoadCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <rules.yaml>",
		Short: "Add every rule in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			saved, err := saveRules(cmd.Context(), e, rs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rules from %s\n", len(saved), args[0])
			return nil
		},
	}
}

func newRuleListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			cats, err := loadCategories(cmd.Context(), e)
			if err != nil {
				return err
			}
			rs, err := e.store.RulesForUser(cmd.Context(), e.userID())
			if err != nil {
				return err
			}
			for _, r := range rs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s=%s\t%s\t%s\tapplied=%d\n",
					r.ID, r.Priority, r.Name, r.Predicate.Kind(), r.Predicate.Value(),
					cats.name(r.CategoryID), bounds(r), r.TimesApplied)
			}
			return nil
		},
	}
}

// saveRules resolves each rule's category and stores the rules in order.
// Nothing is stored if any rule is invalid.
func saveRules(ctx context.Context, e *env, rs []model.Rule) ([]model.Rule, error) {
	cats, err := loadCategories(ctx, e)
	if err != nil {
		return nil, err
	}
	for i := range rs {
		catID, err := cats.resolve(rs[i].CategoryID)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rs[i].Name, err)
		}
		rs[i].CategoryID = catID
		rs[i].UserID = e.userID()

		switch p := rs[i].Predicate.(type) {
		case model.MerchantPattern:
			if !rules.ValidPattern(p.Pattern) {
				return nil, fmt.Errorf("rule %d (%s): invalid pattern %q", i, rs[i].Name, p.Pattern)
			}
		case model.DescriptionPattern:
			if !rules.ValidPattern(p.Pattern) {
				return nil, fmt.Errorf("rule %d (%s): invalid pattern %q", i, rs[i].Name, p.Pattern)
			}
		}
	}

	saved := make([]model.Rule, 0, len(rs))
	for _, r := range rs {
		s, err := e.store.CreateRule(ctx, r)
		if err != nil {
			return saved, err
		}
		saved = append(saved, s)
	}
	return saved, nil
}

func bounds(r model.Rule) string {
	lo, hi := "*", "*"
	if r.MinAmount != nil {
		lo = r.MinAmount.StringFixed(2)
	}
	if r.MaxAmount != nil {
		hi = r.MaxAmount.StringFixed(2)
	}
	return "[" + lo + "," + hi + "]"
}
