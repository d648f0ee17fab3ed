package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/categories"
	"github.com/rudivdz85/nautical-fin/internal/id"
	"github.com/rudivdz85/nautical-fin/internal/model"
)

func newCategoryCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(newCategoryAddCommand(cfgPath), newCategoryListCommand(cfgPath))
	return cmd
}

func newCategoryAddCommand(cfgPath *string) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := model.CategoryKind(kind)
			switch k {
			case model.CategoryKindExpense, model.CategoryKindIncome, model.CategoryKindTransfer:
			default:
				return fmt.Errorf("unknown category kind %q", kind)
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.store.CreateCategory(cmd.Context(), model.Category{UserID: e.userID(), Name: args[0], Kind: k})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(model.CategoryKindExpense), "expense, income or transfer")
	return cmd
}

func newCategoryListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			cats, err := e.store.CategoriesForUser(cmd.Context(), e.userID())
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Name, c.Kind)
			}
			return nil
		},
	}
}

// categoryResolver maps a category name or ID to its ID.
type categoryResolver map[string]model.Category

func loadCategories(ctx context.Context, e *env) (categoryResolver, error) {
	cats, err := e.store.CategoriesForUser(ctx, e.userID())
	if err != nil {
		return nil, err
	}
	return categoryResolver(categories.ByName(cats)), nil
}

func (r categoryResolver) resolve(ref string) (string, error) {
	if c, ok := r[ref]; ok {
		return c.ID, nil
	}
	if id.Is(id.Category, ref) {
		for _, c := range r {
			if c.ID == ref {
				return c.ID, nil
			}
		}
	}
	return "", fmt.Errorf("unknown category %q", ref)
}

func (r categoryResolver) name(categoryID string) string {
	for _, c := range r {
		if c.ID == categoryID {
			return c.Name
		}
	}
	return categoryID
}
