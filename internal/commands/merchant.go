package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

func newMerchantCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchant",
		Short: "Manage merchant name mappings",
	}
	cmd.AddCommand(newMerchantAddCommand(cfgPath), newMerchantListCommand(cfgPath))
	return cmd
}

func newMerchantAddCommand(cfgPath *string) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "add <original> <normalized>",
		Short: "Map a raw statement merchant to a normalized name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			m := model.MerchantMapping{OriginalName: args[0], NormalizedName: args[1]}
			if !global {
				m.UserID = e.userID()
			}
			saved, err := e.store.CreateMapping(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "make the mapping visible to every user")
	return cmd
}

func newMerchantListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List merchant mappings in lookup order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			maps, err := e.store.MappingsForUser(cmd.Context(), e.userID())
			if err != nil {
				return err
			}
			for _, m := range maps {
				scope := "user"
				if m.UserID == "" {
					scope = "global"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.ID, m.OriginalName, m.NormalizedName, scope)
			}
			return nil
		},
	}
}
