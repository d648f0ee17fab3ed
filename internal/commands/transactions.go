package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/ledgercsv"
)

func newTransactionsCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect ledger transactions",
	}
	cmd.AddCommand(newTransactionsExportCommand(cfgPath))
	return cmd
}

func newTransactionsExportCommand(cfgPath *string) *cobra.Command {
	var accountID, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an account's transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, err := e.store.FindAccount(cmd.Context(), accountID, e.userID()); err != nil {
				return err
			}
			txns, err := e.store.TransactionsForAccount(cmd.Context(), accountID, e.userID())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return ledgercsv.WriteTransactions(w, txns)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account ID (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
