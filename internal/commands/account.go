package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

func newAccountCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newAccountAddCommand(cfgPath), newAccountListCommand(cfgPath), newAccountShowCommand(cfgPath))
	return cmd
}

func newAccountAddCommand(cfgPath *string) *cobra.Command {
	var name, typ, currency, balance string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.AccountType(typ)
			if !validAccountType(t) {
				return fmt.Errorf("unknown account type %q", typ)
			}
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("parsing balance %q: %w", balance, err)
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			a, err := e.store.CreateAccount(cmd.Context(), model.Account{
				UserID:   e.userID(),
				Name:     name,
				Type:     t,
				Currency: currency,
				Balance:  bal,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeChecking), "checking, savings, credit_card or cash")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&balance, "balance", "0", "starting balance")

	return cmd
}

func newAccountListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			accts, err := e.store.AccountsForUser(cmd.Context(), e.userID())
			if err != nil {
				return err
			}
			for _, a := range accts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s %s\n", a.ID, a.Name, a.Type, a.Balance.StringFixed(2), a.Currency)
			}
			return nil
		},
	}
}

func newAccountShowCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			a, err := e.store.FindAccount(cmd.Context(), args[0], e.userID())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", a.ID)
			fmt.Fprintf(out, "Name:     %s\n", a.Name)
			fmt.Fprintf(out, "Type:     %s\n", a.Type)
			fmt.Fprintf(out, "Currency: %s\n", a.Currency)
			fmt.Fprintf(out, "Balance:  %s\n", a.Balance.StringFixed(2))
			return nil
		},
	}
}

func validAccountType(t model.AccountType) bool {
	switch t {
	case model.AccountTypeChecking, model.AccountTypeSavings, model.AccountTypeCreditCard, model.AccountTypeCash:
		return true
	}
	return false
}
