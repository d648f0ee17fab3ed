package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/importer"
	"github.com/rudivdz85/nautical-fin/internal/importlog"
	"github.com/rudivdz85/nautical-fin/internal/logger"
	"github.com/rudivdz85/nautical-fin/internal/model"
)

func newImportCommand(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create and process statement imports",
	}
	cmd.AddCommand(
		newImportCreateCommand(cfgPath),
		newImportProcessCommand(cfgPath),
		newImportShowCommand(cfgPath),
		newImportListCommand(cfgPath),
	)
	return cmd
}

func newImportCreateCommand(cfgPath *string) *cobra.Command {
	var accountID, fileName, periodStart, periodEnd, opening, closing string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an import for a statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := importer.CreateParams{AccountID: accountID, FileName: fileName}
			var err error
			if params.PeriodStart, err = optionalDate("period-start", periodStart); err != nil {
				return err
			}
			if params.PeriodEnd, err = optionalDate("period-end", periodEnd); err != nil {
				return err
			}
			if params.OpeningBalance, err = optionalAmount("opening", opening); err != nil {
				return err
			}
			if params.ClosingBalance, err = optionalAmount("closing", closing); err != nil {
				return err
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			params.UserID = e.userID()
			rec, err := importer.NewCreator(e.store, e.store).Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account ID (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&fileName, "file-name", "", "statement file name, for reference")
	cmd.Flags().StringVar(&periodStart, "period-start", "", "statement period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&periodEnd, "period-end", "", "statement period end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opening, "opening", "", "statement opening balance")
	cmd.Flags().StringVar(&closing, "closing", "", "statement closing balance")

	return cmd
}

func newImportProcessCommand(cfgPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "process <import-id>",
		Short: "Process a batch of candidate transactions into an import",
		Long: `Process reads a JSON batch of the form {"transactions": [...]} and runs
every row through duplicate detection, merchant normalization and rule
categorization, then prints the result as JSON. Use --file - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importID := args[0]

			rows, err := readBatch(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := logger.WithContext(cmd.Context(), e.log)
			p := importer.NewProcessor(importer.StoresFrom(e.store), logger.FromContext(ctx))
			res, err := p.Process(ctx, importID, e.userID(), rows)
			if err != nil {
				var nf *importer.NotFoundError
				if errors.As(err, &nf) {
					return fmt.Errorf("%w (check the import ID and that it belongs to %s)", err, e.userID())
				}
				return err
			}

			if err := importlog.Append(e.importLogPath(), importlog.FromResult(time.Now(), importID, res.Rows)); err != nil {
				e.log.Warn().Err(err).Msg("writing import log")
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON batch file, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newImportShowCommand(cfgPath *string) *cobra.Command {
	var withRows bool

	cmd := &cobra.Command{
		Use:   "show <import-id>",
		Short: "Show an import record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			rec, err := e.store.FindImport(cmd.Context(), args[0], e.userID())
			if err != nil {
				return err
			}
			if !withRows {
				return printJSON(cmd.OutOrStdout(), importer.NewImportView(rec))
			}

			entries, err := importlog.ForImport(e.importLogPath(), rec.ID)
			if err != nil {
				return err
			}
			rows := make([]importer.RowOutcome, 0, len(entries))
			for _, en := range entries {
				rows = append(rows, importer.RowOutcome{
					Index: en.Row, Outcome: en.Outcome, TransactionID: en.TransactionID, RuleID: en.RuleID, Reason: en.Reason,
				})
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Import importer.ImportView    `json:"import"`
				Rows   []importer.RowOutcome `json:"rows"`
			}{importer.NewImportView(rec), rows})
		},
	}

	cmd.Flags().BoolVar(&withRows, "rows", false, "include per-row outcomes from the import log")
	return cmd
}

func newImportListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*cfgPath)
			if err != nil {
				return err
			}
			defer e.Close()

			recs, err := e.store.ImportsForUser(cmd.Context(), e.userID())
			if err != nil {
				return err
			}
			for _, r := range recs {
				if !r.Status.Terminal() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.AccountID, r.Status)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\timported=%d duplicates=%d failed=%d\n",
					r.ID, r.AccountID, r.Status, r.Imported, r.Duplicates, r.Failed)
			}
			return nil
		},
	}
}

func readBatch(file string, stdin io.Reader) ([]model.CandidateRow, error) {
	if file == "-" {
		return importer.DecodeBatch(stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening batch: %w", err)
	}
	defer f.Close()
	return importer.DecodeBatch(f)
}

func optionalDate(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, s)
	}
	return &t, nil
}

func optionalAmount(flag, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
