package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/categories"
	"github.com/rudivdz85/nautical-fin/internal/config"
	"github.com/rudivdz85/nautical-fin/internal/store/sqlite"
)

const rulesTemplate = `# Categorization rules, loaded with "fin rule load rules.yaml".
# Lower priority runs first; the first matching rule wins.
rules: []
`

func newInitCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "ledger owner ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, userID string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory logs: %w", err)
	}

	cfg := config.Default(userID)
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	s, err := sqlite.Open(config.Resolve(cfgPath, cfg.Database.Path))
	if err != nil {
		return err
	}
	defer s.Close()

	for _, c := range categories.Defaults(userID) {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(rulesTemplate), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledger at %s for %s\n", dir, userID)
	return nil
}
