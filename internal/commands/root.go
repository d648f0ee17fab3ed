package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rudivdz85/nautical-fin/internal/buildinfo"
	"github.com/rudivdz85/nautical-fin/internal/config"
	"github.com/rudivdz85/nautical-fin/internal/logger"
	"github.com/rudivdz85/nautical-fin/internal/store/sqlite"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:     "fin",
		Short:   "Bank statement import and categorization",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.FileName, "path to fin.yaml")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(&cfgPath),
		newCategoryCommand(&cfgPath),
		newRuleCommand(&cfgPath),
		newMerchantCommand(&cfgPath),
		newImportCommand(&cfgPath),
		newTransactionsCommand(&cfgPath),
	)

	return rootCmd
}

// env is what a command needs once fin.yaml is loaded.
type env struct {
	cfgPath string
	cfg     *config.Config
	store   *sqlite.Store
	log     zerolog.Logger
}

func openEnv(cfgPath string) (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	s, err := sqlite.Open(config.Resolve(cfgPath, cfg.Database.Path))
	if err != nil {
		return nil, err
	}
	return &env{cfgPath: cfgPath, cfg: cfg, store: s, log: log}, nil
}

func (e *env) userID() string { return e.cfg.User.ID }

func (e *env) importLogPath() string {
	return config.Resolve(e.cfgPath, e.cfg.Import.LogPath)
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing database")
	}
}
