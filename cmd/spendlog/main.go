package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/config"
)

var (
	cfgFile string
	version = "dev"

	// appConfig is resolved by initConfig before any subcommand runs.
	appConfig config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spendlog",
		Short: cli.WalletIcon + " Personal expense log",
		Long: `spendlog records day-to-day expenses in a local SQLite database,
tracks monthly budgets per category, and reports where the money went.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/spendlog/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "database file (default: $HOME/.local/share/spendlog/spendlog.db)")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyDatabasePath, rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(expensesCmd())
	rootCmd.AddCommand(budgetsCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importOFXCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		slog.Debug("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, cli.FormatError(errorMessage(err)))
		os.Exit(1)
	}
}

// errorMessage is what a failed command prints. A UserError already carries
// its message; anything else keeps its detail after the short kind.
func errorMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	msg := common.UserMessage(err)
	if detail := err.Error(); detail != msg {
		return msg + ": " + detail
	}
	return msg
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	if err := common.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	appConfig = cfg
	slog.Debug("Loaded configuration",
		"config_file", v.ConfigFileUsed(),
		"database", cfg.DatabasePath)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printf(cmd.OutOrStdout(), "spendlog %s\n", version)
		},
	}
}
