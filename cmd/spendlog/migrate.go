package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version and
seed the default categories into an empty database.

Every other command migrates automatically; use --status to inspect a
database without changing it.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	slog.Info("Starting database migration",
		"database", appConfig.DatabasePath,
		"status_only", status)

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if status {
		st, err := store.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}

		printLine(out, cli.FormatTitle("Database Migration Status"))
		printf(out, "Database: %s\n", store.Path())
		printf(out, "Schema version: %d (latest %d)\n", st.Version, st.ExpectedVersion)
		for _, table := range storage.SchemaTables() {
			mark := cli.StyleSuccess(cli.SuccessIcon)
			if !st.Tables[table] {
				mark = cli.StyleError(cli.ErrorIcon)
			}
			printf(out, "  %s %s\n", mark, table)
		}
		if st.UpToDate() {
			printLine(out, cli.FormatSuccess("Database is up to date"))
		} else {
			printLine(out, cli.FormatWarning(fmt.Sprintf("%d migration(s) pending", st.ExpectedVersion-st.Version)))
		}
		return nil
	}

	before, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	after, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if before == after {
		printLine(out, cli.FormatSuccess(fmt.Sprintf("Database already at version %d", after)))
		return nil
	}
	printLine(out, cli.FormatSuccess(fmt.Sprintf("Migrated database from version %d to %d", before, after)))
	return nil
}
