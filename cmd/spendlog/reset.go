package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete recorded expenses",
		Long: `Reset deletes every expense. Categories and budgets are kept.

With --all it also deletes every budget and every user category, leaving
only the system categories. Both operations are atomic: either everything
is deleted or nothing is.`,
		Args: cobra.NoArgs,
		RunE: runReset,
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	cmd.Flags().Bool("all", false, "Also delete budgets and user categories")

	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")
	all, _ := cmd.Flags().GetBool("all")
	out := cmd.OutOrStdout()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if !force {
		question := "This will delete all expenses. Are you sure you want to continue?"
		if all {
			question = "This will delete all expenses, budgets and user categories. Are you sure you want to continue?"
		}
		ok, err := cli.Confirm(ctx, out, cli.NewNonBlockingReader(cmd.InOrStdin()), question)
		if err != nil {
			return err
		}
		if !ok {
			printLine(out, "Reset cancelled.")
			return nil
		}
	}

	if !all {
		n, err := store.ClearExpenses(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}
		slog.Info("Cleared expenses", "count", n)
		printLine(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d expenses", n)))
		return nil
	}

	stats, err := store.ClearAllData(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	slog.Info("Cleared all data",
		"expenses", stats.Expenses,
		"budgets", stats.Budgets,
		"categories", stats.Categories)
	printLine(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d expenses, %d budgets and %d categories",
		stats.Expenses, stats.Budgets, stats.Categories)))
	return nil
}
