package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/money"
)

const budgetBarWidth = 20

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage monthly budgets per category",
	}

	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(getBudgetCmd())
	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(removeBudgetCmd())
	cmd.AddCommand(clearBudgetsCmd())

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [YYYY-MM]",
		Short: "Show budgets against the spend of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			loc, err := location()
			if err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			year, month, err := parseMonth(arg, loc)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			budgets, err := store.Budgets().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}
			if len(budgets) == 0 {
				printLine(out, cli.InfoStyle.Render("No budgets set. Use 'spendlog budgets set <category> <amount>' to add one."))
				return nil
			}

			totals, err := store.Expenses().MonthlyCategoryTotals(ctx, year, month)
			if err != nil {
				return fmt.Errorf("failed to compute category totals: %w", err)
			}
			spent := make(map[string]int64, len(totals))
			for _, t := range totals {
				spent[t.CategoryID] = t.Total
			}

			index, err := categoryIndex(ctx, store)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(budgets))
			for _, b := range budgets {
				s := spent[b.CategoryID]
				rows = append(rows, []string{
					categoryLabel(index, b.CategoryID),
					cli.FormatAmount(s),
					cli.FormatAmount(b.Amount),
					cli.BudgetBar(s, b.Amount, budgetBarWidth),
				})
			}

			printLine(out, cli.FormatTitle(fmt.Sprintf("Budgets for %s %d", month, year)))
			printLine(out, cli.RenderTable([]string{"Category", "Spent", "Budget", ""}, rows, 1, 2))
			return nil
		},
	}
}

func getBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <category>",
		Short: "Show the budget of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			budget, err := store.Budgets().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get budget: %w", err)
			}
			if budget == nil {
				printLine(out, cli.InfoStyle.Render(fmt.Sprintf("No budget set for %s", args[0])))
				return nil
			}

			printf(out, "%s: %s per month\n", budget.CategoryID, cli.FormatAmount(budget.Amount))
			return nil
		},
	}
}

func setBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <category> <amount>",
		Short:   "Set or replace the monthly budget of a category",
		Example: `  spendlog budgets set food 400`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categoryID := args[0]

			amount, err := money.ParsePositive(args[1])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid amount %q", args[1]), err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Budgets().Set(ctx, categoryID, amount); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("category %q not found", categoryID), err)
				}
				return fmt.Errorf("failed to set budget: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget for %s set to %s", categoryID, cli.FormatAmount(amount))))
			return nil
		},
	}
}

func removeBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <category>",
		Aliases: []string{"rm"},
		Short:   "Remove the budget of a category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Budgets().Remove(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove budget: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Removed budget for "+args[0]))
			return nil
		},
	}
}

func clearBudgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()

			if !force {
				ok, err := cli.Confirm(ctx, out, cli.NewNonBlockingReader(cmd.InOrStdin()), "Remove all budgets?")
				if err != nil {
					return err
				}
				if !ok {
					printLine(out, "Cancelled.")
					return nil
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Budgets().Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear budgets: %w", err)
			}

			printLine(out, cli.FormatSuccess("All budgets removed"))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}
