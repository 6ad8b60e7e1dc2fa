package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/money"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Record and browse expenses",
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(todayExpensesCmd())
	cmd.AddCommand(monthExpensesCmd())
	cmd.AddCommand(editExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func addExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Example: `  spendlog expenses add 12.50 --category food --note "lunch"
  spendlog expenses add 40 -c transport --date 2024-03-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			categoryID, _ := cmd.Flags().GetString("category")
			note, _ := cmd.Flags().GetString("note")
			date, _ := cmd.Flags().GetString("date")

			amount, err := money.ParsePositive(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid amount %q", args[0]), err)
			}

			loc, err := location()
			if err != nil {
				return err
			}
			occurredAt, err := parseDate(date, loc)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			exp, err := store.Expenses().Create(ctx, model.Expense{
				Amount:     amount,
				CategoryID: categoryID,
				Note:       note,
				OccurredAt: occurredAt,
			})
			if err != nil {
				if errors.Is(err, common.ErrValidation) {
					return common.NewUserError(fmt.Sprintf("cannot record expense in category %q", categoryID), err)
				}
				return fmt.Errorf("failed to record expense: %w", err)
			}

			slog.Debug("Recorded expense", "id", exp.ID, "amount", exp.Amount, "category", exp.CategoryID)
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s in %s (%s)",
				cli.FormatAmount(exp.Amount), exp.CategoryID, exp.ID)))
			return nil
		},
	}

	cmd.Flags().StringP("category", "c", "others", "category id")
	cmd.Flags().StringP("note", "n", "", "free-form note")
	cmd.Flags().StringP("date", "d", "", "date of the expense, YYYY-MM-DD (default: now)")

	return cmd
}

func listExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			loc, err := location()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			expenses, err := store.Expenses().List(ctx, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}
			index, err := categoryIndex(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(expenses) == 0 {
				printLine(out, cli.InfoStyle.Render("No expenses recorded yet. Use 'spendlog expenses add' to add one."))
				return nil
			}
			renderExpenses(out, index, expenses, loc)
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of expenses to show")
	cmd.Flags().Int("offset", 0, "number of expenses to skip")

	return cmd
}

func todayExpensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			loc, err := location()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			expenses, err := store.Expenses().ListForToday(ctx)
			if err != nil {
				return fmt.Errorf("failed to list today's expenses: %w", err)
			}
			index, err := categoryIndex(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printLine(out, cli.FormatTitle("Today, "+clock().In(loc).Format(dateLayout)))
			if len(expenses) == 0 {
				printLine(out, cli.InfoStyle.Render("Nothing spent today."))
				return nil
			}
			renderExpenses(out, index, expenses, loc)
			return nil
		},
	}
}

func monthExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "List the expenses of a month, grouped by day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

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

			expenses, err := store.Expenses().ListForMonth(ctx, year, month, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}
			index, err := categoryIndex(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printLine(out, cli.FormatTitle(fmt.Sprintf("%s %d", month, year)))
			if len(expenses) == 0 {
				printLine(out, cli.InfoStyle.Render("No expenses this month."))
				return nil
			}

			for _, day := range model.GroupByDay(expenses) {
				printf(out, "%s  %s\n", cli.BoldStyle.Render(day.Day), cli.FormatAmount(day.Total))
				for _, e := range day.Expenses {
					printf(out, "  %-24s %10s  %s\n", categoryLabel(index, e.CategoryID), cli.FormatAmount(e.Amount), e.Note)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 500, "maximum number of expenses to show")
	cmd.Flags().Int("offset", 0, "number of expenses to skip")

	return cmd
}

func editExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an expense",
		Long:  `Change the amount, category, note or date of an expense. Fields without a flag keep their value.`,
		Example: `  spendlog expenses edit 0b6f3c1e-... --amount 14.20
  spendlog expenses edit ofx-20240115001 --category groceries --note ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			loc, err := location()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			current, err := store.Expenses().Get(ctx, id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("expense %q not found", id), err)
				}
				return fmt.Errorf("failed to load expense: %w", err)
			}

			update := model.ExpenseUpdate{
				Amount:     current.Amount,
				CategoryID: current.CategoryID,
				Note:       current.Note,
				OccurredAt: current.OccurredAt,
			}

			flags := cmd.Flags()
			if flags.Changed("amount") {
				raw, _ := flags.GetString("amount")
				if update.Amount, err = money.ParsePositive(raw); err != nil {
					return common.NewUserError(fmt.Sprintf("invalid amount %q", raw), err)
				}
			}
			if flags.Changed("category") {
				update.CategoryID, _ = flags.GetString("category")
			}
			if flags.Changed("note") {
				update.Note, _ = flags.GetString("note")
			}
			if flags.Changed("date") {
				raw, _ := flags.GetString("date")
				if update.OccurredAt, err = parseDate(raw, loc); err != nil {
					return err
				}
			}

			if err := store.Expenses().Update(ctx, id, update); err != nil {
				if errors.Is(err, common.ErrValidation) {
					return common.NewUserError("cannot update expense", err)
				}
				return fmt.Errorf("failed to update expense: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Updated expense "+id))
			return nil
		},
	}

	cmd.Flags().StringP("amount", "a", "", "new amount")
	cmd.Flags().StringP("category", "c", "", "new category id")
	cmd.Flags().StringP("note", "n", "", "new note (empty clears it)")
	cmd.Flags().StringP("date", "d", "", "new date, YYYY-MM-DD")

	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Expenses().Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted expense "+args[0]))
			return nil
		},
	}
}
