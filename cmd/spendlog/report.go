package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/model"
)

const trendBarWidth = 30

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize spending",
		Long:  `Monthly totals, per-category breakdowns and trends over recent months.`,
	}

	cmd.AddCommand(totalReportCmd())
	cmd.AddCommand(categoryReportCmd())
	cmd.AddCommand(trendReportCmd())
	cmd.AddCommand(daysReportCmd())

	return cmd
}

func monthArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func totalReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total [YYYY-MM]",
		Short: "Total spend of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loc, err := location()
			if err != nil {
				return err
			}
			year, month, err := parseMonth(monthArg(args), loc)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			total, err := store.Expenses().TotalForMonth(ctx, year, month)
			if err != nil {
				return fmt.Errorf("failed to compute monthly total: %w", err)
			}

			printf(cmd.OutOrStdout(), "%s %s %d: %s\n", cli.WalletIcon, month, year, cli.FormatAmount(total))
			return nil
		},
	}
}

func categoryReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories [YYYY-MM]",
		Aliases: []string{"category"},
		Short:   "Spend per category in a month, largest first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			loc, err := location()
			if err != nil {
				return err
			}
			year, month, err := parseMonth(monthArg(args), loc)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			totals, err := store.Expenses().MonthlyCategoryTotals(ctx, year, month)
			if err != nil {
				return fmt.Errorf("failed to compute category totals: %w", err)
			}
			index, err := categoryIndex(ctx, store)
			if err != nil {
				return err
			}

			printLine(out, cli.FormatTitle(fmt.Sprintf("%s %s %d by category", cli.ChartIcon, month, year)))
			if len(totals) == 0 {
				printLine(out, cli.InfoStyle.Render("No expenses this month."))
				return nil
			}

			var sum int64
			for _, t := range totals {
				sum += t.Total
			}

			rows := make([][]string, 0, len(totals))
			for _, t := range totals {
				rows = append(rows, []string{
					categoryLabel(index, t.CategoryID),
					cli.FormatAmount(t.Total),
					fmt.Sprintf("%.1f%%", float64(t.Total)*100/float64(sum)),
				})
			}
			printLine(out, cli.RenderTable([]string{"Category", "Spent", "Share"}, rows, 1, 2))
			printf(out, "%s %s\n", cli.SubtleStyle.Render("Total:"), cli.FormatAmount(sum))
			return nil
		},
	}
}

func trendReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly totals over recent months",
		Long: `Show the total spend of each of the last N calendar months, including
the current one. Months without expenses are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			months, _ := cmd.Flags().GetInt("months")
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			totals, err := store.Expenses().LastNMonthTotals(ctx, months)
			if err != nil {
				return fmt.Errorf("failed to compute monthly totals: %w", err)
			}

			printLine(out, cli.FormatTitle(fmt.Sprintf("%s Last %d months", cli.ChartIcon, months)))
			if len(totals) == 0 {
				printLine(out, cli.InfoStyle.Render("No expenses in this period."))
				return nil
			}
			renderTrend(out, totals)
			return nil
		},
	}

	cmd.Flags().IntP("months", "m", 6, "number of months to include")

	return cmd
}

// renderTrend scales every bar against the largest month.
func renderTrend(out io.Writer, totals []model.MonthlyTotal) {
	var peak int64
	for _, t := range totals {
		if t.Total > peak {
			peak = t.Total
		}
	}

	for _, t := range totals {
		label := fmt.Sprintf("%d-%02d", t.Year, int(t.Month))
		printf(out, "%s  %s %12s\n", label, cli.BudgetBar(t.Total, peak, trendBarWidth), cli.FormatAmount(t.Total))
	}
}

func daysReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days [YYYY-MM]",
		Short: "Daily totals of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			loc, err := location()
			if err != nil {
				return err
			}
			year, month, err := parseMonth(monthArg(args), loc)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			expenses, err := store.Expenses().ListForMonth(ctx, year, month, maxPage, 0)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			printLine(out, cli.FormatTitle(fmt.Sprintf("%s %d per day", month, year)))
			groups := model.GroupByDay(expenses)
			if len(groups) == 0 {
				printLine(out, cli.InfoStyle.Render("No expenses this month."))
				return nil
			}

			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{g.Day, fmt.Sprintf("%d", len(g.Expenses)), cli.FormatAmount(g.Total)})
			}
			printLine(out, cli.RenderTable([]string{"Day", "Count", "Spent"}, rows, 1, 2))
			return nil
		},
	}
}
