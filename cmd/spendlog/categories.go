package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage expense categories",
		Long: `List, add and delete the categories expenses are filed under.

System categories are seeded on first use and cannot be deleted.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			categories, err := store.Categories().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				printLine(out, cli.InfoStyle.Render("No categories found. Use 'spendlog categories add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				kind := ""
				if c.IsSystem {
					kind = cli.LockIcon
				}
				rows = append(rows, []string{cli.Swatch(c.Color), c.ID, c.Name, c.Icon, kind})
			}

			printLine(out, cli.FormatTitle("Categories"))
			printLine(out, cli.RenderTable([]string{"", "ID", "Name", "Icon", "System"}, rows))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Add a user category. Its id is derived from the name, so names that
differ only in case or punctuation collide.`,
		Example: `  spendlog categories add "Coffee Shops"
  spendlog categories add Pets --icon paw --color "#F59E0B"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			icon, _ := cmd.Flags().GetString("icon")
			color, _ := cmd.Flags().GetString("color")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cat := model.NewCustomCategory(args[0], icon, color, clock())
			if err := store.Categories().Create(ctx, cat); err != nil {
				if errors.Is(err, common.ErrDuplicate) {
					return common.NewUserError(fmt.Sprintf("category %q already exists", cat.ID), err)
				}
				return fmt.Errorf("failed to create category: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %s %s (%s)", cli.Swatch(cat.Color), cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().String("icon", "", "icon name (default: "+model.DefaultCategoryIcon+")")
	cmd.Flags().String("color", "", "hex color such as #EF4444 (default: derived from the name)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user category",
		Long: `Delete a user category together with its budget. Categories that still
have expenses cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Categories().Delete(ctx, id); err != nil {
				switch {
				case errors.Is(err, common.ErrNotFound):
					return common.NewUserError(fmt.Sprintf("category %q not found", id), err)
				case errors.Is(err, common.ErrProtectedCategory):
					return common.NewUserError(fmt.Sprintf("%q is a system category and cannot be deleted", id), err)
				case errors.Is(err, common.ErrInUse):
					return common.NewUserError(fmt.Sprintf("category %q still has expenses", id), err)
				}
				return fmt.Errorf("failed to delete category: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", id)))
			return nil
		},
	}
}
