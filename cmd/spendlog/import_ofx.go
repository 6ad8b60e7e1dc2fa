package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/ofx"
	"github.com/Veraticus/spendlog/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import expenses from OFX/QFX files",
		Long: `Import debits from OFX or QFX (Quicken) statements exported from your bank.

Every debit becomes an expense in the chosen category with the payee as its
note. Credits are skipped. Transactions that were imported before are
recognized by their bank id and skipped, so a statement can be imported again
safely.

Examples:
  # Import single file
  spendlog import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory into groceries
  spendlog import-ofx ~/Downloads/*.qfx --category groceries`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("category", "c", "others", "category id for imported expenses")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

// importStats counts the outcome of one import run.
type importStats struct {
	Files    int
	Found    int
	Credits  int
	Imported int
	Skipped  int
}

// expandFiles resolves glob patterns. Patterns without matches are kept when
// they name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// parseFiles reads every statement and returns the debits, deduplicated by
// FITID across files.
func parseFiles(ctx context.Context, files []string, stats *importStats) ([]ofx.Candidate, error) {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var candidates []ofx.Candidate

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		result, err := parser.Parse(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		stats.Files++
		stats.Credits += result.Credits
		added := 0
		for _, c := range result.Candidates {
			if seen[c.FitID] {
				continue
			}
			seen[c.FitID] = true
			candidates = append(candidates, c)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"debits", len(result.Candidates),
			"added", added)
	}

	stats.Found = len(candidates)
	return candidates, nil
}

// storeCandidates records every candidate not imported before. It stops at
// the first storage error or when ctx is canceled, keeping what was stored.
func storeCandidates(ctx context.Context, store service.Storage, candidates []ofx.Candidate, categoryID string, bar *progressbar.ProgressBar, stats *importStats) error {
	expenses := store.Expenses()
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := expenses.Get(ctx, c.ExpenseID())
		switch {
		case err == nil:
			stats.Skipped++
		case errors.Is(err, common.ErrNotFound):
			if _, err := expenses.Create(ctx, c.Expense(categoryID)); err != nil {
				return fmt.Errorf("failed to store transaction %s: %w", c.FitID, err)
			}
			stats.Imported++
		default:
			return fmt.Errorf("failed to check transaction %s: %w", c.FitID, err)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	categoryID, _ := cmd.Flags().GetString("category")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("no files found to import", nil)
	}

	handler := cli.NewInterruptHandler(out, "Import", "Expenses imported so far are kept; re-run to continue.")
	ctx := handler.HandleInterrupts(cmd.Context())
	defer handler.Stop()

	slog.Info("Importing OFX files",
		"file_count", len(files),
		"category", categoryID,
		"dry_run", dryRun)

	var stats importStats
	candidates, err := parseFiles(ctx, files, &stats)
	if err != nil {
		return err
	}
	if stats.Files == 0 {
		return common.NewUserError("none of the files could be read as OFX", nil)
	}

	if dryRun {
		var total int64
		for _, c := range candidates {
			total += c.Amount
		}
		printLine(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d debits totalling %s in %d file(s), %d credits skipped",
			stats.Found, cli.FormatAmount(total), stats.Files, stats.Credits)))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if _, err := store.Categories().Get(ctx, categoryID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("category %q not found", categoryID), err)
		}
		return err
	}

	bar := progressbar.NewOptions(len(candidates),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish())

	err = storeCandidates(ctx, store, candidates, categoryID, bar, &stats)
	_ = bar.Finish()

	slog.Info("Import finished",
		"imported", stats.Imported,
		"already_present", stats.Skipped,
		"credits_skipped", stats.Credits)

	if err != nil {
		if handler.WasInterrupted() {
			printLine(out, cli.FormatWarning(fmt.Sprintf("Imported %d of %d expenses before the interrupt", stats.Imported, stats.Found)))
			return nil
		}
		return err
	}

	printLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d expenses (%d already present, %d credits skipped)",
		stats.Imported, stats.Skipped, stats.Credits)))
	return nil
}
