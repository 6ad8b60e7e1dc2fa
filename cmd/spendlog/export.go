package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spendlog/internal/cli"
)

const exportFileLayout = "20060102-150405"

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses",
	}

	cmd.AddCommand(exportCSVCmd())

	return cmd
}

func exportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export every expense as CSV",
		Long: `Write all expenses, oldest first, as CSV with the columns
id,amount,category,note,date. Amounts have two decimals and dates are UTC.

Without --output the file is written to the configured export directory.
Use --output - to write to standard output.`,
		Args: cobra.NoArgs,
		RunE: runExportCSV,
	}

	cmd.Flags().StringP("output", "o", "", "output file, or - for stdout")

	return cmd
}

func runExportCSV(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if output == "-" {
		if _, err := store.ExportCSV(ctx, out); err != nil {
			return fmt.Errorf("failed to export expenses: %w", err)
		}
		printLine(out, "")
		return nil
	}

	if output == "" {
		output = filepath.Join(appConfig.ExportDirectory,
			fmt.Sprintf("spendlog-%s.csv", clock().Format(exportFileLayout)))
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish())

	count, err := writeExport(ctx, store, output, bar)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	slog.Info("Exported expenses", "count", count, "file", output)
	printLine(out, cli.FormatSuccess(fmt.Sprintf("Exported %d expenses to %s", count, output)))
	return nil
}

type csvExporter interface {
	ExportCSV(ctx context.Context, w io.Writer) (int, error)
}

// writeExport writes the CSV export to path, copying the bytes to progress.
// A failed export leaves no file behind.
func writeExport(ctx context.Context, exporter csvExporter, path string, progress io.Writer) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	count, err := exporter.ExportCSV(ctx, io.MultiWriter(f, progress))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			slog.Warn("Failed to remove partial export", "file", path, "error", removeErr)
		}
		return 0, fmt.Errorf("failed to export expenses: %w", err)
	}
	return count, nil
}
