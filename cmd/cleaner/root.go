package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/config"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/core"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/logging"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/pgexport"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

// exportTarget is what the clean command needs from a database connection.
type exportTarget interface {
	pgexport.Beginner
	Close()
}

// app carries the process dependencies shared by all commands.
type app struct {
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
	connect func(ctx context.Context, cfg config.DatabaseConfig) (exportTarget, error)

	cfg *config.Config
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (exportTarget, error) {
	pool, err := pgexport.Connect(ctx, cfg.URL, pgexport.PoolOptions{
		MaxConns:       cfg.MaxConns,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cleaner",
		Short:         "Clean and deduplicate contact tables from CSV and Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(
		newCleanCmd(a),
		newFormatsCmd(a),
	)

	return root
}

// cleanerOptions builds cleaner options from settings and rules.
func cleanerOptions(cfg *config.Config, rules config.Rules) core.Options {
	opts := core.DefaultOptions()
	opts.Columns = core.Columns{
		FullName:  rules.Columns.FullName,
		Email:     rules.Columns.Email,
		StartDate: rules.Columns.StartDate,
		Revenue:   rules.Columns.Revenue,
		Region:    rules.Columns.Region,
		Notes:     rules.Columns.Notes,
	}
	opts.DateLayouts = rules.DateLayouts
	opts.NotesSeparator = rules.NotesSeparator
	opts.TwoDigitYearPivot = cfg.Input.TwoDigitYearPivot
	return opts
}

func readOptions(cfg *config.Config, rules config.Rules) tableio.ReadOptions {
	return tableio.ReadOptions{
		Sheet:       cfg.Input.Sheet,
		NullTokens:  rules.NullTokens,
		MaxFileSize: cfg.Input.MaxFileSize,
	}
}

func writeOptions(cfg *config.Config) tableio.WriteOptions {
	return tableio.WriteOptions{
		Sheet:      cfg.Output.Sheet,
		DateFormat: cfg.Output.DateFormat,
	}
}

func printReport(w io.Writer, report core.Report) {
	fmt.Fprintf(w, "  rows read:     %d\n", report.InputRows)
	fmt.Fprintf(w, "  rows dropped:  %d\n", report.DroppedRows)
	for _, field := range slices.Sorted(maps.Keys(report.DroppedByField)) {
		fmt.Fprintf(w, "    %s empty or invalid: %d\n", field, report.DroppedByField[field])
	}
	fmt.Fprintf(w, "  rows merged:   %d\n", report.MergedRows)
	fmt.Fprintf(w, "  rows written:  %d\n", report.OutputRows)
	if report.Exported > 0 {
		fmt.Fprintf(w, "  rows exported: %d\n", report.Exported)
	}
}
