package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/config"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/core"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/logging"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/pgexport"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

// DefaultOutput is where the cleaned table goes when -o is not given.
const DefaultOutput = "output/cleaned_file.xlsx"

type cleanFlags struct {
	output     string
	sheet      string
	rules      string
	dryRun     bool
	pgTable    string
	pgTruncate bool
}

func newCleanCmd(a *app) *cobra.Command {
	var f cleanFlags

	cmd := &cobra.Command{
		Use:   "clean <input>",
		Short: "Clean a CSV or Excel file and write the result",
		Long: `Clean normalizes headers and values, drops rows without a valid name,
email or start date, and merges rows for the same person.

The input may be .csv, .xls or .xlsx. The output may be .csv or .xlsx.`,
		Example: `  cleaner clean contacts.csv
  cleaner clean export.xlsx -o output/contacts.csv --sheet Contacts
  cleaner clean contacts.csv --dry-run > preview.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCleanFlags(cmd, a.cfg, f)
			return a.runClean(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", DefaultOutput, "output file (.csv or .xlsx)")
	flags.StringVar(&f.sheet, "sheet", "", "worksheet to read from a spreadsheet input (default: first sheet)")
	flags.StringVar(&f.rules, "rules", "", "YAML file overriding column names and parsing rules")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the cleaned table as CSV to stdout instead of writing a file")
	flags.StringVar(&f.pgTable, "pg-table", "", "destination table for the Postgres export (requires DATABASE_URL)")
	flags.BoolVar(&f.pgTruncate, "pg-truncate", false, "empty the destination table before exporting")

	return cmd
}

// applyCleanFlags lets explicitly set flags override the environment.
func applyCleanFlags(cmd *cobra.Command, cfg *config.Config, f cleanFlags) {
	flags := cmd.Flags()
	if flags.Changed("sheet") {
		cfg.Input.Sheet = f.sheet
	}
	if flags.Changed("rules") {
		cfg.Input.RulesFile = f.rules
	}
	if flags.Changed("pg-table") {
		cfg.Database.Table = f.pgTable
	}
	if flags.Changed("pg-truncate") {
		cfg.Database.Truncate = f.pgTruncate
	}
}

func (a *app) runClean(cmd *cobra.Command, input string, f cleanFlags) error {
	ctx, _ := logging.WithRunID(cmd.Context())
	cfg := a.cfg

	rules, err := config.LoadRules(a.fs, cfg.Input.RulesFile)
	if err != nil {
		return err
	}

	opts := core.ServiceOptions{
		Read:  readOptions(cfg, rules),
		Write: writeOptions(cfg),
	}
	cleaner := core.NewCleaner(cleanerOptions(cfg, rules))

	if f.dryRun {
		svc := core.NewService(a.fs, cleaner, opts)
		out, report, err := svc.Preview(ctx, input)
		if err != nil {
			return err
		}
		if err := tableio.Encode(cmd.OutOrStdout(), "stdout.csv", out, opts.Write); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Dry run of %s\n", input)
		printReport(cmd.ErrOrStderr(), report)
		return nil
	}

	if cfg.Database.ExportEnabled() {
		db, err := a.connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		exporter, err := pgexport.NewExporter(db, cfg.Database.Table, cfg.Database.Truncate)
		if err != nil {
			return err
		}
		opts.Exporter = exporter
	}

	svc := core.NewService(a.fs, cleaner, opts)
	report, err := svc.Run(ctx, input, f.output)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %s -> %s\n", input, f.output)
	printReport(cmd.OutOrStdout(), report)
	return nil
}
