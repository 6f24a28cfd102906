package core

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/logging"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

// ExportTimeout is the maximum duration for the database export step.
var ExportTimeout = 2 * time.Minute

// maxLoggedRejections caps the per-row debug lines written for one run.
const maxLoggedRejections = 20

// Exporter receives the cleaned table after it has been written.
type Exporter interface {
	Export(ctx context.Context, t *table.Table) (int64, error)
}

// ServiceOptions configures file handling around the cleaner.
type ServiceOptions struct {
	Read  tableio.ReadOptions
	Write tableio.WriteOptions

	// Exporter is optional. When set, Run hands it the cleaned table.
	Exporter Exporter
}

// Service runs the load, clean, save pipeline over a filesystem.
type Service struct {
	fs      afero.Fs
	cleaner *Cleaner
	opts    ServiceOptions
}

// NewService creates a new Service. A nil cleaner uses DefaultOptions.
func NewService(fs afero.Fs, cleaner *Cleaner, opts ServiceOptions) *Service {
	if cleaner == nil {
		cleaner = NewCleaner(DefaultOptions())
	}
	return &Service{fs: fs, cleaner: cleaner, opts: opts}
}

// Run cleans the file at inputPath and writes the result to outputPath.
// Both formats are checked before anything is read, so an unsupported
// extension on either side leaves no output behind.
func (s *Service) Run(ctx context.Context, inputPath, outputPath string) (Report, error) {
	ctx, _ = logging.WithRunID(ctx)
	logger := logging.WithFields(ctx, "input", inputPath, "output", outputPath)

	if err := tableio.CheckReadable(inputPath); err != nil {
		return Report{}, err
	}
	if err := tableio.CheckWritable(outputPath); err != nil {
		return Report{}, err
	}

	start := time.Now()
	cleaned, report, err := s.loadAndClean(ctx, inputPath)
	if err != nil {
		return report, err
	}

	if err := tableio.Save(s.fs, outputPath, cleaned, s.opts.Write); err != nil {
		logger.Error("save failed", "error", err)
		return report, fmt.Errorf("save %s: %w", outputPath, err)
	}
	logger.Info("output written", "rows", cleaned.Len())

	if s.opts.Exporter != nil {
		exportCtx, cancel := context.WithTimeout(ctx, ExportTimeout)
		defer cancel()

		n, err := s.opts.Exporter.Export(exportCtx, cleaned)
		if err != nil {
			logger.Error("export failed", "error", err)
			return report, fmt.Errorf("export: %w", err)
		}
		report.Exported = n
		logger.Info("rows exported", "rows", n)
	}

	logger.Info("cleaning completed",
		"input_rows", report.InputRows,
		"dropped_rows", report.DroppedRows,
		"merged_rows", report.MergedRows,
		"output_rows", report.OutputRows,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// Preview loads and cleans inputPath without writing anything.
func (s *Service) Preview(ctx context.Context, inputPath string) (*table.Table, Report, error) {
	ctx, _ = logging.WithRunID(ctx)
	return s.loadAndClean(ctx, inputPath)
}

func (s *Service) loadAndClean(ctx context.Context, inputPath string) (*table.Table, Report, error) {
	logger := logging.WithFields(ctx, "input", inputPath)

	in, err := tableio.Load(ctx, s.fs, inputPath, s.opts.Read)
	if err != nil {
		logger.Error("load failed", "error", err)
		return nil, Report{}, err
	}
	logger.Debug("table loaded", "rows", in.Len(), "columns", len(in.Columns))

	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}

	cleaned, report := s.cleaner.CleanReport(in)
	for i, rej := range report.Rejected {
		if i == maxLoggedRejections {
			logger.Debug("more rows rejected", "count", len(report.Rejected)-i)
			break
		}
		logger.Debug("row rejected", "row", rej.Row, "field", rej.Field, "reason", rej.Message)
	}
	if report.DroppedRows > 0 {
		logger.Info("rows dropped", "count", report.DroppedRows, "by_field", report.DroppedByField)
	}

	return cleaned, report, nil
}
