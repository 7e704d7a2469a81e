// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlreport runs the analysis pipeline and holds its result.
//
// The pipeline reads a workbook, detects its format, parses it into canonical
// trades, reconciles the equity series, and computes the summary and the
// monthly and per-symbol aggregates. Only container failures and unsupported
// extensions are returned as errors. Everything else yields a best-effort
// Report.
package perfctlreport

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bufdev/perfctl/internal/pkg/aggregate"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/bufdev/perfctl/internal/pkg/mtdeals"
	"github.com/bufdev/perfctl/internal/pkg/sheetformat"
	"github.com/bufdev/perfctl/internal/pkg/tvtrades"
	"github.com/bufdev/perfctl/internal/pkg/xlsxsheet"
	"golang.org/x/sync/errgroup"
)

// Source is the platform that produced the export.
type Source string

const (
	// SourceMT4 is MetaTrader 4.
	SourceMT4 Source = "MT4"
	// SourceMT5 is MetaTrader 5.
	SourceMT5 Source = "MT5"
	// SourceTradingView is the TradingView strategy tester.
	SourceTradingView Source = "TradingView"
)

// Options configures the pipeline.
type Options struct {
	// MaxRows caps the rows read per sheet. Zero means no cap.
	MaxRows int
	// InitialCapital is the starting balance for TradingView exports, whose
	// cumulative profit starts at zero.
	InitialCapital float64
	// Metrics configures the summary.
	Metrics metrics.Options
	// Now returns the fallback timestamp for unparseable times. It is called
	// once per file. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Metrics: metrics.DefaultOptions(),
	}
}

func (o Options) fallbackTime() time.Time {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Second)
}

// Parsed is the result of parsing a workbook, before reconciliation.
type Parsed struct {
	// Format is the detected format.
	Format sheetformat.Format
	// Trades are the canonical trades in file order.
	Trades []ledger.Trade
	// Diagnostics counts recovered problems.
	Diagnostics ledger.Diagnostics
	// LowConfidence is true when the positional fallback produced the trades.
	LowConfidence bool
}

// Parse detects the workbook format and parses its trades.
func Parse(logger *slog.Logger, workbook *xlsxsheet.Workbook, options Options) Parsed {
	detection := sheetformat.Detect(workbook)
	parsed := Parsed{Format: detection.Format}
	if detection.Sheet == nil {
		return parsed
	}
	fallbackTime := options.fallbackTime()
	switch detection.Format {
	case sheetformat.FormatTradingViewList:
		result := tvtrades.Parse(logger, detection.Sheet.Rows, tvtrades.Options{FallbackTime: fallbackTime})
		parsed.Trades = result.Trades
		parsed.Diagnostics = result.Diagnostics
		logger.Debug("tradingview running drawdown", "file", workbook.FileName, "max_drawdown", result.RunningMaxDrawdown)
	case sheetformat.FormatMT4Deals, sheetformat.FormatMT5Deals:
		result := mtdeals.Parse(logger, detection.Sheet.Rows, detection.HeaderRow, mtdeals.Options{FallbackTime: fallbackTime})
		parsed.Trades = result.Trades
		parsed.Diagnostics = result.Diagnostics
	default:
		result := mtdeals.ParseFallback(logger, detection.Sheet.Rows, mtdeals.Options{FallbackTime: fallbackTime})
		parsed.Trades = result.Trades
		parsed.Diagnostics = result.Diagnostics
		parsed.LowConfidence = result.LowConfidence
	}
	return parsed
}

// Assemble reconciles and summarizes the parsed trades into a Report.
func Assemble(fileName string, parsed Parsed, options Options) *Report {
	source := sourceFor(fileName, parsed.Format)
	reconcileOptions := ledger.ReconcileOptions{}
	if source == SourceTradingView {
		reconcileOptions.InitialCapital = options.InitialCapital
	}
	equity := ledger.Reconcile(parsed.Trades, reconcileOptions)
	return &Report{
		source:        source,
		fileName:      filepath.Base(fileName),
		format:        parsed.Format,
		lowConfidence: parsed.LowConfidence,
		trades:        ledger.CloneTrades(parsed.Trades),
		equity:        equity,
		summary:       metrics.Compute(parsed.Trades, equity, options.Metrics),
		monthly:       aggregate.Monthly(parsed.Trades),
		bySymbol:      aggregate.BySymbol(parsed.Trades),
		diagnostics:   parsed.Diagnostics,
	}
}

// Analyze runs the pipeline on the workbook read from reader.
//
// The fileName is used for the extension check and the MT4/MT5 distinction.
func Analyze(ctx context.Context, logger *slog.Logger, fileName string, reader io.Reader, options Options) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workbook, err := xlsxsheet.Read(fileName, reader, xlsxsheet.ReadOptions{MaxRows: options.MaxRows})
	if err != nil {
		return nil, err
	}
	return analyzeWorkbook(logger, workbook, options), nil
}

// AnalyzeFile runs the pipeline on the file at filePath.
func AnalyzeFile(ctx context.Context, logger *slog.Logger, filePath string, options Options) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workbook, err := xlsxsheet.ReadFile(filePath, xlsxsheet.ReadOptions{MaxRows: options.MaxRows})
	if err != nil {
		return nil, err
	}
	return analyzeWorkbook(logger, workbook, options), nil
}

// FileResult is the outcome of analyzing one file with AnalyzeFiles.
type FileResult struct {
	// Path is the analyzed file path.
	Path string
	// Report is set when Err is nil.
	Report *Report
	// Err is the error for this file only.
	Err error
}

// AnalyzeFiles analyzes the files concurrently, at most parallelism at a time.
//
// Results are in the order of filePaths. A failure in one file is recorded
// in its FileResult and does not affect the others.
func AnalyzeFiles(ctx context.Context, logger *slog.Logger, filePaths []string, options Options, parallelism int) []FileResult {
	results := make([]FileResult, len(filePaths))
	var group errgroup.Group
	if parallelism > 0 {
		group.SetLimit(parallelism)
	}
	for i, filePath := range filePaths {
		group.Go(func() error {
			report, err := AnalyzeFile(ctx, logger, filePath, options)
			if err != nil {
				logger.Warn("analysis failed", "file", filePath, "error", err)
			}
			results[i] = FileResult{
				Path:   filePath,
				Report: report,
				Err:    err,
			}
			// Never return the error so siblings keep running.
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func analyzeWorkbook(logger *slog.Logger, workbook *xlsxsheet.Workbook, options Options) *Report {
	parsed := Parse(logger, workbook, options)
	if !parsed.Diagnostics.IsZero() {
		logger.Warn("recovered from malformed rows",
			"file", workbook.FileName,
			"format", parsed.Format.String(),
			"skipped_rows", parsed.Diagnostics.SkippedRows,
			"fallback_times", parsed.Diagnostics.FallbackTimes,
			"coerced_numbers", parsed.Diagnostics.CoercedNumbers,
		)
	}
	if parsed.LowConfidence {
		logger.Warn("no header row found, trades were read by column position and may be wrong", "file", workbook.FileName)
	}
	return Assemble(workbook.FileName, parsed, options)
}

func sourceFor(fileName string, format sheetformat.Format) Source {
	switch {
	case format == sheetformat.FormatTradingViewList:
		return SourceTradingView
	case format == sheetformat.FormatMT4Deals, sheetformat.IsMT4FileName(fileName):
		return SourceMT4
	default:
		return SourceMT5
	}
}
