// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package analyze implements the "analyze" command.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlcache"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/cliio"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// noCacheFlagName is the flag name for bypassing the summary cache.
	noCacheFlagName = "no-cache"
	// parallelismFlagName is the flag name for the number of files analyzed at once.
	parallelismFlagName = "parallelism"
)

// NewCommand returns a new analyze command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE...",
		Short: "Print the performance summary of one or more .xlsx trade exports",
		Long: `Print the performance summary of one or more .xlsx trade exports.

MetaTrader 4 and 5 deal history reports and TradingView "List of trades"
exports are detected automatically. Files that match no known layout are
parsed positionally and marked as low confidence.

With several files the table and CSV output have one column per file.`,
		Args: cobra.MinimumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Format is the output format (table, csv, json).
	Format string
	// MaxRows caps the rows read per sheet.
	MaxRows int
	// NoCache bypasses the summary cache.
	NoCache bool
	// Parallelism is the number of files analyzed at once.
	Parallelism int
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	perfctlcmd.BindFormatFlag(flagSet, &f.Format)
	perfctlcmd.BindMaxRowsFlag(flagSet, &f.MaxRows)
	flagSet.BoolVar(&f.NoCache, noCacheFlagName, false, "Do not read or write the summary cache")
	flagSet.IntVar(&f.Parallelism, parallelismFlagName, 0, "The number of files analyzed at once, 0 uses the configured value")
}

// fileSummary is the summary of one analyzed file.
type fileSummary struct {
	path  string
	entry *perfctlcache.Entry
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := perfctlcmd.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	if flags.Parallelism < 0 {
		return appcmd.NewInvalidArgumentErrorf("--%s must be non-negative", parallelismFlagName)
	}
	config, err := perfctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	options, err := perfctlcmd.ReportOptions(config, flags.MaxRows)
	if err != nil {
		return err
	}
	parallelism := config.Parallelism
	if flags.Parallelism > 0 {
		parallelism = flags.Parallelism
	}
	logger := container.Logger()
	cache := perfctlcmd.NewCache(container, config, flags.NoCache)
	paths := perfctlcmd.Args(container)

	// Serve what we can from the cache, remembering the key of every miss.
	summaries := make([]fileSummary, len(paths))
	keys := make(map[string]string)
	var missPaths []string
	for i, path := range paths {
		summaries[i].path = path
		if cache == nil {
			missPaths = append(missPaths, path)
			continue
		}
		entry, key := lookup(logger, cache, path, options)
		if entry != nil {
			summaries[i].entry = entry
			continue
		}
		if key != "" {
			keys[path] = key
		}
		missPaths = append(missPaths, path)
	}

	// Analyze the misses concurrently. A failure in one file does not stop the others.
	var errs []error
	entries := make(map[string]*perfctlcache.Entry)
	for _, fileResult := range perfctlreport.AnalyzeFiles(ctx, logger, missPaths, options, parallelism) {
		if fileResult.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fileResult.Path, fileResult.Err))
			continue
		}
		entry := perfctlcache.NewEntry(fileResult.Report)
		entries[fileResult.Path] = entry
		if key, ok := keys[fileResult.Path]; ok {
			if err := cache.Put(key, entry); err != nil {
				logger.Warn("writing summary cache", slog.String("file", fileResult.Path), slog.Any("error", err))
			}
		}
	}
	var successful []fileSummary
	for _, summary := range summaries {
		if summary.entry == nil {
			summary.entry = entries[summary.path]
		}
		if summary.entry != nil {
			successful = append(successful, summary)
		}
	}
	if len(successful) > 0 {
		if err := write(container, format, successful); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// lookup returns the cached entry for the file, or nil and the key to store
// the entry under. The key is empty if the file could not be read, in which
// case the analysis reports the error.
func lookup(logger *slog.Logger, cache *perfctlcache.Cache, path string, options perfctlreport.Options) (*perfctlcache.Entry, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ""
	}
	key := perfctlcache.Key(path, data, options)
	entry, ok, err := cache.Get(key)
	if err != nil {
		logger.Warn("reading summary cache", slog.String("file", path), slog.Any("error", err))
		return nil, key
	}
	if !ok {
		return nil, key
	}
	logger.Debug("summary cache hit", slog.String("file", path))
	return entry, key
}

func write(container appext.Container, format cliio.Format, summaries []fileSummary) error {
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable, cliio.FormatCSV:
		headers := []string{"Metric"}
		columns := make([][]metrics.Entry, 0, len(summaries))
		for _, summary := range summaries {
			headers = append(headers, summary.entry.FileName)
			columns = append(columns, summary.entry.Summary.Entries())
		}
		rows := [][]string{
			headerRow("Source", summaries, func(entry *perfctlcache.Entry) string { return entry.Source }),
			headerRow("Format", summaries, formatLabel),
		}
		for i, key := range metrics.DisplayKeys {
			row := []string{key}
			for _, column := range columns {
				row = append(row, column[i].String())
			}
			rows = append(rows, row)
		}
		return cliio.WriteRows(writer, format, headers, rows)
	case cliio.FormatJSON:
		outputs := make([]output, 0, len(summaries))
		for _, summary := range summaries {
			outputs = append(outputs, newOutput(summary))
		}
		return cliio.WriteJSON(writer, outputs...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}

func headerRow(name string, summaries []fileSummary, value func(*perfctlcache.Entry) string) []string {
	row := []string{name}
	for _, summary := range summaries {
		row = append(row, value(summary.entry))
	}
	return row
}

func formatLabel(entry *perfctlcache.Entry) string {
	if entry.LowConfidence {
		return entry.Format + " (low confidence)"
	}
	return entry.Format
}

// output is the JSON form of one analyzed file.
type output struct {
	Path          string             `json:"path"`
	FileName      string             `json:"file_name"`
	Source        string             `json:"source"`
	Format        string             `json:"format"`
	LowConfidence bool               `json:"low_confidence"`
	TradeCount    int                `json:"trade_count"`
	Summary       map[string]any     `json:"summary"`
	Diagnostics   ledger.Diagnostics `json:"diagnostics"`
}

func newOutput(summary fileSummary) output {
	return output{
		Path:          summary.path,
		FileName:      summary.entry.FileName,
		Source:        summary.entry.Source,
		Format:        summary.entry.Format,
		LowConfidence: summary.entry.LowConfidence,
		TradeCount:    summary.entry.TradeCount,
		Summary:       summary.entry.Summary.Map(),
		Diagnostics:   summary.entry.Diagnostics,
	}
}
