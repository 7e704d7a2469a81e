// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package perfctlcmd provides shared wiring for perfctl commands (reading
// config, applying flag overrides, opening the journal and the cache).
package perfctlcmd

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlcache"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlconfig"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlpath"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlstore"
	"github.com/bufdev/perfctl/internal/pkg/aggregate"
	"github.com/bufdev/perfctl/internal/pkg/cliio"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/spf13/pflag"
)

const (
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// MaxRowsFlagName is the flag name for capping rows read per sheet.
	MaxRowsFlagName = "max-rows"
)

// BindFormatFlag binds the --format flag.
func BindFormatFlag(flagSet *pflag.FlagSet, format *string) {
	flagSet.StringVar(format, FormatFlagName, string(cliio.FormatTable), "Output format (table, csv, json)")
}

// BindMaxRowsFlag binds the --max-rows flag.
func BindMaxRowsFlag(flagSet *pflag.FlagSet, maxRows *int) {
	flagSet.IntVar(maxRows, MaxRowsFlagName, 0, "Read at most this many rows per sheet, 0 uses the configured value")
}

// ParseFormat parses the --format flag value into an invalid argument error on failure.
func ParseFormat(value string) (cliio.Format, error) {
	format, err := cliio.ParseFormat(value)
	if err != nil {
		return "", appcmd.NewInvalidArgumentError(err.Error())
	}
	return format, nil
}

// ReadConfig reads the configuration file, falling back to defaults if there is none.
func ReadConfig(container appext.Container) (*perfctlconfig.Config, error) {
	return perfctlconfig.ReadConfigOrDefault(container.ConfigDirPath())
}

// ReportOptions returns the pipeline options from the config with the
// --max-rows override applied.
func ReportOptions(config *perfctlconfig.Config, maxRows int) (perfctlreport.Options, error) {
	if maxRows < 0 {
		return perfctlreport.Options{}, appcmd.NewInvalidArgumentErrorf("--%s must be non-negative", MaxRowsFlagName)
	}
	options := config.ReportOptions()
	if maxRows > 0 {
		options.MaxRows = maxRows
	}
	return options, nil
}

// Args returns the positional arguments.
func Args(container appext.Container) []string {
	args := make([]string, 0, container.NumArgs())
	for i := range container.NumArgs() {
		args = append(args, container.Arg(i))
	}
	return args
}

// AnalyzeFile reads the config and analyzes the single file argument.
func AnalyzeFile(ctx context.Context, container appext.Container, maxRows int) (*perfctlreport.Report, error) {
	config, err := ReadConfig(container)
	if err != nil {
		return nil, err
	}
	options, err := ReportOptions(config, maxRows)
	if err != nil {
		return nil, err
	}
	return perfctlreport.AnalyzeFile(ctx, container.Logger(), container.Arg(0), options)
}

// JournalFilePath returns the configured journal path, or the default path
// in the data directory.
func JournalFilePath(container appext.Container, config *perfctlconfig.Config) string {
	if config.JournalPath != "" {
		return config.JournalPath
	}
	return perfctlpath.JournalFilePath(container.DataDirPath())
}

// OpenJournal opens the journal. The caller must close it.
func OpenJournal(ctx context.Context, container appext.Container, config *perfctlconfig.Config) (*perfctlstore.Store, error) {
	journalFilePath := JournalFilePath(container, config)
	store, err := perfctlstore.Open(ctx, journalFilePath)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", journalFilePath, err)
	}
	return store, nil
}

// NewCache returns the summary cache, or nil if the cache is disabled.
func NewCache(container appext.Container, config *perfctlconfig.Config, noCache bool) *perfctlcache.Cache {
	if noCache || config.CacheDisabled {
		return nil
	}
	return perfctlcache.New(container.Logger(), perfctlpath.CacheSummariesDirPath(container.CacheDirPath()))
}

// WriteGroups writes aggregate groups keyed by keyName. Table output ends
// with a totals row.
func WriteGroups(container appext.Container, format cliio.Format, keyName string, groups []aggregate.Group) error {
	writer := container.Stdout()
	headers := perfctlreport.GroupHeaders(keyName)
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, perfctlreport.GroupToRow(group))
	}
	switch format {
	case cliio.FormatTable:
		return cliio.WriteTableWithTotals(writer, headers, rows, perfctlreport.GroupTotalsRow(groups))
	case cliio.FormatCSV:
		return cliio.WriteRows(writer, format, headers, rows)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, groups...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}

// WriteTrades writes trades. Table and CSV columns follow
// perfctlreport.TradeCSVHeaders.
func WriteTrades(container appext.Container, format cliio.Format, trades []ledger.Trade) error {
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable, cliio.FormatCSV:
		rows := make([][]string, 0, len(trades))
		for _, trade := range trades {
			rows = append(rows, perfctlreport.TradeToCSVRow(trade))
		}
		return cliio.WriteRows(writer, format, perfctlreport.TradeCSVHeaders, rows)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, perfctlreport.NewExternalTrades(trades)...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
