// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package journallist implements the "journal list" command.
package journallist

import (
	"context"
	"errors"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlstore"
	"github.com/bufdev/perfctl/internal/pkg/cliio"
	"github.com/bufdev/perfctl/internal/pkg/metrics"
	"github.com/spf13/pflag"
)

var headers = []string{"ID", "Imported", "File", "Source", "Format", "Trades", "Net Profit", "Win Rate", "Profit Factor"}

// NewCommand returns a new journal list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List the reports saved in the journal",
		Args:  appcmd.NoArgs,
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	perfctlcmd.BindFormatFlag(flagSet, &f.Format)
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := perfctlcmd.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	config, err := perfctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	store, err := perfctlcmd.OpenJournal(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	records, err := store.ListReports(ctx)
	if err != nil {
		return err
	}
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable, cliio.FormatCSV:
		rows := make([][]string, 0, len(records))
		for _, record := range records {
			rows = append(rows, recordToRow(record))
		}
		return cliio.WriteRows(writer, format, headers, rows)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, records...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}

func recordToRow(record perfctlstore.ReportRecord) []string {
	profitFactor := strconv.FormatFloat(record.Summary.ProfitFactor, 'f', 2, 64)
	if record.Summary.ProfitFactorIsUnbounded {
		profitFactor = metrics.UnboundedDisplay
	}
	return []string{
		record.ID,
		record.ImportedAt.Format(perfctlreport.TimeLayout),
		record.FileName,
		record.Source,
		record.Format,
		strconv.Itoa(record.Summary.TotalTrades),
		strconv.FormatFloat(record.Summary.NetProfit, 'f', 2, 64),
		strconv.FormatFloat(record.Summary.WinRate, 'f', 2, 64),
		profitFactor,
	}
}
