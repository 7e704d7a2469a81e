// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package equity implements the "equity" command.
package equity

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/bufdev/perfctl/internal/pkg/cliio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCommand returns a new equity command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE",
		Short: "Print the balance series of an .xlsx trade export",
		Long: `Print the balance series of an .xlsx trade export.

The series is taken from the export's balance column when every deal has
one, and is otherwise rebuilt from the initial balance and closed profits.`,
		Args: cobra.ExactArgs(1),
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	perfctlcmd.BindFormatFlag(flagSet, &f.Format)
	perfctlcmd.BindMaxRowsFlag(flagSet, &f.MaxRows)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := perfctlcmd.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	report, err := perfctlcmd.AnalyzeFile(ctx, container, flags.MaxRows)
	if err != nil {
		return err
	}
	equity := report.Equity()
	if equity.Synthesized {
		container.Logger().Info("balance column incomplete, equity rebuilt from closed profits")
	}
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable, cliio.FormatCSV:
		rows := make([][]string, 0, len(equity.Points))
		for _, point := range equity.Points {
			rows = append(rows, perfctlreport.EquityPointToRow(point))
		}
		return cliio.WriteRows(writer, format, perfctlreport.EquityHeaders, rows)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, equity.Points...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
