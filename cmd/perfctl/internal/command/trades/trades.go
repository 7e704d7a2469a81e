// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package trades implements the "trades" command.
package trades

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/pkg/ledger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// closedFlagName is the flag name for listing only closing deals.
const closedFlagName = "closed"

// NewCommand returns a new trades command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE",
		Short: "List the canonical trades parsed from an .xlsx trade export",
		Args:  cobra.ExactArgs(1),
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
	// Closed lists only closing deals.
	Closed bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	perfctlcmd.BindFormatFlag(flagSet, &f.Format)
	perfctlcmd.BindMaxRowsFlag(flagSet, &f.MaxRows)
	flagSet.BoolVar(&f.Closed, closedFlagName, false, "List only closing deals")
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
	trades := report.Trades()
	if flags.Closed {
		trades = ledger.ClosedTrades(trades)
	}
	return perfctlcmd.WriteTrades(container, format, trades)
}
