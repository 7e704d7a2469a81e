// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package breakdownsymbols implements the "breakdown symbols" command.
package breakdownsymbols

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCommand returns a new breakdown symbols command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE",
		Short: "Break closed-trade results down by symbol, most profitable first",
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
	return perfctlcmd.WriteGroups(container, format, "Symbol", report.BySymbol())
}
