// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package journaltrades implements the "journal trades" command.
package journaltrades

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlstore"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCommand returns a new journal trades command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " REPORT_ID",
		Short: "List the trades of a report saved in the journal",
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
	trades, err := store.GetTrades(ctx, container.Arg(0))
	if err != nil {
		if errors.Is(err, perfctlstore.ErrNotFound) {
			return appcmd.NewInvalidArgumentError(err.Error())
		}
		return err
	}
	return perfctlcmd.WriteTrades(container, format, trades)
}
