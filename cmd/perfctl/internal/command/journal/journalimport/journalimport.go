// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package journalimport implements the "journal import" command.
package journalimport

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlreport"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCommand returns a new journal import command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " FILE...",
		Short: "Analyze .xlsx trade exports and save the reports to the journal",
		Long: `Analyze .xlsx trade exports and save the reports to the journal.

The ID of each saved report is printed next to its file. Files that fail
to analyze are reported and skipped.`,
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
	// MaxRows caps the rows read per sheet.
	MaxRows int
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	perfctlcmd.BindMaxRowsFlag(flagSet, &f.MaxRows)
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := perfctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	options, err := perfctlcmd.ReportOptions(config, flags.MaxRows)
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
	var errs []error
	fileResults := perfctlreport.AnalyzeFiles(ctx, container.Logger(), perfctlcmd.Args(container), options, config.Parallelism)
	// Save sequentially so IDs follow argument order.
	for _, fileResult := range fileResults {
		if fileResult.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fileResult.Path, fileResult.Err))
			continue
		}
		id, err := store.SaveReport(ctx, fileResult.Report)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(container.Stdout(), "%s\t%s\n", id, fileResult.Path); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
