// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package serve implements the "serve" command.
package serve

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/perfctlcmd"
	"github.com/bufdev/perfctl/internal/perfctl/perfctlserver"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

const (
	// addressFlagName is the flag name for the listen address.
	addressFlagName = "address"
	// noJournalFlagName is the flag name for serving without the journal.
	noJournalFlagName = "no-journal"
)

// NewCommand returns a new serve command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Serve report analysis over HTTP",
		Long: `Serve report analysis over HTTP.

Routes:
  GET  /healthz
  POST /v1/reports              analyze the multipart "file" upload, ?save=true journals it
  GET  /v1/reports              list journaled reports
  GET  /v1/reports/:id/trades   list the trades of a journaled report
  GET  /v1/reports/:id/equity   list the equity series of a journaled report`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Address is the listen address.
	Address string
	// NoJournal disables the journal routes.
	NoJournal bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Address, addressFlagName, "", "The listen address, empty uses the configured value")
	flagSet.BoolVar(&f.NoJournal, noJournalFlagName, false, "Serve without the journal routes")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := perfctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	address := config.ServerAddress
	if flags.Address != "" {
		address = flags.Address
	}
	logger := container.Logger()
	gin.SetMode(gin.ReleaseMode)
	var serverOptions []perfctlserver.ServerOption
	if !flags.NoJournal {
		store, err := perfctlcmd.OpenJournal(ctx, container, config)
		if err != nil {
			return err
		}
		defer func() {
			retErr = errors.Join(retErr, store.Close())
		}()
		serverOptions = append(serverOptions, perfctlserver.WithJournal(store))
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return perfctlserver.New(logger, config.ReportOptions(), serverOptions...).Run(ctx, address)
}
