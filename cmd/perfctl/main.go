// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/analyze"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/breakdown"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/config"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/equity"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/journal"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/serve"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/trades"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("perfctl"))
}

// newRootCommand creates the root perfctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Analyze MetaTrader and TradingView trade history exports",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			analyze.NewCommand("analyze", builder),
			breakdown.NewCommand("breakdown", builder),
			config.NewCommand("config", builder),
			equity.NewCommand("equity", builder),
			journal.NewCommand("journal", builder),
			serve.NewCommand("serve", builder),
			trades.NewCommand("trades", builder),
		},
	}
}
