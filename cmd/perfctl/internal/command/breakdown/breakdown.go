// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package breakdown implements the "breakdown" command group.
package breakdown

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/breakdown/breakdownmonthly"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/breakdown/breakdownsymbols"
)

// NewCommand returns a new breakdown command group with monthly and symbols sub-commands.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Break closed-trade results down by month or symbol",
		SubCommands: []*appcmd.Command{
			breakdownmonthly.NewCommand("monthly", builder),
			breakdownsymbols.NewCommand("symbols", builder),
		},
	}
}
