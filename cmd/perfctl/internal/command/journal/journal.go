// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package journal implements the "journal" command group.
package journal

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/journal/journalimport"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/journal/journallist"
	"github.com/bufdev/perfctl/cmd/perfctl/internal/command/journal/journaltrades"
)

// NewCommand returns a new journal command group with import, list, and trades sub-commands.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Keep analyzed reports in a local SQLite journal",
		SubCommands: []*appcmd.Command{
			journalimport.NewCommand("import", builder),
			journallist.NewCommand("list", builder),
			journaltrades.NewCommand("trades", builder),
		},
	}
}
