// Package cmd wires the filescout CLI: the run, search and history
// subcommands plus the shared sink bridging task events to the terminal.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for filescout
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filescout",
		Short: "Search and copy measurement files by keyword and version",
		Long: `Filescout searches a set of source directories for measurement and
report files (.xlsx, .dxd, .d7d) matching keyword and version-number
criteria, then copies the matches into a destination tree.

Copies are deduplicated by content hash across the whole run, name
collisions with different content are resolved by renaming, and the
destination subfolder mirrors each file's immediate source folder.

Configuration is loaded from .filescout/config.yaml if present.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
