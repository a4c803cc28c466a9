// Package commands implements the launchsync CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootOptions carries the global flags shared by every command.
type rootOptions struct {
	configFile string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "launchsync",
		Short: "launchsync - offline launch cache synchronizer",
		Long: `launchsync mirrors the Launch Library upcoming and past launch timelines
into a local cache, one page at a time, and serves the cached rows.

Configuration comes from --config, LAUNCHSYNC_* environment variables and
built-in defaults, in that order of precedence.

Use "launchsync [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML)")

	root.AddCommand(
		newSyncCmd(opts),
		newListCmd(opts),
		newSweepCmd(opts),
		newResetCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "launchsync %s (commit %s, built %s)\n", Version, Commit, Date)
			return nil
		},
	}
}
