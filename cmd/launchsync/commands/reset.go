package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/internal/cli/prompt"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every cached launch and remote key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := prompt.Confirm("Delete the whole launch cache", false)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.coordinator.Reset(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
