package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/internal/cli/output"
)

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Wipe partitions holding stale rows",
		Long: `Wipe every partition that holds a row older than sync.stale_after.
A wiped partition is reloaded from the first page on its next sync.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return err
				}
				now = t
			}
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.coordinator.Sweep(cmd.Context(), now)
			if err != nil {
				return err
			}
			wiped := make([]string, 0, len(report.Wiped))
			for _, p := range report.Wiped {
				wiped = append(wiped, p.String())
			}
			table := output.NewTableData("threshold", "stale rows", "wiped")
			table.AddRow(report.Threshold.Format(time.RFC3339), strconv.Itoa(report.StaleRows), strings.Join(wiped, ","))
			return output.PrintTable(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().StringVar(&at, "now", "", "evaluate staleness at this RFC3339 instant instead of the current time")
	return cmd
}
