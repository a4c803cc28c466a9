package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/internal/cli/output"
	"github.com/viant/launchsync/launch"
)

type listedLaunch struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Net         time.Time      `json:"net"`
	Details     launch.Details `json:"details"`
	LastUpdated time.Time      `json:"last_updated"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		offset int
		format string
	)
	cmd := &cobra.Command{
		Use:   "list <partition>",
		Short: "Print cached launches of a partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := launch.ParsePartition(args[0])
			if err != nil {
				return err
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported output %q", format)
			}
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			rows, err := rt.db.Launches().GetOrdered(cmd.Context(), p, limit, offset)
			if err != nil {
				return err
			}
			if format == "json" {
				out := make([]listedLaunch, 0, len(rows))
				for _, l := range rows {
					out = append(out, listedLaunch{ID: l.ID, Name: l.Name, Net: l.Net, Details: l.Details, LastUpdated: l.LastUpdated})
				}
				return output.PrintJSON(cmd.OutOrStdout(), out)
			}
			table := output.NewTableData("net", "name", "status", "provider", "id")
			for _, l := range rows {
				table.AddRow(l.Net.Format(time.RFC3339), l.Name, l.Details.Status, l.Details.Provider, l.ID)
			}
			return output.PrintTable(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to print; 0 prints all")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table or json")
	return cmd
}
