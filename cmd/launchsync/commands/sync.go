package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/internal/cli/output"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/pager"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		direction string
		pages     int
	)
	cmd := &cobra.Command{
		Use:   "sync [partition...]",
		Short: "Load pages from the remote into the cache",
		Long: `Run synchronization steps for one or more partitions (upcoming, past).
Without arguments both partitions are synchronized.

The first step uses --direction; further steps requested with --pages
append until the remote reports the last page. An empty partition is
always refreshed first.

Examples:
  # Refresh both partitions
  launchsync sync

  # Refresh upcoming and load two more pages
  launchsync sync upcoming --pages 3

  # Extend the cached past timeline by one page
  launchsync sync past --direction append`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := launchsync.ParseDirection(direction)
			if err != nil {
				return err
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			partitions, err := partitionArgs(args)
			if err != nil {
				return err
			}

			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			table := output.NewTableData("partition", "direction", "status", "end reached", "cached")
			var failed error
			for _, p := range partitions {
				if err := syncPartition(cmd, rt, p, d, pages, table); err != nil && failed == nil {
					failed = err
				}
			}
			if err := output.PrintTable(cmd.OutOrStdout(), table); err != nil {
				return err
			}
			return failed
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", launchsync.Refresh.String(), "first step direction: refresh, append or prepend")
	cmd.Flags().IntVarP(&pages, "pages", "n", 1, "number of pages to load per partition")
	return cmd
}

func syncPartition(cmd *cobra.Command, rt *appRuntime, p launch.Partition, d launchsync.Direction, pages int, table *output.TableData) error {
	ctx := cmd.Context()
	pg, err := pager.New(rt.coordinator, rt.db, p)
	if err != nil {
		return err
	}
	if _, err := pg.Open(ctx); err != nil {
		return err
	}

	step := map[launchsync.Direction]func() launchsync.Result{
		launchsync.Refresh: func() launchsync.Result { return pg.Refresh(ctx) },
		launchsync.Append:  func() launchsync.Result { return pg.Append(ctx) },
		launchsync.Prepend: func() launchsync.Result { return pg.Prepend(ctx) },
	}
	for i := 0; i < pages; i++ {
		switch res := step[d]().(type) {
		case launchsync.Success:
			table.AddRow(p.String(), d.String(), "ok", strconv.FormatBool(res.EndOfPaginationReached), strconv.Itoa(len(pg.Items())))
			if res.EndOfPaginationReached && d != launchsync.Prepend {
				return nil
			}
		case launchsync.Error:
			table.AddRow(p.String(), d.String(), "error", "-", strconv.Itoa(len(pg.Items())))
			return fmt.Errorf("sync %s: %w", p, res)
		}
		d = launchsync.Append
	}
	return nil
}

func partitionArgs(args []string) ([]launch.Partition, error) {
	if len(args) == 0 {
		return launch.Partitions(), nil
	}
	out := make([]launch.Partition, 0, len(args))
	for _, arg := range args {
		p, err := launch.ParsePartition(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
