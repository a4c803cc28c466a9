package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr          string
		sweepInterval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cache over HTTP",
		Long: `Serve cached launches, load triggers, the staleness sweep and Prometheus
metrics over HTTP until interrupted.

Examples:
  launchsync serve --addr 127.0.0.1:8080
  LAUNCHSYNC_DATABASE_BACKEND=memory launchsync serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sweeps <-chan struct{}
			if sweepInterval > 0 {
				sweeps = startSweeps(ctx, rt.coordinator, sweepInterval)
			}
			handler := server.NewRouter(&server.Handler{
				Coordinator: rt.coordinator,
				Store:       rt.db.Launches(),
				Gatherer:    rt.registry,
			})
			err = server.New(addr, handler).Start(ctx)

			// The sweeper must be idle before the deferred Close.
			stop()
			if sweeps != nil {
				<-sweeps
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", time.Hour, "period of the background staleness sweep; 0 disables it")
	return cmd
}

// startSweeps sweeps c every period until ctx is done. The returned channel
// closes once the last sweep has returned.
func startSweeps(ctx context.Context, c *launchsync.Coordinator, every time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeps(ctx, c, every)
	}()
	return done
}

func runSweeps(ctx context.Context, c *launchsync.Coordinator, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := c.Sweep(ctx, now); err != nil {
				logger.Warn("background sweep failed", logger.KeyError, logger.Err(err))
			}
		}
	}
}
