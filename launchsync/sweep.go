package launchsync

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
)

// SweepReport describes one staleness sweep.
type SweepReport struct {
	Threshold time.Time
	StaleRows int
	Wiped     []launch.Partition
}

// Sweep wipes every partition holding a row last updated before
// now - StaleAfter. A wiped partition loses its rows and remote keys, and its
// next load runs as a cold-start refresh.
func (c *Coordinator) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	report := SweepReport{Threshold: now.Add(-c.cfg.StaleAfter)}
	stale, err := c.db.Launches().GetStale(ctx, report.Threshold)
	if err != nil {
		return report, fmt.Errorf("%w: stale rows: %w", ErrStoreRead, err)
	}
	report.StaleRows = len(stale)
	candidates := make(map[launch.Partition]bool)
	for _, l := range stale {
		candidates[l.Partition] = true
	}

	for _, p := range launch.Partitions() {
		if !candidates[p] {
			continue
		}
		wiped, err := c.wipeIfStale(ctx, p, report.Threshold)
		if err != nil {
			return report, err
		}
		if wiped {
			report.Wiped = append(report.Wiped, p)
			c.metrics.RecordSweep(p)
		}
	}
	logger.InfoCtx(ctx, "sweep finished", logger.KeyThreshold, report.Threshold, logger.KeyStaleRows, report.StaleRows,
		"wiped", len(report.Wiped))
	return report, nil
}

// wipeIfStale re-checks staleness under the partition lock so a refresh that
// completed meanwhile is not discarded.
func (c *Coordinator) wipeIfStale(ctx context.Context, p launch.Partition, threshold time.Time) (bool, error) {
	ps := c.state(p)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	wiped := false
	err := c.db.InTx(ctx, func(tx launch.Tx) error {
		stale, err := tx.Launches().GetStale(ctx, threshold)
		if err != nil {
			return err
		}
		wiped = false
		for _, l := range stale {
			if l.Partition == p {
				wiped = true
				break
			}
		}
		if !wiped {
			return nil
		}
		if err := tx.RemoteKeys().ClearPartition(ctx, p); err != nil {
			return err
		}
		if err := tx.Launches().DeleteAll(ctx, p); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		return false, fmt.Errorf("%w: sweep %s: %w", ErrStoreTransaction, p, err)
	}
	if wiped {
		ps.initialized = false
		ps.forceRefresh = false
		logger.InfoCtx(ctx, "stale partition wiped", logger.KeyPartition, p.String())
	}
	return wiped, nil
}

// Reset wipes every partition and its remote keys in one transaction and
// resets the initialization state.
func (c *Coordinator) Reset(ctx context.Context) error {
	states := make([]*partitionState, 0, len(launch.Partitions()))
	for _, p := range launch.Partitions() {
		ps := c.state(p)
		ps.mu.Lock()
		defer ps.mu.Unlock()
		states = append(states, ps)
	}

	err := c.db.InTx(ctx, func(tx launch.Tx) error {
		for _, p := range launch.Partitions() {
			if err := tx.Launches().DeleteAll(ctx, p); err != nil {
				return err
			}
		}
		if err := tx.RemoteKeys().ClearAll(ctx); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		return fmt.Errorf("%w: reset: %w", ErrStoreTransaction, err)
	}
	for _, ps := range states {
		ps.initialized = false
		ps.forceRefresh = false
	}
	logger.InfoCtx(ctx, "cache reset")
	return nil
}
