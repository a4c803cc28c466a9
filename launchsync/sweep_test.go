package launchsync_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/storetest"
	"github.com/viant/launchsync/launchsync"
)

func TestCoordinator_Sweep(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db launch.Database) {
		ctx := t.Context()
		src := newFakeSource(launchA, launchB, launchC)
		c := newCoordinator(t, db, src, 2)
		require.IsType(t, launchsync.Success{}, c.Load(ctx, launch.Upcoming, launchsync.Refresh, nil))
		require.IsType(t, launchsync.Success{}, c.Load(ctx, launch.Upcoming, launchsync.Append, rows(t, db, launch.Upcoming)))

		report, err := c.Sweep(ctx, storetest.Base.Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, report.StaleRows)
		assert.Empty(t, report.Wiped)
		assert.Len(t, rows(t, db, launch.Upcoming), 3)

		report, err = c.Sweep(ctx, storetest.Base.Add(25*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, storetest.Base.Add(time.Hour), report.Threshold)
		assert.Equal(t, 3, report.StaleRows)
		assert.Equal(t, []launch.Partition{launch.Upcoming}, report.Wiped)
		assert.Empty(t, rows(t, db, launch.Upcoming))
		assert.Empty(t, snapshot(t, db).Keys)
		for _, id := range []string{"A", "B", "C"} {
			key, err := db.RemoteKeys().Lookup(ctx, id, launch.Upcoming)
			require.NoError(t, err)
			assert.Nil(t, key, id)
		}

		// The wiped partition is cold again: an append runs as a refresh.
		res := c.Load(ctx, launch.Upcoming, launchsync.Append, launchsync.Window{launchB})
		require.Equal(t, launchsync.Success{EndOfPaginationReached: false}, res)
		calls := src.fetches()
		require.Len(t, calls, 3)
		assert.Zero(t, calls[2].offset)
	})
}

func TestCoordinator_SweepKeepsFreshPartitions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db launch.Database) {
		ctx := t.Context()
		stale := storetest.NewLaunch("old", -5)
		stale.LastUpdated = storetest.Base.Add(-48 * time.Hour)
		require.NoError(t, db.Launches().InsertBatch(ctx, launch.Past, []launch.Launch{stale}))

		c := newCoordinator(t, db, newFakeSource(launchA), 2)
		require.IsType(t, launchsync.Success{}, c.Load(ctx, launch.Upcoming, launchsync.Refresh, nil))

		report, err := c.Sweep(ctx, storetest.Base)
		require.NoError(t, err)
		assert.Equal(t, 1, report.StaleRows)
		assert.Equal(t, []launch.Partition{launch.Past}, report.Wiped)
		assert.Empty(t, rows(t, db, launch.Past))
		assert.Equal(t, []string{"A"}, storetest.IDs(rows(t, db, launch.Upcoming)))
	})
}

func TestCoordinator_Reset(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db launch.Database) {
		ctx := t.Context()
		src := newFakeSource(launchA, launchB)
		src.catalog[launch.Past] = []launch.Launch{storetest.NewLaunch("P1", -1)}
		c := newCoordinator(t, db, src, 2)
		for _, p := range launch.Partitions() {
			require.IsType(t, launchsync.Success{}, c.Load(ctx, p, launchsync.Refresh, nil))
		}

		require.NoError(t, c.Reset(ctx))
		state := snapshot(t, db)
		for _, p := range launch.Partitions() {
			assert.Empty(t, state.Launches[p], p)
			action, err := c.Initialize(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, launchsync.LaunchInitialRefresh, action, p)
		}
		assert.Empty(t, state.Keys)
		key, err := db.RemoteKeys().Lookup(ctx, "P1", launch.Past)
		require.NoError(t, err)
		assert.Nil(t, key)
	})
}

func TestCoordinator_SweepRacesLoadsOnOtherPartition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db launch.Database) {
		ctx := t.Context()
		src := newFakeSource(launchA, launchB, launchC)
		c := newCoordinator(t, db, src, 2)

		var wg sync.WaitGroup
		errs := make(chan error, 40)
		for i := 0; i < 20; i++ {
			stale := storetest.NewLaunch("old", -5)
			stale.LastUpdated = storetest.Base.Add(-48 * time.Hour)
			require.NoError(t, db.Launches().InsertBatch(ctx, launch.Past, []launch.Launch{stale}))

			wg.Add(2)
			go func() {
				defer wg.Done()
				if res, ok := c.Load(ctx, launch.Upcoming, launchsync.Refresh, nil).(launchsync.Error); ok {
					errs <- res
				}
			}()
			go func() {
				defer wg.Done()
				if _, err := c.Sweep(ctx, storetest.Base); err != nil {
					errs <- err
				}
			}()
			wg.Wait()
		}
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Empty(t, rows(t, db, launch.Past))
		assert.Equal(t, []string{"A", "B"}, storetest.IDs(rows(t, db, launch.Upcoming)))
	})
}
