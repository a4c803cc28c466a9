package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
)

// Factory creates a fresh, empty Database for each test.
type Factory func(t *testing.T) launch.Database

// Base is the reference instant used by fixtures.
var Base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewLaunch builds a fixture launch hours after Base.
func NewLaunch(id string, hours int) launch.Launch {
	return launch.Launch{
		ID:          id,
		Name:        "Launch " + id,
		Net:         Base.Add(time.Duration(hours) * time.Hour),
		Details:     launch.Details{Status: "Go", Rocket: "Falcon 9"},
		LastUpdated: Base,
	}
}

// IDs returns the ids of launches in order.
func IDs(launches []launch.Launch) []string {
	out := make([]string, 0, len(launches))
	for _, l := range launches {
		out = append(out, l.ID)
	}
	return out
}

// RunConformanceSuite runs the full conformance suite against factory.
func RunConformanceSuite(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("Launches", func(t *testing.T) { runLaunchTests(t, factory) })
	t.Run("RemoteKeys", func(t *testing.T) { runRemoteKeyTests(t, factory) })
	t.Run("Transactions", func(t *testing.T) { runTransactionTests(t, factory) })
}

func runLaunchTests(t *testing.T, factory Factory) {
	t.Run("CountAndOrder", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()

		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{
			NewLaunch("c", 3), NewLaunch("a", 1), NewLaunch("b", 2),
		}))
		require.NoError(t, store.InsertBatch(ctx, launch.Past, []launch.Launch{
			NewLaunch("x", -3), NewLaunch("z", -1), NewLaunch("y", -2),
		}))

		n, err := store.Count(ctx, launch.Upcoming)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		up, err := store.GetOrdered(ctx, launch.Upcoming, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, IDs(up))
		assert.Equal(t, launch.Upcoming, up[0].Partition)
		assert.Equal(t, "Falcon 9", up[0].Details.Rocket)
		assert.True(t, up[0].Net.Equal(Base.Add(time.Hour)))

		past, err := store.GetOrdered(ctx, launch.Past, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "y", "x"}, IDs(past), "past is most recent first")
	})

	t.Run("LimitOffset", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{
			NewLaunch("a", 1), NewLaunch("b", 2), NewLaunch("c", 3), NewLaunch("d", 4),
		}))

		page, err := store.GetOrdered(ctx, launch.Upcoming, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, IDs(page))

		rest, err := store.GetOrdered(ctx, launch.Upcoming, -1, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"d"}, IDs(rest))

		none, err := store.GetOrdered(ctx, launch.Upcoming, 5, 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("TiesBreakByID", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{
			NewLaunch("b", 1), NewLaunch("a", 1),
		}))
		got, err := store.GetOrdered(ctx, launch.Upcoming, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, IDs(got))
	})

	t.Run("InsertIsUpsert", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}))

		changed := NewLaunch("a", 5)
		changed.Name = "Renamed"
		changed.Details.Status = "Hold"
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{changed}))

		got, err := store.GetOrdered(ctx, launch.Upcoming, 0, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Renamed", got[0].Name)
		assert.Equal(t, "Hold", got[0].Details.Status)
		assert.True(t, got[0].Net.Equal(Base.Add(5*time.Hour)))
	})

	t.Run("PartitionsAreIndependent", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}))
		require.NoError(t, store.InsertBatch(ctx, launch.Past, []launch.Launch{NewLaunch("a", -1)}))

		require.NoError(t, store.DeleteAll(ctx, launch.Upcoming))

		n, err := store.Count(ctx, launch.Upcoming)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = store.Count(ctx, launch.Past)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("InsertStampsPartitionAndClock", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		l := NewLaunch("a", 1)
		l.Partition = launch.Past
		l.LastUpdated = time.Time{}
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{l}))

		got, err := store.GetOrdered(ctx, launch.Upcoming, 0, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, launch.Upcoming, got[0].Partition)
		assert.False(t, got[0].LastUpdated.IsZero())
	})

	t.Run("InsertRejectsEmptyID", func(t *testing.T) {
		db := factory(t)
		err := db.Launches().InsertBatch(t.Context(), launch.Upcoming, []launch.Launch{NewLaunch("", 1)})
		assert.Error(t, err)
	})

	t.Run("GetStale", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		store := db.Launches()
		old := NewLaunch("old", 1)
		old.LastUpdated = Base.Add(-48 * time.Hour)
		fresh := NewLaunch("fresh", 2)
		fresh.LastUpdated = Base
		oldPast := NewLaunch("old-past", -1)
		oldPast.LastUpdated = Base.Add(-30 * time.Hour)
		require.NoError(t, store.InsertBatch(ctx, launch.Upcoming, []launch.Launch{old, fresh}))
		require.NoError(t, store.InsertBatch(ctx, launch.Past, []launch.Launch{oldPast}))

		stale, err := store.GetStale(ctx, Base.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"old", "old-past"}, IDs(stale))

		none, err := store.GetStale(ctx, Base.Add(-72*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetStaleSubMillisecondThreshold", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		require.NoError(t, db.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}))

		stale, err := db.Launches().GetStale(ctx, Base.Add(500*time.Microsecond))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, IDs(stale))

		stale, err = db.Launches().GetStale(ctx, Base)
		require.NoError(t, err)
		assert.Empty(t, stale)
	})
}

func runRemoteKeyTests(t *testing.T, factory Factory) {
	t.Run("UpsertLookup", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		keys := db.RemoteKeys()

		require.NoError(t, keys.UpsertBatch(ctx, []launch.RemoteKey{
			{ItemID: "a", Partition: launch.Upcoming, PrevOffset: nil, NextOffset: launch.Offset(2)},
			{ItemID: "b", Partition: launch.Upcoming, PrevOffset: launch.Offset(0), NextOffset: nil},
		}))

		a, err := keys.Lookup(ctx, "a", launch.Upcoming)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Nil(t, a.PrevOffset)
		require.NotNil(t, a.NextOffset)
		assert.Equal(t, 2, *a.NextOffset)

		b, err := keys.Lookup(ctx, "b", launch.Upcoming)
		require.NoError(t, err)
		require.NotNil(t, b)
		require.NotNil(t, b.PrevOffset)
		assert.Equal(t, 0, *b.PrevOffset)
		assert.Nil(t, b.NextOffset)

		missing, err := keys.Lookup(ctx, "a", launch.Past)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		keys := db.RemoteKeys()
		require.NoError(t, keys.UpsertBatch(ctx, []launch.RemoteKey{
			{ItemID: "a", Partition: launch.Upcoming, NextOffset: launch.Offset(2)},
		}))
		require.NoError(t, keys.UpsertBatch(ctx, []launch.RemoteKey{
			{ItemID: "a", Partition: launch.Upcoming, PrevOffset: launch.Offset(4)},
		}))
		a, err := keys.Lookup(ctx, "a", launch.Upcoming)
		require.NoError(t, err)
		require.NotNil(t, a)
		require.NotNil(t, a.PrevOffset)
		assert.Equal(t, 4, *a.PrevOffset)
		assert.Nil(t, a.NextOffset)
	})

	t.Run("ListByPartition", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		keys := db.RemoteKeys()
		require.NoError(t, keys.UpsertBatch(ctx, []launch.RemoteKey{
			{ItemID: "b", Partition: launch.Upcoming, PrevOffset: launch.Offset(0)},
			{ItemID: "a", Partition: launch.Upcoming, NextOffset: launch.Offset(2)},
			{ItemID: "x", Partition: launch.Past},
		}))

		got, err := keys.List(ctx, launch.Upcoming)
		require.NoError(t, err)
		assert.Equal(t, []launch.RemoteKey{
			{ItemID: "a", Partition: launch.Upcoming, NextOffset: launch.Offset(2)},
			{ItemID: "b", Partition: launch.Upcoming, PrevOffset: launch.Offset(0)},
		}, got)

		// Keys are listed even when no launch row backs them.
		n, err := db.Launches().Count(ctx, launch.Past)
		require.NoError(t, err)
		assert.Zero(t, n)
		past, err := keys.List(ctx, launch.Past)
		require.NoError(t, err)
		require.Len(t, past, 1)
		assert.Equal(t, "x", past[0].ItemID)

		require.NoError(t, keys.ClearAll(ctx))
		got, err = keys.List(ctx, launch.Upcoming)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ClearPartitionAndAll", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		keys := db.RemoteKeys()
		require.NoError(t, keys.UpsertBatch(ctx, []launch.RemoteKey{
			{ItemID: "a", Partition: launch.Upcoming},
			{ItemID: "b", Partition: launch.Past},
		}))

		require.NoError(t, keys.ClearPartition(ctx, launch.Upcoming))
		a, err := keys.Lookup(ctx, "a", launch.Upcoming)
		require.NoError(t, err)
		assert.Nil(t, a)
		b, err := keys.Lookup(ctx, "b", launch.Past)
		require.NoError(t, err)
		assert.NotNil(t, b)

		require.NoError(t, keys.ClearAll(ctx))
		b, err = keys.Lookup(ctx, "b", launch.Past)
		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func runTransactionTests(t *testing.T, factory Factory) {
	errBoom := errors.New("boom")

	t.Run("CommitOnSuccess", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		err := db.InTx(ctx, func(tx launch.Tx) error {
			if err := tx.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}); err != nil {
				return err
			}
			return tx.RemoteKeys().UpsertBatch(ctx, []launch.RemoteKey{{ItemID: "a", Partition: launch.Upcoming}})
		})
		require.NoError(t, err)

		n, err := db.Launches().Count(ctx, launch.Upcoming)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		key, err := db.RemoteKeys().Lookup(ctx, "a", launch.Upcoming)
		require.NoError(t, err)
		assert.NotNil(t, key)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		require.NoError(t, db.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}))
		require.NoError(t, db.RemoteKeys().UpsertBatch(ctx, []launch.RemoteKey{{ItemID: "a", Partition: launch.Upcoming, NextOffset: launch.Offset(1)}}))
		before := snapshot(t, db)

		err := db.InTx(ctx, func(tx launch.Tx) error {
			if err := tx.RemoteKeys().ClearPartition(ctx, launch.Upcoming); err != nil {
				return err
			}
			if err := tx.Launches().DeleteAll(ctx, launch.Upcoming); err != nil {
				return err
			}
			if err := tx.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("b", 2)}); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, before, snapshot(t, db))
	})

	t.Run("ReadsInsideTxSeeOwnWrites", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		require.NoError(t, db.InTx(ctx, func(tx launch.Tx) error {
			if err := tx.Launches().InsertBatch(ctx, launch.Past, []launch.Launch{NewLaunch("a", -1)}); err != nil {
				return err
			}
			n, err := tx.Launches().Count(ctx, launch.Past)
			if err != nil {
				return err
			}
			assert.Equal(t, 1, n)
			return nil
		}))
	})

	t.Run("UncommittedWritesAreInvisible", func(t *testing.T) {
		db := factory(t)
		ctx := t.Context()
		require.NoError(t, db.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1), NewLaunch("b", 2)}))

		require.NoError(t, db.InTx(ctx, func(tx launch.Tx) error {
			if err := tx.Launches().DeleteAll(ctx, launch.Upcoming); err != nil {
				return err
			}
			n, err := db.Launches().Count(ctx, launch.Upcoming)
			if err != nil {
				return err
			}
			assert.Equal(t, 2, n, "outside readers must not observe the pending delete")
			return tx.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("c", 3)})
		}))

		got, err := db.Launches().GetOrdered(ctx, launch.Upcoming, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, IDs(got))
	})

	t.Run("CancelledContextDoesNotCommit", func(t *testing.T) {
		db := factory(t)
		ctx, cancel := context.WithCancel(t.Context())
		err := db.InTx(ctx, func(tx launch.Tx) error {
			if err := tx.Launches().InsertBatch(ctx, launch.Upcoming, []launch.Launch{NewLaunch("a", 1)}); err != nil {
				return err
			}
			cancel()
			return ctx.Err()
		})
		require.ErrorIs(t, err, context.Canceled)

		n, err := db.Launches().Count(t.Context(), launch.Upcoming)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

// State is a comparable dump of a database.
type State struct {
	Launches map[launch.Partition][]launch.Launch
	Keys     map[string]launch.RemoteKey
}

// Snapshot dumps every row and every remote key, orphaned keys included.
// Keys are indexed by "partition/item".
func Snapshot(ctx context.Context, db launch.Database) (State, error) {
	state := State{Launches: map[launch.Partition][]launch.Launch{}, Keys: map[string]launch.RemoteKey{}}
	for _, p := range launch.Partitions() {
		rows, err := db.Launches().GetOrdered(ctx, p, 0, 0)
		if err != nil {
			return state, err
		}
		state.Launches[p] = rows
		keys, err := db.RemoteKeys().List(ctx, p)
		if err != nil {
			return state, err
		}
		for _, key := range keys {
			state.Keys[string(p)+"/"+key.ItemID] = key
		}
	}
	return state, nil
}

func snapshot(t *testing.T, db launch.Database) State {
	t.Helper()
	state, err := Snapshot(t.Context(), db)
	require.NoError(t, err)
	return state
}
