package launchsync_test

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/engine"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/memory"
	"github.com/viant/launchsync/launch/storetest"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/remote"
)

type backend struct {
	name string
	open func(t *testing.T) launch.Database
}

var backends = []backend{
	{name: "memory", open: func(t *testing.T) launch.Database {
		db := memory.New()
		t.Cleanup(func() { _ = db.Close() })
		return db
	}},
	{name: "sqlite", open: func(t *testing.T) launch.Database {
		conn, err := engine.OpenFile(filepath.Join(t.TempDir(), "launches.sqlite"))
		require.NoError(t, err)
		db, err := launch.NewSQLiteDatabase(conn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return db
	}},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, db launch.Database)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) { fn(t, b.open(t)) })
	}
}

type fetchCall struct {
	partition launch.Partition
	limit     int
	offset    int
}

// fakeSource serves offset pages out of a fixed catalogue per partition.
type fakeSource struct {
	mu      sync.Mutex
	catalog map[launch.Partition][]launch.Launch
	err     error
	hook    func(ctx context.Context) error
	calls   []fetchCall
}

func newFakeSource(upcoming ...launch.Launch) *fakeSource {
	return &fakeSource{catalog: map[launch.Partition][]launch.Launch{launch.Upcoming: upcoming}}
}

func (f *fakeSource) Fetch(ctx context.Context, p launch.Partition, limit, offset int) (remote.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{partition: p, limit: limit, offset: offset})
	items, err, hook := f.catalog[p], f.err, f.hook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return remote.Page{}, err
		}
	}
	if err != nil {
		return remote.Page{}, err
	}
	if offset >= len(items) {
		return remote.Page{}, nil
	}
	end := min(offset+limit, len(items))
	return remote.Page{Launches: slices.Clone(items[offset:end]), HasMore: end < len(items)}, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) setHook(hook func(ctx context.Context) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
}

func (f *fakeSource) fetches() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// failingDatabase fails every remote key upsert issued inside a transaction.
type failingDatabase struct {
	launch.Database
	err error
}

func (f *failingDatabase) InTx(ctx context.Context, fn func(tx launch.Tx) error) error {
	return f.Database.InTx(ctx, func(tx launch.Tx) error {
		return fn(failingTx{Tx: tx, err: f.err})
	})
}

type failingTx struct {
	launch.Tx
	err error
}

func (t failingTx) RemoteKeys() launch.RemoteKeyStore {
	return failingKeys{RemoteKeyStore: t.Tx.RemoteKeys(), err: t.err}
}

type failingKeys struct {
	launch.RemoteKeyStore
	err error
}

func (k failingKeys) UpsertBatch(context.Context, []launch.RemoteKey) error { return k.err }

func fixedClock() time.Time { return storetest.Base }

func newCoordinator(t *testing.T, db launch.Database, src remote.Source, pageSize int) *launchsync.Coordinator {
	t.Helper()
	c, err := launchsync.New(db, src, launchsync.Config{PageSize: pageSize, Now: fixedClock})
	require.NoError(t, err)
	return c
}

func rows(t *testing.T, db launch.Database, p launch.Partition) []launch.Launch {
	t.Helper()
	out, err := db.Launches().GetOrdered(t.Context(), p, 0, 0)
	require.NoError(t, err)
	return out
}

func snapshot(t *testing.T, db launch.Database) storetest.State {
	t.Helper()
	state, err := storetest.Snapshot(t.Context(), db)
	require.NoError(t, err)
	return state
}

var (
	launchA = storetest.NewLaunch("A", 1)
	launchB = storetest.NewLaunch("B", 2)
	launchC = storetest.NewLaunch("C", 3)
)
