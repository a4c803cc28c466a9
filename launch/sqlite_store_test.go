package launch_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/engine"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/storetest"
)

func newSQLiteDatabase(t *testing.T, opts ...launch.Option) *launch.SQLiteDatabase {
	t.Helper()
	db, err := engine.OpenFile(filepath.Join(t.TempDir(), "launches.sqlite"))
	require.NoError(t, err)
	store, err := launch.NewSQLiteDatabase(db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) launch.Database {
		return newSQLiteDatabase(t)
	})
}

func TestSQLiteDatabase_PastOrderOverride(t *testing.T) {
	store := newSQLiteDatabase(t, launch.WithOrder(launch.Past, launch.Ascending))
	ctx := t.Context()
	require.NoError(t, store.Launches().InsertBatch(ctx, launch.Past, []launch.Launch{
		storetest.NewLaunch("b", -1), storetest.NewLaunch("a", -2),
	}))
	got, err := store.Launches().GetOrdered(ctx, launch.Past, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, storetest.IDs(got))
}

func TestSQLiteDatabase_NilDB(t *testing.T) {
	_, err := launch.NewSQLiteDatabase(nil)
	assert.Error(t, err)
}

// TestEnsureSchema verifies migrations apply once and can be re-run on an
// up-to-date in-memory database.
func TestEnsureSchema(t *testing.T) {
	db, err := engine.Open(engine.MemoryDSN)
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	version, _, err := launch.SchemaVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, launch.EnsureSchema(db))
	require.NoError(t, launch.EnsureSchema(db))

	version, dirty, err := launch.SchemaVersion(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	assert.False(t, dirty)

	if _, err := db.Exec(`INSERT INTO launches(partition, id, name, net, payload, last_updated) VALUES('upcoming', '1', 'x', 0, '{}', 0)`); err != nil {
		t.Fatalf("insert into launches failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO remote_keys(partition, item_id, prev_offset, next_offset) VALUES('upcoming', '1', NULL, 2)`); err != nil {
		t.Fatalf("insert into remote_keys failed: %v", err)
	}
}
