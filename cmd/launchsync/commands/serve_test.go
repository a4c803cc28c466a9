package commands

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/memory"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/remote"
)

// slowSweepDatabase blocks stale scans until the sweep context ends, then
// keeps working a little longer before it returns.
type slowSweepDatabase struct {
	launch.Database
	entered  chan struct{}
	finished atomic.Bool
}

func (d *slowSweepDatabase) Launches() launch.LaunchStore {
	return slowStaleStore{LaunchStore: d.Database.Launches(), db: d}
}

type slowStaleStore struct {
	launch.LaunchStore
	db *slowSweepDatabase
}

func (s slowStaleStore) GetStale(ctx context.Context, _ time.Time) ([]launch.Launch, error) {
	select {
	case s.db.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	s.db.finished.Store(true)
	return nil, ctx.Err()
}

func TestStartSweepsWaitsForRunningSweep(t *testing.T) {
	db := &slowSweepDatabase{Database: memory.New(), entered: make(chan struct{}, 1)}
	source := remote.SourceFunc(func(context.Context, launch.Partition, int, int) (remote.Page, error) {
		return remote.Page{}, nil
	})
	c, err := launchsync.New(db, source, launchsync.Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := startSweeps(ctx, c, 5*time.Millisecond)

	select {
	case <-db.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("sweep never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
	assert.True(t, db.finished.Load())
}
