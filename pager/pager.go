// Package pager provides a display-side driver on top of a launchsync
// Coordinator. A Pager holds the currently loaded window of one partition,
// serves cached rows immediately and extends or reloads the window through
// the coordinator.
package pager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launchsync"
)

// ErrLoadInFlight is reported when a load is requested while another load of
// the same pager is still running.
var ErrLoadInFlight = errors.New("pager: load already in flight")

// Pager drives one partition. It runs at most one load at a time.
type Pager struct {
	Coordinator *launchsync.Coordinator
	Store       launch.Tx
	Partition   launch.Partition

	loading sync.Mutex

	mu      sync.RWMutex
	items   []launch.Launch
	atStart bool
	atEnd   bool
}

// New constructs a Pager for partition p. Store must observe the writes
// performed by coordinator.
func New(coordinator *launchsync.Coordinator, store launch.Tx, p launch.Partition) (*Pager, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("pager: coordinator is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("pager: store is nil")
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", launch.ErrUnknownPartition, string(p))
	}
	return &Pager{Coordinator: coordinator, Store: store, Partition: p}, nil
}

// Open runs the initialization policy and fills the window with the cached
// rows. When it returns LaunchInitialRefresh the caller should Refresh.
func (pg *Pager) Open(ctx context.Context) (launchsync.InitializeAction, error) {
	action, err := pg.Coordinator.Initialize(ctx, pg.Partition)
	if err != nil {
		return action, err
	}
	if err := pg.reload(ctx); err != nil {
		return action, err
	}
	return action, nil
}

// Refresh reloads the partition from the first page.
func (pg *Pager) Refresh(ctx context.Context) launchsync.Result {
	return pg.run(ctx, launchsync.Refresh)
}

// Append extends the window past its last item.
func (pg *Pager) Append(ctx context.Context) launchsync.Result {
	return pg.run(ctx, launchsync.Append)
}

// Prepend extends the window before its first item.
func (pg *Pager) Prepend(ctx context.Context) launchsync.Result {
	return pg.run(ctx, launchsync.Prepend)
}

func (pg *Pager) run(ctx context.Context, d launchsync.Direction) launchsync.Result {
	if !pg.loading.TryLock() {
		return launchsync.Error{Cause: ErrLoadInFlight}
	}
	defer pg.loading.Unlock()

	res := pg.Coordinator.Load(ctx, pg.Partition, d, pg.Items())
	success, ok := res.(launchsync.Success)
	if !ok {
		return res
	}
	if err := pg.reload(ctx); err != nil {
		return launchsync.Error{Cause: fmt.Errorf("%w: reload window: %w", launchsync.ErrStoreRead, err)}
	}

	pg.mu.Lock()
	defer pg.mu.Unlock()
	if len(pg.items) == 0 {
		pg.atStart = success.EndOfPaginationReached
		pg.atEnd = success.EndOfPaginationReached
	}
	return res
}

// reload re-reads the window. Its edges come from the bookmarks of the first
// and last rows, so they hold whichever direction the coordinator ran. A row
// without a bookmark counts as a boundary.
func (pg *Pager) reload(ctx context.Context) error {
	items, err := pg.Store.Launches().GetOrdered(ctx, pg.Partition, 0, 0)
	if err != nil {
		return err
	}
	var atStart, atEnd bool
	if len(items) > 0 {
		first, err := pg.Store.RemoteKeys().Lookup(ctx, items[0].ID, pg.Partition)
		if err != nil {
			return err
		}
		last, err := pg.Store.RemoteKeys().Lookup(ctx, items[len(items)-1].ID, pg.Partition)
		if err != nil {
			return err
		}
		atStart = first == nil || first.PrevOffset == nil
		atEnd = last == nil || last.NextOffset == nil
	}
	pg.mu.Lock()
	pg.items = items
	pg.atStart = atStart
	pg.atEnd = atEnd
	pg.mu.Unlock()
	return nil
}

// Items returns a copy of the current window.
func (pg *Pager) Items() launchsync.Window {
	pg.mu.RLock()
	defer pg.mu.RUnlock()
	return slices.Clone(pg.items)
}

// AtStart reports whether the window is known to begin at the first page.
func (pg *Pager) AtStart() bool {
	pg.mu.RLock()
	defer pg.mu.RUnlock()
	return pg.atStart
}

// AtEnd reports whether the last known page has been loaded.
func (pg *Pager) AtEnd() bool {
	pg.mu.RLock()
	defer pg.mu.RUnlock()
	return pg.atEnd
}
