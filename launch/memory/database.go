package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/launchsync/launch"
)

// Database is an in-memory launch.Database. Transactions are serialized;
// readers never block on a running transaction and only observe committed
// state.
type Database struct {
	opts launch.Options

	writeMu sync.Mutex // serializes transactions

	mu    sync.RWMutex // guards state
	state *state
}

// New creates an empty in-memory database.
func New(opts ...launch.Option) *Database {
	return &Database{opts: launch.NewOptions(opts...), state: newState()}
}

// Launches returns the non-transactional launch store.
func (d *Database) Launches() launch.LaunchStore { return committedLaunches{d: d} }

// RemoteKeys returns the non-transactional remote key store.
func (d *Database) RemoteKeys() launch.RemoteKeyStore { return committedKeys{d: d} }

// InTx runs fn against a private clone of the committed state and publishes
// the clone only when fn succeeds and ctx is still live.
func (d *Database) InTx(ctx context.Context, fn func(tx launch.Tx) error) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	draft := d.state.clone()
	d.mu.RUnlock()

	if err := fn(&txView{s: draft, opts: d.opts}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.state = draft
	d.mu.Unlock()
	return nil
}

// Close drops every row.
func (d *Database) Close() error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	d.mu.Lock()
	d.state = newState()
	d.mu.Unlock()
	return nil
}

func (d *Database) read() *state {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

type txView struct {
	s    *state
	opts launch.Options
}

func (t *txView) Launches() launch.LaunchStore      { return launchView{s: t.s, opts: t.opts} }
func (t *txView) RemoteKeys() launch.RemoteKeyStore { return keyView{s: t.s} }

// committedLaunches reads the published state and wraps each write in its
// own transaction.
type committedLaunches struct{ d *Database }

func (c committedLaunches) view() launchView { return launchView{s: c.d.read(), opts: c.d.opts} }

func (c committedLaunches) Count(ctx context.Context, p launch.Partition) (int, error) {
	return c.view().Count(ctx, p)
}

func (c committedLaunches) GetOrdered(ctx context.Context, p launch.Partition, limit, offset int) ([]launch.Launch, error) {
	return c.view().GetOrdered(ctx, p, limit, offset)
}

func (c committedLaunches) GetStale(ctx context.Context, threshold time.Time) ([]launch.Launch, error) {
	return c.view().GetStale(ctx, threshold)
}

func (c committedLaunches) InsertBatch(ctx context.Context, p launch.Partition, launches []launch.Launch) error {
	return c.d.InTx(ctx, func(tx launch.Tx) error { return tx.Launches().InsertBatch(ctx, p, launches) })
}

func (c committedLaunches) DeleteAll(ctx context.Context, p launch.Partition) error {
	return c.d.InTx(ctx, func(tx launch.Tx) error { return tx.Launches().DeleteAll(ctx, p) })
}

type committedKeys struct{ d *Database }

func (c committedKeys) Lookup(ctx context.Context, itemID string, p launch.Partition) (*launch.RemoteKey, error) {
	return keyView{s: c.d.read()}.Lookup(ctx, itemID, p)
}

func (c committedKeys) List(ctx context.Context, p launch.Partition) ([]launch.RemoteKey, error) {
	return keyView{s: c.d.read()}.List(ctx, p)
}

func (c committedKeys) UpsertBatch(ctx context.Context, keys []launch.RemoteKey) error {
	return c.d.InTx(ctx, func(tx launch.Tx) error { return tx.RemoteKeys().UpsertBatch(ctx, keys) })
}

func (c committedKeys) ClearPartition(ctx context.Context, p launch.Partition) error {
	return c.d.InTx(ctx, func(tx launch.Tx) error { return tx.RemoteKeys().ClearPartition(ctx, p) })
}

func (c committedKeys) ClearAll(ctx context.Context) error {
	return c.d.InTx(ctx, func(tx launch.Tx) error { return tx.RemoteKeys().ClearAll(ctx) })
}

// Ensure Database satisfies the launch.Database interface.
var _ launch.Database = (*Database)(nil)
