package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viant/launchsync/launch"
)

// launchView implements launch.LaunchStore over one state snapshot.
type launchView struct {
	s    *state
	opts launch.Options
}

func (v launchView) Count(_ context.Context, p launch.Partition) (int, error) {
	return v.s.partition(p).ordered.Len(), nil
}

func (v launchView) GetOrdered(_ context.Context, p launch.Partition, limit, offset int) ([]launch.Launch, error) {
	if offset < 0 {
		offset = 0
	}
	var out []launch.Launch
	skipped := 0
	visit := func(l launch.Launch) bool {
		if skipped < offset {
			skipped++
			return true
		}
		out = append(out, l)
		return limit <= 0 || len(out) < limit
	}
	tree := v.s.partition(p).ordered
	if v.opts.OrderOf(p) == launch.Descending {
		tree.Descend(visit)
	} else {
		tree.Ascend(visit)
	}
	return out, nil
}

func (v launchView) InsertBatch(_ context.Context, p launch.Partition, launches []launch.Launch) error {
	for _, l := range launches {
		if l.ID == "" {
			return fmt.Errorf("memory: insert into %s: empty id", p)
		}
	}
	ps := v.s.mutablePartition(p)
	for _, l := range launches {
		ps.upsert(v.opts.Stamp(p, l))
	}
	return nil
}

func (v launchView) DeleteAll(_ context.Context, p launch.Partition) error {
	v.s.partitions[p] = newPartitionState()
	return nil
}

func (v launchView) GetStale(_ context.Context, threshold time.Time) ([]launch.Launch, error) {
	var out []launch.Launch
	for _, ps := range v.s.partitions {
		for _, l := range ps.byID {
			if l.LastUpdated.Before(threshold) {
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Partition != b.Partition {
			return a.Partition < b.Partition
		}
		if !a.LastUpdated.Equal(b.LastUpdated) {
			return a.LastUpdated.Before(b.LastUpdated)
		}
		return a.ID < b.ID
	})
	return out, nil
}

// keyView implements launch.RemoteKeyStore over one state snapshot.
type keyView struct {
	s *state
}

func (v keyView) UpsertBatch(_ context.Context, keys []launch.RemoteKey) error {
	for _, k := range keys {
		if k.ItemID == "" {
			return fmt.Errorf("memory: upsert key in %s: empty item id", k.Partition)
		}
	}
	for _, k := range keys {
		v.s.keys[keyID{partition: k.Partition, itemID: k.ItemID}] = copyKey(k)
	}
	return nil
}

func (v keyView) Lookup(_ context.Context, itemID string, p launch.Partition) (*launch.RemoteKey, error) {
	k, ok := v.s.keys[keyID{partition: p, itemID: itemID}]
	if !ok {
		return nil, nil
	}
	k = copyKey(k)
	return &k, nil
}

func (v keyView) List(_ context.Context, p launch.Partition) ([]launch.RemoteKey, error) {
	var out []launch.RemoteKey
	for id, k := range v.s.keys {
		if id.partition == p {
			out = append(out, copyKey(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (v keyView) ClearPartition(_ context.Context, p launch.Partition) error {
	for id := range v.s.keys {
		if id.partition == p {
			delete(v.s.keys, id)
		}
	}
	return nil
}

func (v keyView) ClearAll(_ context.Context) error {
	clear(v.s.keys)
	return nil
}
