package memory

import (
	"maps"

	"github.com/google/btree"

	"github.com/viant/launchsync/launch"
)

const degree = 16

func lessLaunch(a, b launch.Launch) bool {
	if !a.Net.Equal(b.Net) {
		return a.Net.Before(b.Net)
	}
	return a.ID < b.ID
}

type partitionState struct {
	byID    map[string]launch.Launch
	ordered *btree.BTreeG[launch.Launch]
}

func newPartitionState() *partitionState {
	return &partitionState{
		byID:    map[string]launch.Launch{},
		ordered: btree.NewG(degree, lessLaunch),
	}
}

func (p *partitionState) clone() *partitionState {
	return &partitionState{byID: maps.Clone(p.byID), ordered: p.ordered.Clone()}
}

func (p *partitionState) upsert(l launch.Launch) {
	if prev, ok := p.byID[l.ID]; ok {
		p.ordered.Delete(prev)
	}
	p.byID[l.ID] = l
	p.ordered.ReplaceOrInsert(l)
}

type keyID struct {
	partition launch.Partition
	itemID    string
}

type state struct {
	partitions map[launch.Partition]*partitionState
	keys       map[keyID]launch.RemoteKey
}

func newState() *state {
	s := &state{partitions: map[launch.Partition]*partitionState{}, keys: map[keyID]launch.RemoteKey{}}
	for _, p := range launch.Partitions() {
		s.partitions[p] = newPartitionState()
	}
	return s
}

// clone is cheap for the trees: btree.Clone shares nodes until either copy
// writes to them.
func (s *state) clone() *state {
	c := &state{partitions: make(map[launch.Partition]*partitionState, len(s.partitions)), keys: maps.Clone(s.keys)}
	for p, ps := range s.partitions {
		c.partitions[p] = ps.clone()
	}
	return c
}

// partition is safe on the committed state: unknown partitions read as
// empty without being added.
func (s *state) partition(p launch.Partition) *partitionState {
	if ps, ok := s.partitions[p]; ok {
		return ps
	}
	return newPartitionState()
}

// mutablePartition must only be used on a transaction draft.
func (s *state) mutablePartition(p launch.Partition) *partitionState {
	ps, ok := s.partitions[p]
	if !ok {
		ps = newPartitionState()
		s.partitions[p] = ps
	}
	return ps
}

func copyOffset(v *int) *int {
	if v == nil {
		return nil
	}
	return launch.Offset(*v)
}

func copyKey(k launch.RemoteKey) launch.RemoteKey {
	k.PrevOffset = copyOffset(k.PrevOffset)
	k.NextOffset = copyOffset(k.NextOffset)
	return k
}
