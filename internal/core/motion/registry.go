package motion

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
)

const DefaultShardCount = 16

// Registry owns every Tracker in the process and serializes access to them.
// Trackers are spread over shards by xxhash of the entity ID so the tick loop
// and readers (HTTP, stream) only contend on the same shard.
type Registry struct {
	opts   Options
	shards []*registryShard
}

type registryShard struct {
	mu       sync.Mutex
	trackers map[EntityID]*Tracker
}

// NewRegistry validates opts once so Track never fails on sizing.
func NewRegistry(opts Options, shardCount int) (*Registry, error) {
	if opts.VelocityWindow <= 0 {
		return nil, fmt.Errorf("velocity window: %w: got %d", ErrInvalidCapacity, opts.VelocityWindow)
	}
	if opts.SmoothingWindow <= 0 {
		return nil, fmt.Errorf("smoothing window: %w: got %d", ErrInvalidCapacity, opts.SmoothingWindow)
	}
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}

	r := &Registry{opts: opts, shards: make([]*registryShard, shardCount)}
	for i := range r.shards {
		r.shards[i] = &registryShard{trackers: make(map[EntityID]*Tracker)}
	}
	return r, nil
}

func (r *Registry) Options() Options { return r.opts }

func (r *Registry) shard(id EntityID) *registryShard {
	return r.shards[xxhash.Sum64(id[:])%uint64(len(r.shards))]
}

// Track starts tracking id. It returns true when a new tracker was created.
func (r *Registry) Track(id EntityID) bool {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackers[id]; ok {
		return false
	}
	t, err := NewTracker(id, r.opts)
	if err != nil {
		// opts were validated in NewRegistry
		panic(err)
	}
	s.trackers[id] = t
	return true
}

// Untrack drops the tracker for id. It reports whether one existed.
func (r *Registry) Untrack(id EntityID) bool {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackers[id]; !ok {
		return false
	}
	delete(s.trackers, id)
	return true
}

func (r *Registry) IsTracked(id EntityID) bool {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.trackers[id]
	return ok
}

// Observe feeds a position sample to the tracker of id.
func (r *Registry) Observe(id EntityID, position physics.Vec3, dt float64) (Snapshot, error) {
	var snap Snapshot
	err := r.with(id, func(t *Tracker) (err error) {
		snap, err = t.Observe(position, dt)
		return err
	})
	return snap, err
}

// ObserveVelocity feeds a measured velocity to the tracker of id.
func (r *Registry) ObserveVelocity(id EntityID, velocity physics.Vec3) (Snapshot, error) {
	var snap Snapshot
	err := r.with(id, func(t *Tracker) (err error) {
		snap, err = t.ObserveVelocity(velocity)
		return err
	})
	return snap, err
}

func (r *Registry) Snapshot(id EntityID) (Snapshot, error) {
	var snap Snapshot
	err := r.with(id, func(t *Tracker) error {
		snap = t.Snapshot()
		return nil
	})
	return snap, err
}

// Reset clears the history of id without untracking it.
func (r *Registry) Reset(id EntityID) error {
	return r.with(id, func(t *Tracker) error {
		t.Reset()
		return nil
	})
}

// Snapshots returns every tracker state ordered by entity ID.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, r.Len())
	for _, s := range r.shards {
		s.mu.Lock()
		for _, t := range s.trackers {
			out = append(out, t.Snapshot())
		}
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		return bytes.Compare(a.EntityID[:], b.EntityID[:])
	})
	return out
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.trackers)
		s.mu.Unlock()
	}
	return n
}

func (r *Registry) with(id EntityID, fn func(*Tracker) error) error {
	s := r.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trackers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	return fn(t)
}
