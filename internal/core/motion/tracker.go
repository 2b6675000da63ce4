package motion

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
)

// EntityID identifies a tracked body.
type EntityID = uuid.UUID

// NewEntityID returns a fresh random ID.
func NewEntityID() EntityID { return uuid.New() }

// Sample is an entity position read from the engine (or a simulated source).
type Sample struct {
	EntityID EntityID
	Position physics.Vec3
}

// Options size the per-entity windows.
type Options struct {
	VelocityWindow  int
	SmoothingWindow int
}

// DefaultOptions matches a 50 Hz tick with roughly a tenth of a second of history.
func DefaultOptions() Options {
	return Options{VelocityWindow: 5, SmoothingWindow: 4}
}

// Snapshot is a read-only view of a tracker after a tick.
type Snapshot struct {
	EntityID  EntityID     `json:"entity_id"`
	Tick      uint64       `json:"tick"`
	Position  physics.Vec3 `json:"position"`
	Smoothed  physics.Vec3 `json:"smoothed"`
	Velocity  physics.Vec3 `json:"velocity"`
	Mean      physics.Vec3 `json:"mean_velocity"`
	Peak      physics.Vec3 `json:"peak_velocity"`
	PeakSpeed float64      `json:"peak_speed"`
	Samples   int          `json:"samples"`
}

// Tracker derives per-tick velocity for one entity and keeps its recent history.
// It is owned by a single caller; see Registry for shared access.
type Tracker struct {
	id        EntityID
	velocity  *VectorWindow
	smoother  *Smoother
	tick      uint64
	last      physics.Vec3
	hasLast   bool
	lastSeenV physics.Vec3
}

func NewTracker(id EntityID, opts Options) (*Tracker, error) {
	velocity, err := NewVectorWindow(opts.VelocityWindow)
	if err != nil {
		return nil, fmt.Errorf("velocity window: %w", err)
	}
	smoother, err := NewSmoother(opts.SmoothingWindow)
	if err != nil {
		return nil, fmt.Errorf("smoothing window: %w", err)
	}
	return &Tracker{id: id, velocity: velocity, smoother: smoother}, nil
}

func (t *Tracker) ID() EntityID { return t.id }

// Observe records the entity position for a tick of length dt seconds.
// The first observation after construction or Reset yields zero velocity.
func (t *Tracker) Observe(position physics.Vec3, dt float64) (Snapshot, error) {
	if !position.IsFinite() {
		return Snapshot{}, ErrInvalidSample
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Snapshot{}, ErrInvalidDelta
	}

	v := physics.Zero
	if t.hasLast {
		v = position.Sub(t.last).Scale(1 / dt)
		if !v.IsFinite() {
			return Snapshot{}, ErrInvalidSample
		}
	}

	t.last, t.hasLast = position, true
	t.smoother.Add(position)
	t.push(v)
	return t.Snapshot(), nil
}

// ObserveVelocity records a velocity measured elsewhere, e.g. read back from a rigid body.
func (t *Tracker) ObserveVelocity(v physics.Vec3) (Snapshot, error) {
	if !v.IsFinite() {
		return Snapshot{}, ErrInvalidSample
	}
	t.push(v)
	return t.Snapshot(), nil
}

func (t *Tracker) push(v physics.Vec3) {
	t.velocity.Push(v)
	t.lastSeenV = v
	t.tick++
}

// Snapshot reports the current state without mutating it.
func (t *Tracker) Snapshot() Snapshot {
	peak := t.velocity.Peak()
	return Snapshot{
		EntityID:  t.id,
		Tick:      t.tick,
		Position:  t.last,
		Smoothed:  t.smoother.Value(),
		Velocity:  t.lastSeenV,
		Mean:      t.velocity.Mean(),
		Peak:      peak,
		PeakSpeed: peak.Magnitude(),
		Samples:   t.velocity.Len(),
	}
}

// Velocities copies the resident velocity samples, oldest first.
func (t *Tracker) Velocities() []physics.Vec3 { return t.velocity.Samples() }

// Reset forgets history and the previous position. The tick counter keeps running.
func (t *Tracker) Reset() {
	t.velocity.Clear()
	t.smoother.Reset()
	t.last, t.hasLast = physics.Zero, false
	t.lastSeenV = physics.Zero
}
