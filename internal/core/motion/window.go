package motion

import (
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
	"github.com/zeusync/motiontrack/pkg/sequence"
)

// VectorWindow keeps the last N vector samples and derives their mean and peak.
//
// Statistics are recomputed by a full rescan on the first read after a mutation
// and cached until the next Push or Clear. Windows are small (one sample per
// physics tick over a short horizon), so a rescan is cheaper than keeping the
// running maximum correct across evictions.
//
// A VectorWindow has a single owner and does no locking.
type VectorWindow struct {
	samples *sequence.Window[physics.Vec3]

	stale bool
	mean  physics.Vec3
	peak  physics.Vec3
}

// NewVectorWindow returns an empty window. capacity must be positive.
func NewVectorWindow(capacity int) (*VectorWindow, error) {
	samples, err := sequence.NewWindow[physics.Vec3](capacity)
	if err != nil {
		return nil, err
	}
	return &VectorWindow{samples: samples}, nil
}

// Push appends v, evicting the oldest sample when the window is full.
func (w *VectorWindow) Push(v physics.Vec3) {
	w.samples.Push(v)
	w.stale = true
}

// Mean is the componentwise average of resident samples, or the zero vector.
func (w *VectorWindow) Mean() physics.Vec3 {
	w.refresh()
	return w.mean
}

// Peak is the resident sample with the largest squared magnitude, or the zero vector.
// When several samples share the largest magnitude the oldest one is returned.
func (w *VectorWindow) Peak() physics.Vec3 {
	w.refresh()
	return w.peak
}

// Clear empties the window.
func (w *VectorWindow) Clear() {
	w.samples.Clear()
	w.mean, w.peak = physics.Zero, physics.Zero
	w.stale = false
}

func (w *VectorWindow) Len() int { return w.samples.Len() }
func (w *VectorWindow) Cap() int { return w.samples.Cap() }

// Latest returns the newest sample, or the zero vector when empty.
func (w *VectorWindow) Latest() physics.Vec3 {
	v, _ := w.samples.Newest()
	return v
}

// Samples copies resident samples, oldest first.
func (w *VectorWindow) Samples() []physics.Vec3 {
	return w.samples.Slice()
}

func (w *VectorWindow) refresh() {
	if !w.stale {
		return
	}
	w.stale = false

	n := w.samples.Len()
	if n == 0 {
		w.mean, w.peak = physics.Zero, physics.Zero
		return
	}

	sum := sequence.Fold(w.samples.All(), physics.Zero, physics.Vec3.Add)
	w.mean = sum.Scale(1 / float64(n))
	w.peak, _ = sequence.MaxBy(w.samples.All(), physics.Vec3.SqrMagnitude)
}
