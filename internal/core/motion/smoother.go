package motion

import "github.com/zeusync/motiontrack/internal/core/systems/physics"

// Smoother averages the last N positions to damp per-tick jitter.
type Smoother struct {
	window *VectorWindow
}

func NewSmoother(capacity int) (*Smoother, error) {
	w, err := NewVectorWindow(capacity)
	if err != nil {
		return nil, err
	}
	return &Smoother{window: w}, nil
}

// Add records p and returns the smoothed position.
func (s *Smoother) Add(p physics.Vec3) physics.Vec3 {
	s.window.Push(p)
	return s.window.Mean()
}

// Value is the current smoothed position; zero before the first Add.
func (s *Smoother) Value() physics.Vec3 { return s.window.Mean() }

func (s *Smoother) Len() int { return s.window.Len() }

func (s *Smoother) Reset() { s.window.Clear() }
