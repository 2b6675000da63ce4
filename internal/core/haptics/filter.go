package haptics

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/motiontrack/internal/core/motion"
)

var ErrInvalidSettings = errors.New("invalid haptic settings")

// Settings tune when and how strongly a controller buzzes.
type Settings struct {
	Threshold     float64 // minimum peak speed that fires a pulse
	MaxSpeed      float64 // peak speed mapped to amplitude 1
	CooldownTicks int     // ticks to stay quiet after a pulse
}

// Pulse is a single haptic impulse request.
type Pulse struct {
	EntityID  motion.EntityID `json:"entity_id"`
	Tick      uint64          `json:"tick"`
	Amplitude float64         `json:"amplitude"`
	PeakSpeed float64         `json:"peak_speed"`
}

// PulseFilter turns tracker snapshots into rate-limited pulses.
// It is driven from the tick loop and is not safe for concurrent use.
type PulseFilter struct {
	settings Settings
	quietTil map[motion.EntityID]uint64
}

func NewPulseFilter(s Settings) (*PulseFilter, error) {
	if s.Threshold < 0 || math.IsNaN(s.Threshold) {
		return nil, fmt.Errorf("%w: threshold %g", ErrInvalidSettings, s.Threshold)
	}
	if s.MaxSpeed < 0 || math.IsNaN(s.MaxSpeed) {
		return nil, fmt.Errorf("%w: max speed %g", ErrInvalidSettings, s.MaxSpeed)
	}
	if s.CooldownTicks < 0 {
		return nil, fmt.Errorf("%w: cooldown %d", ErrInvalidSettings, s.CooldownTicks)
	}
	return &PulseFilter{settings: s, quietTil: make(map[motion.EntityID]uint64)}, nil
}

func (f *PulseFilter) Settings() Settings { return f.settings }

// Evaluate returns a pulse when the snapshot's peak speed reaches the threshold
// and the entity is not cooling down from an earlier pulse.
func (f *PulseFilter) Evaluate(s motion.Snapshot) (Pulse, bool) {
	if s.Samples == 0 || s.PeakSpeed < f.settings.Threshold {
		return Pulse{}, false
	}
	if until, ok := f.quietTil[s.EntityID]; ok && s.Tick < until {
		return Pulse{}, false
	}

	f.quietTil[s.EntityID] = s.Tick + uint64(f.settings.CooldownTicks) + 1
	return Pulse{
		EntityID:  s.EntityID,
		Tick:      s.Tick,
		Amplitude: f.Amplitude(s.PeakSpeed),
		PeakSpeed: s.PeakSpeed,
	}, true
}

// Amplitude maps a peak speed onto [0, 1].
func (f *PulseFilter) Amplitude(speed float64) float64 {
	span := f.settings.MaxSpeed - f.settings.Threshold
	if span <= 0 {
		return 1
	}
	a := (speed - f.settings.Threshold) / span
	return math.Max(0, math.Min(1, a))
}

// Forget drops cooldown state for an entity that is no longer tracked.
func (f *PulseFilter) Forget(id motion.EntityID) {
	delete(f.quietTil, id)
}
