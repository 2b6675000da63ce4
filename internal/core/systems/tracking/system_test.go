package tracking

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/motiontrack/internal/core/events/bus"
	"github.com/zeusync/motiontrack/internal/core/haptics"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/core/systems"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
	"go.uber.org/zap/zapcore"
)

// scriptedSource replays fixed positions per tick.
type scriptedSource struct {
	ticks [][]motion.Sample
	next  int
}

func (s *scriptedSource) Sample(time.Duration) []motion.Sample {
	if s.next >= len(s.ticks) {
		return nil
	}
	out := s.ticks[s.next]
	s.next++
	return out
}

type fixture struct {
	system   *System
	registry *motion.Registry
	events   bus.EventBus
	sampled  []motion.Snapshot
	pulses   []haptics.Pulse
	gone     []motion.EntityID
}

func newFixture(t *testing.T, source PositionSource) *fixture {
	t.Helper()
	registry, err := motion.NewRegistry(motion.Options{VelocityWindow: 3, SmoothingWindow: 2}, 2)
	require.NoError(t, err)
	filter, err := haptics.NewPulseFilter(haptics.Settings{Threshold: 5, MaxSpeed: 15, CooldownTicks: 1})
	require.NoError(t, err)

	f := &fixture{registry: registry, events: bus.New()}
	_, _ = f.events.Subscribe(bus.TypeMotionSampled, func(e bus.Event) error {
		f.sampled = append(f.sampled, e.Data().(motion.Snapshot))
		return nil
	})
	_, _ = f.events.Subscribe(bus.TypeMotionPulse, func(e bus.Event) error {
		f.pulses = append(f.pulses, e.Data().(haptics.Pulse))
		return nil
	})
	_, _ = f.events.Subscribe(bus.TypeMotionUntracked, func(e bus.Event) error {
		f.gone = append(f.gone, e.Data().(motion.EntityID))
		return nil
	})

	f.system = New(registry, filter, f.events, source, log.Nop())
	require.NoError(t, f.system.Initialize(context.Background()))
	return f
}

func step(tick uint64) systems.Step {
	return systems.Step{Tick: tick, DeltaTime: 0.1, Elapsed: time.Duration(tick) * 100 * time.Millisecond}
}

func TestSystem_TracksAndPulses(t *testing.T) {
	a, b := motion.NewEntityID(), motion.NewEntityID()
	source := &scriptedSource{ticks: [][]motion.Sample{
		{{EntityID: a, Position: physics.V3(0, 0, 0)}, {EntityID: b, Position: physics.V3(0, 0, 0)}},
		{{EntityID: a, Position: physics.V3(0.1, 0, 0)}, {EntityID: b, Position: physics.V3(1, 0, 0)}},
		{{EntityID: a, Position: physics.V3(0.2, 0, 0)}, {EntityID: b, Position: physics.V3(2, 0, 0)}},
		{{EntityID: a, Position: physics.V3(0.3, 0, 0)}},
	}}
	f := newFixture(t, source)
	ctx := context.Background()

	for tick := uint64(1); tick <= 3; tick++ {
		require.NoError(t, f.system.FixedUpdate(ctx, step(tick)))
	}
	require.Equal(t, 2, f.registry.Len())
	require.Len(t, f.sampled, 6)

	// b moves at 10 units/s from tick 2: pulse on tick 2, cooldown on tick 3
	require.Len(t, f.pulses, 1)
	require.Equal(t, b, f.pulses[0].EntityID)
	require.InDelta(t, 0.5, f.pulses[0].Amplitude, 1e-9)

	snap, err := f.registry.Snapshot(a)
	require.NoError(t, err)
	require.InDelta(t, 1.0, snap.PeakSpeed, 1e-9)

	require.NoError(t, f.system.FixedUpdate(ctx, step(4)))
	require.Equal(t, []motion.EntityID{b}, f.gone)
	require.False(t, f.registry.IsTracked(b))
	require.True(t, f.registry.IsTracked(a))
}

func TestSystem_ReportsBadSamples(t *testing.T) {
	a := motion.NewEntityID()
	source := &scriptedSource{ticks: [][]motion.Sample{
		{{EntityID: a, Position: physics.V3(math.NaN(), 0, 0)}},
	}}
	f := newFixture(t, source)

	err := f.system.FixedUpdate(context.Background(), step(1))
	require.ErrorIs(t, err, motion.ErrInvalidSample)
	require.Empty(t, f.sampled)
}

func TestSystem_PropagatesHandlerErrors(t *testing.T) {
	a := motion.NewEntityID()
	source := &scriptedSource{ticks: [][]motion.Sample{{{EntityID: a, Position: physics.Zero}}}}
	f := newFixture(t, source)

	boom := errors.New("subscriber failed")
	_, _ = f.events.Subscribe(bus.TypeMotionSampled, func(bus.Event) error { return boom })

	require.ErrorIs(t, f.system.FixedUpdate(context.Background(), step(1)), boom)
	require.True(t, f.registry.IsTracked(a))
}

func TestSystem_PublishesAfterWholeTickApplied(t *testing.T) {
	a, b := motion.NewEntityID(), motion.NewEntityID()
	source := &scriptedSource{ticks: [][]motion.Sample{
		{{EntityID: a, Position: physics.Zero}, {EntityID: b, Position: physics.Zero}},
		{{EntityID: a, Position: physics.V3(0.1, 0, 0)}, {EntityID: b, Position: physics.V3(0.1, 0, 0)}},
	}}
	f := newFixture(t, source)

	var otherTicks []uint64
	_, _ = f.events.Subscribe(bus.TypeMotionSampled, func(e bus.Event) error {
		snap := e.Data().(motion.Snapshot)
		if snap.EntityID != a {
			return nil
		}
		other, err := f.registry.Snapshot(b)
		if err != nil {
			return err
		}
		otherTicks = append(otherTicks, other.Tick)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, f.system.FixedUpdate(ctx, step(1)))
	require.NoError(t, f.system.FixedUpdate(ctx, step(2)))
	require.Equal(t, []uint64{1, 2}, otherTicks)
	require.Len(t, f.sampled, 4)
}

func TestSystem_LeavesForeignEntitiesAlone(t *testing.T) {
	f := newFixture(t, &scriptedSource{})
	foreign := motion.NewEntityID()
	f.registry.Track(foreign)

	require.NoError(t, f.system.FixedUpdate(context.Background(), step(1)))
	require.True(t, f.registry.IsTracked(foreign))
	require.Empty(t, f.gone)
}

func TestLoggedVectorFields(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, loggedVector(physics.V3(1, -2, 0.5)).MarshalLogObject(enc))
	require.Equal(t, map[string]any{"x": 1.0, "y": -2.0, "z": 0.5}, enc.Fields)
}
