package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/motiontrack/internal/core/events/bus"
	"github.com/zeusync/motiontrack/internal/core/haptics"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/core/systems"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
)

const Name = "motion.tracking"

// PositionSource reports the positions of every live entity at a point in time.
type PositionSource interface {
	Sample(elapsed time.Duration) []motion.Sample
}

var _ systems.System = (*System)(nil)

// System samples the source once per fixed tick, feeds the registry and
// turns the resulting snapshots into bus events and haptic pulses.
// Entities that disappear from the source are untracked. Events of a tick
// are published as one batch once the whole tick is applied.
type System struct {
	registry *motion.Registry
	filter   *haptics.PulseFilter
	events   bus.EventBus
	source   PositionSource
	logger   log.Log

	owned   map[motion.EntityID]struct{}
	seen    map[motion.EntityID]struct{}
	pending []bus.Event
}

func New(registry *motion.Registry, filter *haptics.PulseFilter, events bus.EventBus, source PositionSource, logger log.Log) *System {
	return &System{
		registry: registry,
		filter:   filter,
		events:   events,
		source:   source,
		logger:   logger.With(log.String("system", Name)),
		owned:    make(map[motion.EntityID]struct{}),
		seen:     make(map[motion.EntityID]struct{}),
	}
}

func (s *System) Name() string               { return Name }
func (s *System) Priority() systems.Priority { return systems.PriorityHigh }

func (s *System) Initialize(context.Context) error {
	s.logger.Debug("tracking system initialized",
		log.Int("velocity_window", s.registry.Options().VelocityWindow),
		log.Int("smoothing_window", s.registry.Options().SmoothingWindow),
	)
	return nil
}

func (s *System) Shutdown(context.Context) error {
	s.logger.Debug("tracking system stopped", log.Int("entities", len(s.owned)))
	return nil
}

func (s *System) FixedUpdate(_ context.Context, step systems.Step) error {
	clear(s.seen)
	clear(s.pending)
	s.pending = s.pending[:0]

	var errs []error
	for _, sample := range s.source.Sample(step.Elapsed) {
		s.seen[sample.EntityID] = struct{}{}
		if s.registry.Track(sample.EntityID) {
			s.owned[sample.EntityID] = struct{}{}
			s.logger.Info("entity tracked", log.Stringer("entity", sample.EntityID))
		}

		snap, err := s.registry.Observe(sample.EntityID, sample.Position, step.DeltaTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("observe %s: %w", sample.EntityID, err))
			continue
		}
		s.pending = append(s.pending, bus.NewEvent(bus.TypeMotionSampled, Name, snap))

		if pulse, ok := s.filter.Evaluate(snap); ok {
			s.logger.Debug("haptic pulse",
				log.Stringer("entity", pulse.EntityID),
				log.Float64("amplitude", pulse.Amplitude),
				log.Object("peak", loggedVector(snap.Peak)),
			)
			s.pending = append(s.pending, bus.NewEvent(bus.TypeMotionPulse, Name, pulse))
		}
	}

	for id := range s.owned {
		if _, ok := s.seen[id]; ok {
			continue
		}
		delete(s.owned, id)
		s.registry.Untrack(id)
		s.filter.Forget(id)
		s.logger.Info("entity untracked", log.Stringer("entity", id))
		s.pending = append(s.pending, bus.NewEvent(bus.TypeMotionUntracked, Name, id))
	}

	if err := s.events.PublishBatch(s.pending...); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type loggedVector physics.Vec3

func (v loggedVector) MarshalLogObject(enc log.ObjectEncoder) error {
	enc.AddFloat64("x", v.X)
	enc.AddFloat64("y", v.Y)
	enc.AddFloat64("z", v.Z)
	return nil
}
