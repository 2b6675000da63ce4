package app

import (
	"fmt"

	"github.com/google/wire"
	"github.com/zeusync/motiontrack/internal/config"
	"github.com/zeusync/motiontrack/internal/core/events/bus"
	"github.com/zeusync/motiontrack/internal/core/haptics"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/core/observability/metrics"
	"github.com/zeusync/motiontrack/internal/core/simulation"
	"github.com/zeusync/motiontrack/internal/core/systems"
	"github.com/zeusync/motiontrack/internal/core/systems/tracking"
	"github.com/zeusync/motiontrack/internal/server"
)

// ProviderSet wires an App from a *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideBus,
	ProvideRegistry,
	ProvidePulseFilter,
	ProvideSource,
	ProvideCollector,
	tracking.New,
	ProvideScheduler,
	ProvideServer,
	New,
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithConfig(log.Config{Level: level, Format: cfg.Logging.Format}), nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideRegistry(cfg *config.Config) (*motion.Registry, error) {
	return motion.NewRegistry(motion.Options{
		VelocityWindow:  cfg.Tracking.VelocityWindow,
		SmoothingWindow: cfg.Tracking.SmoothingWindow,
	}, cfg.Tracking.Shards)
}

func ProvidePulseFilter(cfg *config.Config) (*haptics.PulseFilter, error) {
	return haptics.NewPulseFilter(haptics.Settings{
		Threshold:     cfg.Haptics.Threshold,
		MaxSpeed:      cfg.Haptics.MaxSpeed,
		CooldownTicks: cfg.Haptics.CooldownTicks,
	})
}

func ProvideSource(cfg *config.Config) tracking.PositionSource {
	return simulation.NewOrbits(simulation.Settings{
		Entities:     cfg.Simulation.Entities,
		Radius:       cfg.Simulation.Radius,
		AngularSpeed: cfg.Simulation.AngularSpeed,
		Bob:          cfg.Simulation.Bob,
		Seed:         cfg.Simulation.Seed,
	})
}

// ProvideCollector returns a collector already subscribed to b.
func ProvideCollector(b bus.EventBus) (*metrics.Collector, error) {
	c := metrics.New()
	if err := c.Attach(b); err != nil {
		return nil, fmt.Errorf("attach metrics: %w", err)
	}
	return c, nil
}

func ProvideScheduler(cfg *config.Config, logger log.Log, tracker *tracking.System) (*systems.Scheduler, error) {
	s, err := systems.NewScheduler(cfg.Tracking.TickRate.Std(), logger)
	if err != nil {
		return nil, err
	}
	if err = s.Register(tracker); err != nil {
		return nil, err
	}
	return s, nil
}

func ProvideServer(cfg *config.Config, registry *motion.Registry, collector *metrics.Collector, logger log.Log) *server.Server {
	return server.New(server.Config{
		Address:        cfg.Server.Address,
		StreamInterval: cfg.Server.StreamInterval.Std(),
	}, registry, collector, logger)
}
