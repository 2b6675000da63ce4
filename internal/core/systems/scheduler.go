package systems

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/motiontrack/internal/core/observability/log"
)

var (
	ErrInvalidTickRate   = errors.New("tick rate must be positive")
	ErrDuplicateSystem   = errors.New("system already registered")
	ErrSchedulerRunning  = errors.New("scheduler is already running")
	ErrSchedulerShutdown = errors.New("scheduler is shut down")
)

// Scheduler runs registered systems in priority order once per fixed tick.
// A failing FixedUpdate is logged and counted; it does not stop the loop.
type Scheduler struct {
	tickRate time.Duration
	logger   log.Log

	mu      sync.Mutex
	systems []System
	metrics map[string]*Metrics
	state   StateIdentity
	tick    uint64
}

func NewScheduler(tickRate time.Duration, logger log.Log) (*Scheduler, error) {
	if tickRate <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTickRate, tickRate)
	}
	return &Scheduler{
		tickRate: tickRate,
		logger:   logger.With(log.String("component", "scheduler")),
		metrics:  make(map[string]*Metrics),
	}, nil
}

func (s *Scheduler) TickRate() time.Duration { return s.tickRate }

// Register adds sys. Systems can only be added before Run.
func (s *Scheduler) Register(sys System) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return ErrSchedulerRunning
	}
	if _, ok := s.metrics[sys.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, sys.Name())
	}
	s.systems = append(s.systems, sys)
	slices.SortStableFunc(s.systems, func(a, b System) int {
		return int(b.Priority()) - int(a.Priority())
	})
	s.metrics[sys.Name()] = &Metrics{}
	return nil
}

// Run initializes every system, ticks until ctx is done, then shuts them down
// in reverse order. It returns nil on a clean stop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateUninitialized:
	case StateShutdown, StateFailed:
		s.mu.Unlock()
		return ErrSchedulerShutdown
	default:
		s.mu.Unlock()
		return ErrSchedulerRunning
	}
	s.state = StateInitializing
	systems := slices.Clone(s.systems)
	s.mu.Unlock()

	for i, sys := range systems {
		if err := sys.Initialize(ctx); err != nil {
			s.shutdown(systems[:i])
			s.setState(StateFailed)
			return fmt.Errorf("initialize %s: %w", sys.Name(), err)
		}
	}

	s.setState(StateRunning)
	s.logger.Info("scheduler started",
		log.Duration("tick_rate", s.tickRate),
		log.Int("systems", len(systems)),
	)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setState(StateShuttingDown)
			s.shutdown(systems)
			s.setState(StateShutdown)
			s.logger.Info("scheduler stopped", log.Uint64("ticks", s.Tick()))
			return nil
		case <-ticker.C:
			s.step(ctx, systems)
		}
	}
}

// step advances simulated time by exactly one tick. Ticks dropped by the
// ticker while a step ran late are not replayed.
func (s *Scheduler) step(ctx context.Context, systems []System) {
	s.mu.Lock()
	s.tick++
	st := Step{
		Tick:      s.tick,
		DeltaTime: s.tickRate.Seconds(),
		Elapsed:   time.Duration(s.tick) * s.tickRate,
	}
	s.mu.Unlock()

	for _, sys := range systems {
		start := time.Now()
		err := sys.FixedUpdate(ctx, st)
		took := time.Since(start)

		s.mu.Lock()
		s.metrics[sys.Name()].record(start, took, err)
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn("fixed update failed",
				log.String("system", sys.Name()),
				log.Uint64("tick", st.Tick),
				log.Error(err),
			)
		}
	}
}

// shutdown stops systems in reverse priority order with a fresh context,
// since the run context is usually already cancelled here.
func (s *Scheduler) shutdown(systems []System) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(systems) - 1; i >= 0; i-- {
		if err := systems[i].Shutdown(ctx); err != nil {
			s.logger.Error("system shutdown failed", log.String("system", systems[i].Name()), log.Error(err))
		}
	}
}

func (s *Scheduler) setState(state StateIdentity) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Scheduler) State() StateIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Metrics returns a copy of the metrics of the named system.
func (s *Scheduler) Metrics(name string) (Metrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}
