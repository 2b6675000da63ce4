package app

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/core/observability/metrics"
	"github.com/zeusync/motiontrack/internal/core/systems"
	"github.com/zeusync/motiontrack/internal/server"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled motion tracking service.
type App struct {
	Logger    *log.Logger
	Registry  *motion.Registry
	Scheduler *systems.Scheduler
	Server    *server.Server
	Collector *metrics.Collector
}

func New(logger *log.Logger, registry *motion.Registry, scheduler *systems.Scheduler, srv *server.Server, collector *metrics.Collector) *App {
	return &App{
		Logger:    logger,
		Registry:  registry,
		Scheduler: scheduler,
		Server:    srv,
		Collector: collector,
	}
}

// Run serves HTTP and drives the tick loop until ctx is cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if err := a.Server.Start(ctx); err != nil {
		return err
	}

	g.Go(func() error {
		return a.Scheduler.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Stop(stopCtx)
	})

	err := g.Wait()
	err = errors.Join(err, a.Collector.Detach())
	_ = a.Logger.Sync()
	return err
}
