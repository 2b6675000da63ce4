package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/motiontrack/internal/config"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	logLevel := flag.String("log-level", "", "override logging.level")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building app:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("motiond starting",
		log.String("address", cfg.Server.Address),
		log.Duration("tick_rate", cfg.Tracking.TickRate.Std()),
		log.Int("velocity_window", cfg.Tracking.VelocityWindow),
	)

	if err = app.Run(ctx); err != nil {
		app.Logger.Error("motiond stopped with error", log.Error(err))
		_ = app.Logger.Sync()
		os.Exit(1)
	}
}
