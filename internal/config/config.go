package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalidConfig     = errors.New("invalid config")
)

type Config struct {
	Tracking   TrackingConfig   `yaml:"tracking" toml:"tracking"`
	Haptics    HapticsConfig    `yaml:"haptics" toml:"haptics"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
}

type TrackingConfig struct {
	VelocityWindow  int      `yaml:"velocity_window" toml:"velocity_window"`
	SmoothingWindow int      `yaml:"smoothing_window" toml:"smoothing_window"`
	TickRate        Duration `yaml:"tick_rate" toml:"tick_rate"`
	Shards          int      `yaml:"shards" toml:"shards"`
}

type HapticsConfig struct {
	Threshold     float64 `yaml:"threshold" toml:"threshold"`           // peak speed that triggers a pulse
	MaxSpeed      float64 `yaml:"max_speed" toml:"max_speed"`           // peak speed mapped to full amplitude
	CooldownTicks int     `yaml:"cooldown_ticks" toml:"cooldown_ticks"` // ticks suppressed after a pulse
}

type ServerConfig struct {
	Address        string   `yaml:"address" toml:"address"`
	StreamInterval Duration `yaml:"stream_interval" toml:"stream_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

type SimulationConfig struct {
	Entities     int     `yaml:"entities" toml:"entities"`
	Radius       float64 `yaml:"radius" toml:"radius"`
	AngularSpeed float64 `yaml:"angular_speed" toml:"angular_speed"` // radians per second
	Bob          float64 `yaml:"bob" toml:"bob"`                     // vertical amplitude
	Seed         uint64  `yaml:"seed" toml:"seed"`
}

// Load reads path and decodes it by extension (.yaml, .yml or .toml) on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext and validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case "toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Tracking: TrackingConfig{
			VelocityWindow:  5,
			SmoothingWindow: 4,
			TickRate:        Duration(20 * time.Millisecond),
			Shards:          16,
		},
		Haptics: HapticsConfig{
			Threshold:     2.5,
			MaxSpeed:      8,
			CooldownTicks: 10,
		},
		Server: ServerConfig{
			Address:        "127.0.0.1:8080",
			StreamInterval: Duration(100 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Simulation: SimulationConfig{
			Entities:     4,
			Radius:       1.5,
			AngularSpeed: 2,
			Bob:          0.25,
			Seed:         1,
		},
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Tracking.VelocityWindow > 0, "tracking.velocity_window must be positive, got %d", c.Tracking.VelocityWindow)
	check(c.Tracking.SmoothingWindow > 0, "tracking.smoothing_window must be positive, got %d", c.Tracking.SmoothingWindow)
	check(c.Tracking.TickRate > 0, "tracking.tick_rate must be positive, got %s", c.Tracking.TickRate)
	check(c.Tracking.Shards >= 0, "tracking.shards must not be negative, got %d", c.Tracking.Shards)

	check(c.Haptics.Threshold >= 0, "haptics.threshold must not be negative, got %g", c.Haptics.Threshold)
	check(c.Haptics.MaxSpeed >= 0, "haptics.max_speed must not be negative, got %g", c.Haptics.MaxSpeed)
	check(c.Haptics.CooldownTicks >= 0, "haptics.cooldown_ticks must not be negative, got %d", c.Haptics.CooldownTicks)

	check(c.Server.StreamInterval > 0, "server.stream_interval must be positive, got %s", c.Server.StreamInterval)

	check(c.Logging.Format == "json" || c.Logging.Format == "console", "logging.format must be json or console, got %q", c.Logging.Format)

	check(c.Simulation.Entities >= 0, "simulation.entities must not be negative, got %d", c.Simulation.Entities)

	return errors.Join(errs...)
}
