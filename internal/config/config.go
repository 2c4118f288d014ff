package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/physics"
	"github.com/san-kum/choreo/internal/sim"
)

const (
	DefaultFPS         = 60
	DefaultFrames      = 3000
	DefaultRecordEvery = 1
	DefaultDataDir     = ".choreo"
	DefaultLogLevel    = "info"
)

type Config struct {
	Solution      int     `yaml:"solution"`
	Focus         int     `yaml:"focus"`
	Integrator    string  `yaml:"integrator"`
	BaseDt        float64 `yaml:"base_dt"`
	BaseSpeed     int     `yaml:"base_speed"`
	CheckInterval int     `yaml:"check_interval"`
	VelocityLimit float64 `yaml:"velocity_limit"`
	PositionLimit float64 `yaml:"position_limit"`
	Softening     float64 `yaml:"softening"`
	FPS           int     `yaml:"fps"`
	Frames        int     `yaml:"frames"`
	RecordEvery   int     `yaml:"record_every"`
	DataDir       string  `yaml:"data_dir"`
	LogLevel      string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	p := sim.DefaultParams()
	return &Config{
		Solution:      catalog.Default,
		Focus:         -1,
		Integrator:    integrators.Default,
		BaseDt:        p.BaseDt,
		BaseSpeed:     p.BaseSpeed,
		CheckInterval: p.CheckInterval,
		VelocityLimit: p.VelocityLimit,
		PositionLimit: p.PositionLimit,
		FPS:           DefaultFPS,
		Frames:        DefaultFrames,
		RecordEvery:   DefaultRecordEvery,
		DataDir:       DefaultDataDir,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the keys present in a YAML file onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := catalog.Get(c.Solution); err != nil {
		return err
	}
	if c.Focus < -1 || c.Focus >= dynamo.NumBodies {
		return &dynamo.ArgumentError{Name: "focus", Value: c.Focus, Min: -1, Max: dynamo.NumBodies - 1}
	}
	if _, err := integrators.Get(c.Integrator, nil); err != nil {
		return err
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Softening < 0 {
		return fmt.Errorf("%w: softening must not be negative, got %g", dynamo.ErrInvalidParams, c.Softening)
	}
	if c.RecordEvery < 1 {
		return fmt.Errorf("%w: record_every must be at least 1, got %d", dynamo.ErrInvalidParams, c.RecordEvery)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", dynamo.ErrInvalidParams, c.Frames)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Params() sim.Params {
	return sim.Params{
		BaseDt:        c.BaseDt,
		BaseSpeed:     c.BaseSpeed,
		CheckInterval: c.CheckInterval,
		VelocityLimit: c.VelocityLimit,
		PositionLimit: c.PositionLimit,
	}
}

func (c *Config) Field() *physics.Field {
	return &physics.Field{Softening: c.Softening}
}

// NewIntegrator builds the configured integrator over the configured field.
func (c *Config) NewIntegrator() (integrators.Integrator, error) {
	return integrators.Get(c.Integrator, c.Field())
}

// NewController builds a controller from the configuration and resets it
// to the configured solution and focus.
func (c *Config) NewController(opts ...sim.Option) (*sim.Controller, error) {
	integ, err := c.NewIntegrator()
	if err != nil {
		return nil, err
	}
	ctrl, err := sim.New(c.Params(), integ, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Reset(c.Solution, c.Focus); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", dynamo.ErrInvalidParams, c.LogLevel)
	}
	return l, nil
}
