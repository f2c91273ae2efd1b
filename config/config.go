package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/warefleet/agvsim/core/dispatch"
	"github.com/warefleet/agvsim/core/metrics"
	"github.com/warefleet/agvsim/core/vehicle"
	"github.com/warefleet/agvsim/infra/mqtt"
)

// Config aggregates every configurable section of the simulator.
type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Vehicle    vehicle.Config   `json:"vehicle"`
	Dispatch   dispatch.Config  `json:"dispatch"`
	Layout     LayoutConfig     `json:"layout"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	SimLog     SimLogConfig     `json:"simlog"`
}

// SimulationConfig controls the run loop.
type SimulationConfig struct {
	Fleet          int   `json:"fleet"`
	Seed           int64 `json:"seed"`
	Ticks          int   `json:"ticks"`
	TickIntervalMS int   `json:"tick_interval_ms"`
}

// SetDefaults fills in the default run parameters.
func (c *SimulationConfig) SetDefaults() {
	if c.Fleet <= 0 {
		c.Fleet = 5
	}
	if c.Ticks <= 0 {
		c.Ticks = 1000
	}
}

// Validate checks the run parameters.
func (c SimulationConfig) Validate() error {
	if c.Fleet <= 0 {
		return fmt.Errorf("simulation: fleet must be positive")
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("simulation: ticks must be positive")
	}
	if c.TickIntervalMS < 0 {
		return fmt.Errorf("simulation: tick_interval_ms must not be negative")
	}
	return nil
}

// LayoutConfig selects the warehouse floor plan. Rows overrides Path; when
// both are empty the built-in layout is used.
type LayoutConfig struct {
	Path string   `json:"path"`
	Rows []string `json:"rows"`
}

// SimLogConfig selects the tick log backend.
type SimLogConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// Validate checks the backend name.
func (c SimLogConfig) Validate() error {
	switch c.Backend {
	case "", "jsonl", "sqlite":
	default:
		return fmt.Errorf("simlog: unknown backend %q", c.Backend)
	}
	if c.Backend != "" && c.Path == "" {
		return fmt.Errorf("simlog: path is required for backend %q", c.Backend)
	}
	return nil
}

// SetDefaults fills in defaults on every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Vehicle.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.SimLog.Validate()
}

// Default returns a ready-to-run configuration using the built-in layout.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the configuration from a YAML or JSON file, applies K_
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The "__" stays in the key so the
	// provider's delimiter can unflatten it into section.field.
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "k_")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
