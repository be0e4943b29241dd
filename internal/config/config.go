// Package config loads repbattle settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for a repbattle run.
type Config struct {
	// Seed drives enemy selection and the dodge and crit rolls. Zero picks a
	// seed from the clock.
	Seed uint64 `yaml:"seed"`

	// TickInterval is how often the interactive session advances the engine.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Tuning
	SpeedFactor    float64 `yaml:"speed_factor"`
	CritMultiplier float64 `yaml:"crit_multiplier"`

	// CatalogDir, when set, loads skills.json, passives.json, enemies.json
	// and classes.json from this directory instead of the embedded copies.
	CatalogDir string `yaml:"catalog_dir"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Player    PlayerConfig    `yaml:"player"`
	Gauntlet  GauntletConfig  `yaml:"gauntlet"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PlayerConfig describes the player's fighter.
type PlayerConfig struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
	Level int    `yaml:"level"`

	// Skills and Passives replace the class default loadout when set.
	Skills   []string `yaml:"skills"`
	Passives []string `yaml:"passives"`
}

// GauntletConfig controls the run of consecutive opponents.
type GauntletConfig struct {
	// Length is the number of bouts. The last one is a boss when the catalog
	// has any.
	Length int `yaml:"length"`
	// LevelStep is added to the enemy level after each bout.
	LevelStep int `yaml:"level_step"`
}

// SimConfig controls headless batch simulation.
type SimConfig struct {
	Runs        int           `yaml:"runs"`
	Parallelism int           `yaml:"parallelism"`
	Step        time.Duration `yaml:"step"`       // Simulated time per tick
	TimeLimit   time.Duration `yaml:"time_limit"` // Simulated time before a bout is abandoned
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Dataset  string `yaml:"dataset"`
	APIKey   string `yaml:"api_key"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		TickInterval:   100 * time.Millisecond,
		SpeedFactor:    1.0,
		CritMultiplier: 1.5,
		LogLevel:       "info",
		Player: PlayerConfig{
			Name:  "Hero",
			Class: "lifter",
			Level: 1,
		},
		Gauntlet: GauntletConfig{
			Length:    3,
			LevelStep: 1,
		},
		Sim: SimConfig{
			Runs:        100,
			Parallelism: 4,
			Step:        100 * time.Millisecond,
			TimeLimit:   10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Endpoint: "https://api.honeycomb.io",
			Dataset:  "repbattle",
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// REPBATTLE_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. lookup is os.LookupEnv outside
// tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = nil
			for _, id := range strings.Split(v, ",") {
				if id = strings.TrimSpace(id); id != "" {
					*dst = append(*dst, id)
				}
			}
		}
	}
	var errs []string
	num := func(key string, parse func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := parse(v); err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q", key, v))
			}
		}
	}

	num("REPBATTLE_SEED", func(v string) (err error) {
		c.Seed, err = strconv.ParseUint(v, 10, 64)
		return err
	})
	num("REPBATTLE_TICK_INTERVAL", func(v string) (err error) {
		c.TickInterval, err = time.ParseDuration(v)
		return err
	})
	num("REPBATTLE_SPEED_FACTOR", func(v string) (err error) {
		c.SpeedFactor, err = strconv.ParseFloat(v, 64)
		return err
	})
	num("REPBATTLE_PLAYER_LEVEL", func(v string) (err error) {
		c.Player.Level, err = strconv.Atoi(v)
		return err
	})
	num("REPBATTLE_GAUNTLET_LENGTH", func(v string) (err error) {
		c.Gauntlet.Length, err = strconv.Atoi(v)
		return err
	})
	num("REPBATTLE_TELEMETRY", func(v string) (err error) {
		c.Telemetry.Enabled, err = strconv.ParseBool(v)
		return err
	})
	str("REPBATTLE_CATALOG_DIR", &c.CatalogDir)
	str("REPBATTLE_LOG_LEVEL", &c.LogLevel)
	str("REPBATTLE_PLAYER_NAME", &c.Player.Name)
	str("REPBATTLE_PLAYER_CLASS", &c.Player.Class)
	list("REPBATTLE_PLAYER_SKILLS", &c.Player.Skills)
	list("REPBATTLE_PLAYER_PASSIVES", &c.Player.Passives)
	str("HONEYCOMB_REPBATTLE_API_KEY", &c.Telemetry.APIKey)
	str("HONEYCOMB_REPBATTLE_DATASET", &c.Telemetry.Dataset)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, ", "))
	}
	return nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	case c.SpeedFactor <= 0:
		return fmt.Errorf("speed_factor must be positive, got %g", c.SpeedFactor)
	case c.CritMultiplier < 1:
		return fmt.Errorf("crit_multiplier must be at least 1, got %g", c.CritMultiplier)
	case c.Player.Level < 1:
		return fmt.Errorf("player.level must be at least 1, got %d", c.Player.Level)
	case c.Gauntlet.Length < 1:
		return fmt.Errorf("gauntlet.length must be at least 1, got %d", c.Gauntlet.Length)
	case c.Sim.Step <= 0:
		return fmt.Errorf("sim.step must be positive, got %s", c.Sim.Step)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// TelemetryHeaders returns the OTLP headers for the configured API key, or
// nil when none is set.
func (c Config) TelemetryHeaders() map[string]string {
	if c.Telemetry.APIKey == "" {
		return nil
	}
	return map[string]string{
		"x-honeycomb-team":    c.Telemetry.APIKey,
		"x-honeycomb-dataset": c.Telemetry.Dataset,
	}
}
