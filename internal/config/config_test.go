package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 1.0, cfg.SpeedFactor)
	assert.Equal(t, 1.5, cfg.CritMultiplier)
	assert.Equal(t, "lifter", cfg.Player.Class)
	assert.Equal(t, 3, cfg.Gauntlet.Length)
	assert.False(t, cfg.Telemetry.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repbattle.yaml")
	data := `
seed: 42
tick_interval: 50ms
log_level: debug
player:
  name: Rex
  class: monk
  skills: [jab, earthshaker]
gauntlet:
  length: 5
sim:
  runs: 10
  time_limit: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "Rex", cfg.Player.Name)
	assert.Equal(t, "monk", cfg.Player.Class)
	assert.Equal(t, 1, cfg.Player.Level, "unset keys keep defaults")
	assert.Equal(t, []string{"jab", "earthshaker"}, cfg.Player.Skills)
	assert.Nil(t, cfg.Player.Passives)
	assert.Equal(t, 5, cfg.Gauntlet.Length)
	assert.Equal(t, 10, cfg.Sim.Runs)
	assert.Equal(t, time.Minute, cfg.Sim.TimeLimit)
	assert.Equal(t, 1.5, cfg.CritMultiplier)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"REPBATTLE_SEED":              "7",
		"REPBATTLE_TICK_INTERVAL":     "250ms",
		"REPBATTLE_PLAYER_CLASS":      "sprinter",
		"REPBATTLE_GAUNTLET_LENGTH":   "2",
		"REPBATTLE_TELEMETRY":         "true",
		"HONEYCOMB_REPBATTLE_API_KEY": "secret",
		"REPBATTLE_LOG_LEVEL":         "",
		"REPBATTLE_PLAYER_SKILLS":     "jab, power_punch,,",
		"REPBATTLE_PLAYER_PASSIVES":   "thorns",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "sprinter", cfg.Player.Class)
	assert.Equal(t, []string{"jab", "power_punch"}, cfg.Player.Skills)
	assert.Equal(t, []string{"thorns"}, cfg.Player.Passives)
	assert.Equal(t, 2, cfg.Gauntlet.Length)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "info", cfg.LogLevel, "empty values are ignored")
	assert.Equal(t, map[string]string{
		"x-honeycomb-team":    "secret",
		"x-honeycomb-dataset": "repbattle",
	}, cfg.TelemetryHeaders())
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "REPBATTLE_SEED" || k == "REPBATTLE_SPEED_FACTOR" {
			return "fast", true
		}
		return "", false
	}

	cfg := Default()
	err := cfg.applyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPBATTLE_SEED")
	assert.Contains(t, err.Error(), "REPBATTLE_SPEED_FACTOR")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"zero speed", func(c *Config) { c.SpeedFactor = 0 }},
		{"low crit", func(c *Config) { c.CritMultiplier = 0.5 }},
		{"level zero", func(c *Config) { c.Player.Level = 0 }},
		{"empty gauntlet", func(c *Config) { c.Gauntlet.Length = 0 }},
		{"zero sim step", func(c *Config) { c.Sim.Step = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTelemetryHeadersWithoutKey(t *testing.T) {
	assert.Nil(t, Default().TelemetryHeaders())
}
