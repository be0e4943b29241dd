// Package main is the entry point for repbattle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/repbattle/internal/config"
	"github.com/samdwyer/repbattle/internal/game"
	"github.com/samdwyer/repbattle/internal/gamedata"
	"github.com/samdwyer/repbattle/internal/telemetry"
	"github.com/samdwyer/repbattle/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "repbattle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "repbattle.yaml", "path to the YAML config file")
	simMode := flag.Bool("sim", false, "run headless simulations instead of the interactive game")
	runs := flag.Int("runs", 0, "number of simulations (0 uses the config value)")
	seed := flag.Uint64("seed", 0, "random seed (0 uses the config value or the clock)")
	flag.Parse()

	// Load .env file for local development. Not fatal; env vars might be set
	// directly.
	envErr := godotenv.Load()

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		settings.Seed = *seed
	}
	if settings.Seed == 0 {
		settings.Seed = uint64(time.Now().UnixNano())
	}

	mode := "interactive"
	if *simMode {
		mode = "sim"
	}
	logger, closeLog, err := newLogger(settings, mode)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug(".env file not loaded", "err", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, flush := setupTelemetry(ctx, settings, mode, logger)
	defer flush()

	catalog, err := loadCatalog(settings.CatalogDir)
	if err != nil {
		return err
	}
	for _, missing := range catalog.Dangling() {
		logger.Warn("catalog reference not found", "ref", missing)
	}

	cfg := game.FromSettings(settings)
	logger.Info("repbattle starting", "mode", mode, "seed", settings.Seed, "class", cfg.ClassID)

	if *simMode {
		if *runs > 0 {
			settings.Sim.Runs = *runs
		}
		return simulate(ctx, catalog, cfg, settings.Sim, tracer, logger)
	}
	return play(ctx, catalog, cfg, settings.CatalogDir, tracer, logger)
}

// newLogger writes text logs at the configured level. The interactive game
// owns the terminal, so it logs to a file instead of stderr.
func newLogger(settings config.Config, mode string) (*slog.Logger, func(), error) {
	level, err := settings.Level()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if mode == "sim" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}
	f, err := os.OpenFile("repbattle.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
}

// setupTelemetry installs the OTLP exporter when enabled. Failure is not
// fatal: the game runs without observability. The returned function flushes
// pending spans.
func setupTelemetry(ctx context.Context, settings config.Config, mode string, logger *slog.Logger) (trace.Tracer, func()) {
	if !settings.Telemetry.Enabled {
		return telemetry.NoopTracer(), func() {}
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		EndpointURL: settings.Telemetry.Endpoint,
		Headers:     settings.TelemetryHeaders(),
		Mode:        mode,
	})
	if err != nil {
		logger.Warn("telemetry setup failed; continuing without it", "err", err)
		return telemetry.NoopTracer(), func() {}
	}
	return telemetry.Tracer("game"), func() {
		// The run context may already be cancelled; flush on a fresh one.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "err", err)
		}
	}
}

func loadCatalog(dir string) (*gamedata.Catalog, error) {
	if dir == "" {
		return gamedata.LoadCatalog()
	}
	catalog, err := gamedata.LoadCatalogFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", dir, err)
	}
	return catalog, nil
}

func play(ctx context.Context, catalog *gamedata.Catalog, cfg game.Config, catalogDir string, tracer trace.Tracer, logger *slog.Logger) error {
	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	g, err := game.New(screen, catalog, cfg, tracer, logger)
	if err != nil {
		screen.Close()
		return err
	}
	defer g.Close()

	if catalogDir != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		reloads, err := gamedata.WatchCatalog(watchCtx, catalogDir, logger)
		if err != nil {
			logger.Warn("catalog watch unavailable", "dir", catalogDir, "err", err)
		} else {
			g.WatchReloads(reloads)
		}
	}

	if err := g.Run(ctx); err != nil {
		return err
	}

	s := g.Session()
	fmt.Printf("%s after %d of %d bouts\n", outcome(s.Phase()), s.Wins(), s.Bouts())
	for _, r := range s.Results() {
		fmt.Printf("  bout %d: %s (lv %d) %s in %d turns, %s\n",
			r.Bout, r.Enemy, r.Level, r.Result, r.Turns, r.Elapsed.Round(100*time.Millisecond))
	}
	return nil
}

func outcome(p game.Phase) string {
	switch p {
	case game.PhaseCleared:
		return "Gauntlet cleared"
	case game.PhaseFallen:
		return "Defeated"
	default:
		return "Left"
	}
}

func simulate(ctx context.Context, catalog *gamedata.Catalog, cfg game.Config, sim config.SimConfig, tracer trace.Tracer, logger *slog.Logger) error {
	start := time.Now()
	results, err := game.Simulate(ctx, catalog, cfg, game.SimOptions{
		Runs:        sim.Runs,
		Parallelism: sim.Parallelism,
		Step:        sim.Step,
		TimeLimit:   sim.TimeLimit,
		Tracer:      tracer,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	sum := game.Summarize(results)
	fmt.Printf("%d runs of %s (seed %d) in %s\n", sum.Runs, cfg.ClassID, cfg.Seed, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  cleared %d (%.1f%%), fallen %d, timed out %d\n",
		sum.Cleared, 100*sum.ClearRate(), sum.Fallen, sum.TimedOut)
	fmt.Printf("  %d bouts, %.1f turns per bout\n", sum.Bouts, sum.AvgTurns())

	enemies := make([]string, 0, len(sum.ByEnemy))
	for name := range sum.ByEnemy {
		enemies = append(enemies, name)
	}
	slices.Sort(enemies)
	for _, name := range enemies {
		rec := sum.ByEnemy[name]
		fmt.Printf("  vs %-12s won %d lost %d\n", name, rec.Wins, rec.Losses)
	}
	return nil
}
