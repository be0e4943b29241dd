package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/repbattle/internal/ai"
	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/gamedata"
	"github.com/samdwyer/repbattle/internal/telemetry"
)

// SimOptions controls a batch simulation.
type SimOptions struct {
	Runs        int
	Parallelism int           // Concurrent runs; 0 means one at a time
	Step        time.Duration // Simulated time per tick
	TimeLimit   time.Duration // Per bout; 0 means no limit
	Tracer      trace.Tracer  // Optional
	Logger      *slog.Logger  // Optional
}

// SimResult is one simulated gauntlet.
type SimResult struct {
	Run      int
	Seed     uint64
	Phase    Phase
	Bouts    []BoutResult
	TimedOut bool
}

// Simulate plays opts.Runs gauntlets with both sides driven by the AI policy.
// Run i uses seed cfg.Seed+i, so a batch is reproducible. Results are
// returned in run order.
func Simulate(ctx context.Context, catalog *gamedata.Catalog, cfg Config, opts SimOptions) ([]SimResult, error) {
	if opts.Runs <= 0 {
		return nil, nil
	}
	if opts.Step <= 0 {
		opts.Step = 100 * time.Millisecond
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.NoopTracer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, span := opts.Tracer.Start(ctx, "sim.batch", trace.WithAttributes(
		attribute.Int("sim.runs", opts.Runs),
		attribute.Int64("sim.seed", int64(cfg.Seed)),
		attribute.String("sim.class", cfg.ClassID),
	))
	defer span.End()

	results := make([]SimResult, opts.Runs)
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(opts.Parallelism, 1))

	for i := range opts.Runs {
		grp.Go(func() error {
			runCfg := cfg
			runCfg.Seed = cfg.Seed + uint64(i)
			r, err := simulateRun(ctx, catalog, runCfg, opts, i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sum := Summarize(results)
	span.SetAttributes(
		attribute.Int("sim.cleared", sum.Cleared),
		attribute.Int("sim.fallen", sum.Fallen),
		attribute.Int("sim.timed_out", sum.TimedOut),
	)
	return results, nil
}

func simulateRun(ctx context.Context, catalog *gamedata.Catalog, cfg Config, opts SimOptions, run int) (SimResult, error) {
	ctx, span := opts.Tracer.Start(ctx, "sim.run", trace.WithAttributes(
		attribute.Int("sim.run", run),
		attribute.Int64("sim.seed", int64(cfg.Seed)),
	))
	defer span.End()

	logger := opts.Logger.With("run", run)
	s, err := NewSession(catalog, cfg,
		WithAutoPlay(ai.NewPolicy(logger)),
		WithListener(telemetry.NewCombatObserver(ctx, opts.Tracer)),
		WithLogger(logger),
	)
	if err != nil {
		return SimResult{}, err
	}

	res := SimResult{Run: run, Seed: cfg.Seed}
	for !s.Phase().Over() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.Begin(); err != nil {
			return res, err
		}
		for s.Phase() == PhaseFighting {
			s.Advance(opts.Step)
			if opts.TimeLimit > 0 && s.Phase() == PhaseFighting && s.Engine().Elapsed() >= opts.TimeLimit {
				logger.Warn("bout exceeded time limit", "bout", s.Bout(), "limit", opts.TimeLimit)
				res.TimedOut = true
				s.Flee()
			}
		}
	}

	res.Phase = s.Phase()
	res.Bouts = s.Results()
	span.SetAttributes(
		attribute.String("sim.phase", res.Phase.String()),
		attribute.Int("sim.bouts_won", s.Wins()),
	)
	return res, nil
}

// EnemyRecord counts bouts against one enemy.
type EnemyRecord struct {
	Wins, Losses int
}

// Summary aggregates a batch.
type Summary struct {
	Runs     int
	Cleared  int
	Fallen   int
	TimedOut int
	Bouts    int
	Turns    int
	Elapsed  time.Duration
	ByEnemy  map[string]*EnemyRecord
}

// Summarize aggregates simulation results.
func Summarize(results []SimResult) Summary {
	sum := Summary{Runs: len(results), ByEnemy: make(map[string]*EnemyRecord)}
	for _, r := range results {
		switch r.Phase {
		case PhaseCleared:
			sum.Cleared++
		case PhaseFallen:
			sum.Fallen++
		}
		if r.TimedOut {
			sum.TimedOut++
		}
		for _, b := range r.Bouts {
			sum.Bouts++
			sum.Turns += b.Turns
			sum.Elapsed += b.Elapsed
			rec := sum.ByEnemy[b.Enemy]
			if rec == nil {
				rec = &EnemyRecord{}
				sum.ByEnemy[b.Enemy] = rec
			}
			if b.Result == combat.ResultPlayerWon {
				rec.Wins++
			} else {
				rec.Losses++
			}
		}
	}
	return sum
}

// ClearRate is the fraction of runs that won every bout.
func (s Summary) ClearRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Cleared) / float64(s.Runs)
}

// AvgTurns is the mean number of turns per bout.
func (s Summary) AvgTurns() float64 {
	if s.Bouts == 0 {
		return 0
	}
	return float64(s.Turns) / float64(s.Bouts)
}
