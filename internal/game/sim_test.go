package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/telemetry"
)

func TestSimulate(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := testConfig()
	cfg.Seed = 100
	results, err := Simulate(context.Background(), testCatalog(), cfg, SimOptions{
		Runs:        4,
		Parallelism: 2,
		Step:        tick,
		Tracer:      tp.Tracer("test"),
		Logger:      quietLogger(),
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Run)
		assert.Equal(t, uint64(100+i), r.Seed)
		assert.Equal(t, PhaseCleared, r.Phase)
		assert.Len(t, r.Bouts, 2)
		assert.False(t, r.TimedOut)
	}

	names := map[string]int{}
	for _, span := range rec.Ended() {
		names[span.Name()]++
	}
	assert.Equal(t, 1, names["sim.batch"])
	assert.Equal(t, 4, names["sim.run"])
	assert.Equal(t, 8, names[telemetry.SpanEncounter])
}

func TestSimulateIsReproducible(t *testing.T) {
	opts := SimOptions{Runs: 3, Parallelism: 3, Step: tick, Logger: quietLogger()}
	cfg := testConfig()
	cfg.Bouts = 3

	a, err := Simulate(context.Background(), testCatalog(), cfg, opts)
	require.NoError(t, err)
	b, err := Simulate(context.Background(), testCatalog(), cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulateTimeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.ClassID = "idler"
	cfg.Bouts = 1

	results, err := Simulate(context.Background(), testCatalog(), cfg, SimOptions{
		Runs:      1,
		Step:      tick,
		TimeLimit: 5 * time.Second,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Neither side can finish the other in time: the boss pokes for 5 every
	// two seconds and the idler only stretches.
	r := results[0]
	assert.True(t, r.TimedOut)
	assert.Equal(t, PhaseFallen, r.Phase)
	require.Len(t, r.Bouts, 1)
	assert.True(t, r.Bouts[0].Abandoned)
	assert.Equal(t, combat.ResultPlayerLost, r.Bouts[0].Result)
	assert.Equal(t, 5*time.Second, r.Bouts[0].Elapsed)
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, testCatalog(), testConfig(), SimOptions{Runs: 2, Logger: quietLogger()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulateNoRuns(t *testing.T) {
	results, err := Simulate(context.Background(), testCatalog(), testConfig(), SimOptions{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSummarize(t *testing.T) {
	results := []SimResult{
		{Phase: PhaseCleared, Bouts: []BoutResult{
			{Enemy: "Slime", Result: combat.ResultPlayerWon, Turns: 4, Elapsed: time.Second},
			{Enemy: "King Slime", Result: combat.ResultPlayerWon, Turns: 6, Elapsed: 2 * time.Second},
		}},
		{Phase: PhaseFallen, TimedOut: true, Bouts: []BoutResult{
			{Enemy: "Slime", Result: combat.ResultPlayerLost, Turns: 2, Elapsed: time.Second, Abandoned: true},
		}},
	}

	sum := Summarize(results)
	assert.Equal(t, 2, sum.Runs)
	assert.Equal(t, 1, sum.Cleared)
	assert.Equal(t, 1, sum.Fallen)
	assert.Equal(t, 1, sum.TimedOut)
	assert.Equal(t, 3, sum.Bouts)
	assert.Equal(t, 4*time.Second, sum.Elapsed)
	assert.InDelta(t, 0.5, sum.ClearRate(), 1e-9)
	assert.InDelta(t, 4.0, sum.AvgTurns(), 1e-9)
	assert.Equal(t, &EnemyRecord{Wins: 1, Losses: 1}, sum.ByEnemy["Slime"])
	assert.Equal(t, &EnemyRecord{Wins: 1}, sum.ByEnemy["King Slime"])

	assert.Zero(t, Summarize(nil).ClearRate())
	assert.Zero(t, Summarize(nil).AvgTurns())
}
