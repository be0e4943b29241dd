package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/gamedata"
	"github.com/samdwyer/repbattle/internal/telemetry"
	"github.com/samdwyer/repbattle/internal/ui"
)

// Game runs a gauntlet interactively in the terminal.
type Game struct {
	screen    *ui.Screen
	renderer  *ui.Renderer
	session   *Session
	tracer    trace.Tracer
	logger    *slog.Logger
	interval  time.Duration
	reloads   <-chan *gamedata.Catalog
	closeOnce sync.Once
}

// New creates a game on the given screen. tracer may be nil.
func New(screen *ui.Screen, catalog *gamedata.Catalog, cfg Config, tracer trace.Tracer, logger *slog.Logger) (*Game, error) {
	if tracer == nil {
		tracer = telemetry.NoopTracer()
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		tracer:   tracer,
		logger:   logger,
		interval: cfg.TickInterval,
	}
	if g.interval <= 0 {
		g.interval = 100 * time.Millisecond
	}

	session, err := NewSession(catalog, cfg,
		WithListener(g.renderer),
		WithListener(telemetry.NewCombatObserver(context.Background(), tracer)),
		WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	g.session = session
	return g, nil
}

// WatchReloads makes the loop apply catalogs received on ch. Call it before
// Run.
func (g *Game) WatchReloads(ch <-chan *gamedata.Catalog) { g.reloads = ch }

// Session returns the underlying session.
func (g *Game) Session() *Session { return g.session }

// Run executes the main loop until the player quits, the gauntlet ends and
// is acknowledged, or ctx is cancelled. Terminal events are read on their
// own goroutine; the engine is only touched by the loop goroutine.
func (g *Game) Run(ctx context.Context) error {
	ctx, span := g.tracer.Start(ctx, "game.run")
	defer span.End()

	if err := g.session.Begin(); err != nil {
		return fmt.Errorf("starting first bout: %w", err)
	}

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				// Screen closed.
				return nil
			}
			select {
			case events <- ev:
			case <-done:
				return nil
			}
		}
	})

	grp.Go(func() error {
		defer g.Close()
		defer close(done)
		return g.loop(ctx, events)
	})

	err := grp.Wait()
	span.SetAttributes(
		attribute.String("game.phase", g.session.Phase().String()),
		attribute.Int("game.bouts_won", g.session.Wins()),
		attribute.Int("game.bouts", g.session.Bouts()),
	)
	return err
}

func (g *Game) loop(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.render()
	for {
		select {
		case <-ctx.Done():
			if g.session.Phase() == PhaseFighting {
				g.session.Flee()
			}
			return nil

		case <-ticker.C:
			if g.session.Phase() != PhaseFighting {
				continue
			}
			g.session.Advance(g.interval)
			g.render()

		case c, ok := <-g.reloads:
			if !ok {
				g.reloads = nil
				continue
			}
			g.reload(c)
			g.render()

		case ev := <-events:
			quit, err := g.handleEvent(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			g.render()
		}
	}
}

// handleEvent processes a single terminal event.
func (g *Game) handleEvent(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
		return false, nil
	case *tcell.EventKey:
		return g.handleAction(KeyAction(ev))
	}
	return false, nil
}

// handleAction applies a decoded key press to the session.
func (g *Game) handleAction(a Action) (quit bool, err error) {
	s := g.session

	if a.Kind == ActionQuit {
		s.Flee()
		return true, nil
	}

	switch s.Phase() {
	case PhaseFighting:
		switch a.Kind {
		case ActionFlee:
			s.Flee()
		case ActionSkill:
			if !s.Engine().Awaiting() {
				return false, nil
			}
			if err := s.Choose(a.Slot); err != nil {
				g.logger.Debug("choice rejected", "slot", a.Slot+1, "err", err)
				g.notify(rejection(err))
			}
		}
		return false, nil

	case PhaseBoutWon:
		// Any key moves on; q leaves instead.
		if a.Kind == ActionFlee {
			return true, nil
		}
		if err := s.Begin(); err != nil {
			return true, err
		}
		return false, nil

	case PhaseCleared, PhaseFallen:
		return true, nil
	}
	return false, nil
}

func (g *Game) reload(c *gamedata.Catalog) {
	g.session.Reload(c)
	g.notify("Catalog reloaded; applies from the next bout.")
}

func rejection(err error) string {
	switch {
	case errors.Is(err, ErrNoSuchSlot):
		return "No skill in that slot."
	case errors.Is(err, combat.ErrInvalidSelection):
		return "That skill is not ready."
	default:
		return "Cannot act right now."
	}
}

// notify shows a line in the on-screen log.
func (g *Game) notify(msg string) {
	g.renderer.HandleEvent(combat.Event{Kind: combat.EventLog, Message: msg})
}

func (g *Game) render() {
	s := g.session
	header := fmt.Sprintf("bout %d/%d", s.Bout(), s.Bouts())
	switch s.Phase() {
	case PhaseBoutWon:
		header += " | next opponent waiting"
	case PhaseCleared:
		header += " | gauntlet cleared"
	}
	g.renderer.SetHeader(header)
	g.renderer.Render(s.Engine())
}

// Close releases the screen. It is safe to call more than once.
func (g *Game) Close() {
	g.closeOnce.Do(func() {
		if g.screen != nil {
			g.screen.Close()
		}
	})
}
