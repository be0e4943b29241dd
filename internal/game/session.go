package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samdwyer/repbattle/internal/ai"
	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// ErrNoSuchSlot is returned by Choose for a slot without a skill.
var ErrNoSuchSlot = errors.New("no skill in that slot")

// BoutResult summarizes one finished encounter.
type BoutResult struct {
	Bout      int
	Enemy     string
	Level     int
	Result    combat.Result
	Abandoned bool
	Turns     int
	Elapsed   time.Duration
	HPLeft    int // Player HP at the end
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithListener adds an observer to every encounter of the session.
func WithListener(l combat.Listener) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// WithLogger sets the session and engine logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAutoPlay lets c choose the player's skills, so encounters never wait
// for input.
func WithAutoPlay(c combat.Chooser) SessionOption {
	return func(s *Session) { s.autoPlay = c }
}

// Session plays one gauntlet. It owns the engine and the player character
// and must be driven from a single goroutine.
type Session struct {
	cfg       Config
	catalog   *gamedata.Catalog
	gauntlet  *Gauntlet
	player    *combat.Character
	engine    *combat.Engine
	policy    *ai.Policy
	autoPlay  combat.Chooser
	listeners combat.Multi
	logger    *slog.Logger

	// reload is a catalog waiting for the next Begin.
	reload *gamedata.Catalog

	phase   Phase
	results []BoutResult
}

// NewSession builds the player from the configured class and prepares the
// gauntlet. No encounter starts until Begin.
func NewSession(catalog *gamedata.Catalog, cfg Config, opts ...SessionOption) (*Session, error) {
	if catalog == nil {
		return nil, errors.New("nil catalog")
	}
	class := catalog.Class(cfg.ClassID)
	if class == nil {
		return nil, fmt.Errorf("unknown class %q (have %v)", cfg.ClassID, catalog.ClassIDs())
	}
	name := cfg.PlayerName
	if name == "" {
		name = class.Name
	}
	profile, err := buildPlayer(catalog, class, name, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}

	s := &Session{
		cfg:     cfg,
		catalog: catalog,
		player:  combat.NewCharacter(profile, catalog),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.policy = ai.NewPolicy(s.logger)
	s.gauntlet = NewGauntlet(catalog.Enemies, cfg.Seed, cfg.Bouts, profile.Level, cfg.LevelStep)
	return s, nil
}

// buildPlayer makes the player profile from class and applies the configured
// loadout on top of the class default.
func buildPlayer(catalog *gamedata.Catalog, class *gamedata.ClassDef, name string, cfg Config) (entity.Profile, error) {
	profile, err := entity.NewPlayerProfile(name, class, cfg.PlayerLevel)
	if err != nil {
		return profile, err
	}
	if len(cfg.SkillIDs) == 0 && len(cfg.PassiveIDs) == 0 {
		return profile, nil
	}
	skills, passives := cfg.SkillIDs, cfg.PassiveIDs
	if len(skills) == 0 {
		skills = profile.SkillIDs
	}
	if len(passives) == 0 {
		passives = profile.PassiveIDs
	}
	profile, err = profile.WithLoadout(catalog, skills, passives)
	if err != nil {
		return profile, fmt.Errorf("player loadout: %w", err)
	}
	return profile, nil
}

// Begin starts the next bout. It is valid before the first bout and after a
// won bout.
func (s *Session) Begin() error {
	if s.phase != PhaseIdle && s.phase != PhaseBoutWon {
		return fmt.Errorf("cannot begin a bout while %s", s.phase)
	}

	s.applyReload()

	profile, err := s.gauntlet.Next()
	if err != nil {
		return err
	}
	enemy := combat.NewCharacter(profile, s.catalog)

	if s.engine == nil {
		opts := []combat.Option{
			combat.WithRules(s.cfg.Rules),
			combat.WithSeed(s.cfg.Seed),
			combat.WithChooser(s.policy),
			combat.WithLogger(s.logger),
			combat.WithListener(s.listeners),
		}
		if s.autoPlay != nil {
			opts = append(opts, combat.WithAutoPlayer(s.autoPlay))
		}
		s.engine, err = combat.NewEngine(s.player, enemy, opts...)
	} else {
		err = s.engine.Reset(s.player, enemy)
	}
	if err != nil {
		return err
	}

	s.logger.Info("bout starting",
		"bout", s.gauntlet.Bout(), "of", s.gauntlet.Length(),
		"enemy", profile.Name, "level", profile.Level)
	if err := s.engine.Start(); err != nil {
		return err
	}
	s.phase = PhaseFighting
	return nil
}

// Reload queues a new catalog. It takes effect at the next Begin so the
// encounter in progress keeps the definitions it started with.
func (s *Session) Reload(c *gamedata.Catalog) {
	if c != nil {
		s.reload = c
	}
}

// applyReload swaps in a queued catalog. The player is rebuilt from the new
// class definition; a catalog without that class is rejected.
func (s *Session) applyReload() {
	next := s.reload
	if next == nil {
		return
	}
	s.reload = nil

	class := next.Class(s.cfg.ClassID)
	if class == nil {
		s.logger.Warn("reloaded catalog lacks the player's class; keeping the old one",
			"class", s.cfg.ClassID, "have", next.ClassIDs())
		return
	}
	profile, err := buildPlayer(next, class, s.player.Name(), s.cfg)
	if err != nil {
		s.logger.Warn("rebuilding player from reloaded catalog failed", "err", err)
		return
	}
	s.catalog = next
	s.player = combat.NewCharacter(profile, next)
	s.gauntlet.enemies = next.Enemies
	s.logger.Info("catalog applied", "bout", s.gauntlet.Bout()+1,
		"skills", next.Skills.Count(), "enemies", next.Enemies.Count())
}

// Advance moves the current encounter forward by dt of simulated time.
func (s *Session) Advance(dt time.Duration) {
	if s.phase != PhaseFighting {
		return
	}
	s.engine.Tick(dt)
	s.settle()
}

// Choose submits the player's skill in the given 0-based slot.
func (s *Session) Choose(slot int) error {
	if s.phase != PhaseFighting {
		return combat.ErrNotAwaiting
	}
	skills := s.player.Skills()
	if slot < 0 || slot >= len(skills) {
		return fmt.Errorf("%w: %d", ErrNoSuchSlot, slot+1)
	}
	err := s.engine.SubmitChosenSkill(skills[slot].ID)
	s.settle()
	return err
}

// Flee abandons the current encounter as a loss.
func (s *Session) Flee() {
	if s.phase != PhaseFighting {
		return
	}
	s.engine.EndCombat(false)
	s.settle()
}

// settle records the bout once the engine reports a result.
func (s *Session) settle() {
	if s.phase != PhaseFighting || !s.engine.Finished() {
		return
	}

	e := s.engine
	r := BoutResult{
		Bout:      s.gauntlet.Bout(),
		Enemy:     e.Enemy().Name(),
		Level:     e.Enemy().Level(),
		Result:    e.Result(),
		Abandoned: e.Abandoned(),
		Turns:     e.TurnCount(),
		Elapsed:   e.Elapsed(),
		HPLeft:    e.Player().HP(),
	}
	s.results = append(s.results, r)

	switch {
	case r.Result != combat.ResultPlayerWon:
		s.phase = PhaseFallen
	case s.gauntlet.Done():
		s.phase = PhaseCleared
	default:
		s.phase = PhaseBoutWon
	}
	s.logger.Info("bout finished",
		"bout", r.Bout, "enemy", r.Enemy, "result", r.Result,
		"abandoned", r.Abandoned, "turns", r.Turns, "elapsed", r.Elapsed, "phase", s.phase)
}

// Engine returns the current encounter's engine, or nil before Begin.
func (s *Session) Engine() *combat.Engine { return s.engine }

// Player returns the player's character.
func (s *Session) Player() *combat.Character { return s.player }

// Phase returns where the session is in its gauntlet.
func (s *Session) Phase() Phase { return s.phase }

// Results returns the finished bouts in order.
func (s *Session) Results() []BoutResult { return s.results }

// Bout returns the current 1-based bout number.
func (s *Session) Bout() int { return s.gauntlet.Bout() }

// Bouts returns the gauntlet length.
func (s *Session) Bouts() int { return s.gauntlet.Length() }

// Wins returns the number of bouts won.
func (s *Session) Wins() int {
	n := 0
	for _, r := range s.results {
		if r.Result == combat.ResultPlayerWon {
			n++
		}
	}
	return n
}
