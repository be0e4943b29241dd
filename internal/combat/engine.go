// Package combat provides the real-time turn-based combat engine.
//
// An Engine owns two Characters. A driver calls Tick with elapsed time; each
// character's action meter fills according to its speed and a full meter
// grants a turn. AI turns resolve immediately. The player's turn suspends the
// engine in StateAwaitingChoice until SubmitChosenSkill is called. Every
// state change is reported to a Listener.
package combat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/samdwyer/repbattle/internal/gamedata"
)

// State is the engine lifecycle state.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	// StateAwaitingChoice is the Running sub-state entered on the player's
	// turn. Ticks are ignored until a skill is submitted.
	StateAwaitingChoice
	StatePlayerWon
	StatePlayerLost
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return stateNotStarted
	case StateRunning:
		return stateRunning
	case StateAwaitingChoice:
		return stateAwaiting
	case StatePlayerWon:
		return statePlayerWon
	case StatePlayerLost:
		return statePlayerLost
	default:
		return "unknown"
	}
}

// Result is the outcome of an encounter.
type Result int

const (
	ResultOngoing Result = iota
	ResultPlayerWon
	ResultPlayerLost
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case ResultOngoing:
		return "ongoing"
	case ResultPlayerWon:
		return "player_won"
	case ResultPlayerLost:
		return "player_lost"
	default:
		return "unknown"
	}
}

// fsm state and event names.
const (
	stateNotStarted = "not_started"
	stateRunning    = "running"
	stateAwaiting   = "awaiting_choice"
	statePlayerWon  = "player_won"
	statePlayerLost = "player_lost"

	eventStart  = "start"
	eventAwait  = "await"
	eventResume = "resume"
	eventWin    = "win"
	eventLose   = "lose"
	eventReset  = "reset"
)

// Slots. The player slot is the one that waits for external input.
const (
	slotPlayer = 0
	slotEnemy  = 1
)

// Chooser picks a skill for an AI-driven combatant. eligible is never empty.
// Returning nil passes the turn.
type Chooser interface {
	ChooseSkill(self, opponent *Character, eligible []*gamedata.SkillDef) *gamedata.SkillDef
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(self, opponent *Character, eligible []*gamedata.SkillDef) *gamedata.SkillDef

// ChooseSkill calls f.
func (f ChooserFunc) ChooseSkill(self, opponent *Character, eligible []*gamedata.SkillDef) *gamedata.SkillDef {
	return f(self, opponent, eligible)
}

// firstEligible is the fallback chooser: the first usable skill in slot order.
var firstEligible = ChooserFunc(func(_, _ *Character, eligible []*gamedata.SkillDef) *gamedata.SkillDef {
	return eligible[0]
})

// Roller supplies uniform random numbers in [0, 1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules overrides the default tuning.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r.normalized() }
}

// WithListener sets the event observer.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithLogger sets the structured logger for warnings and the combat log.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSeed seeds the dodge and crit rolls.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithRoller replaces the random source entirely.
func WithRoller(r Roller) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithChooser sets the enemy AI.
func WithChooser(c Chooser) Option {
	return func(e *Engine) {
		if c != nil {
			e.chooser = c
		}
	}
}

// WithAutoPlayer makes the player side AI-driven as well, using c. The engine
// then never suspends; this is used for headless simulation.
func WithAutoPlayer(c Chooser) Option {
	return func(e *Engine) { e.autoPlayer = c }
}

// Engine resolves one encounter between a player and an enemy.
//
// Engine is not safe for concurrent use. Overlapping Tick or SubmitChosenSkill
// calls are detected and dropped rather than interleaved.
type Engine struct {
	id         uuid.UUID
	fighters   [2]*Character
	machine    *fsm.FSM
	rules      Rules
	rng        Roller
	chooser    Chooser
	autoPlayer Chooser
	listener   Listener
	logger     *slog.Logger

	busy    atomic.Bool
	elapsed time.Duration
	turns   int
	ready   []int // Slots with a full meter still to act this tick

	buffering bool
	buffer    []Event

	winner, loser *Character
	abandoned     bool
}

// NewEngine creates an engine for the given pair. Both combatants are
// required.
func NewEngine(player, enemy *Character, opts ...Option) (*Engine, error) {
	if player == nil || enemy == nil {
		return nil, ErrMissingCombatant
	}

	e := &Engine{
		id:       uuid.New(),
		fighters: [2]*Character{player, enemy},
		machine:  newMachine(),
		rules:    DefaultRules(),
		chooser:  firstEligible,
		logger:   slog.Default(),
	}
	WithSeed(uint64(time.Now().UnixNano()))(e)
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func newMachine() *fsm.FSM {
	all := []string{stateNotStarted, stateRunning, stateAwaiting, statePlayerWon, statePlayerLost}
	return fsm.NewFSM(
		stateNotStarted,
		fsm.Events{
			{Name: eventStart, Src: []string{stateNotStarted}, Dst: stateRunning},
			{Name: eventAwait, Src: []string{stateRunning}, Dst: stateAwaiting},
			{Name: eventResume, Src: []string{stateAwaiting}, Dst: stateRunning},
			{Name: eventWin, Src: []string{stateRunning, stateAwaiting}, Dst: statePlayerWon},
			{Name: eventLose, Src: []string{stateRunning, stateAwaiting}, Dst: statePlayerLost},
			{Name: eventReset, Src: all, Dst: stateNotStarted},
		},
		fsm.Callbacks{},
	)
}

// fire performs a lifecycle transition. Transitions to the current state are
// not errors.
func (e *Engine) fire(event string) error {
	err := e.machine.Event(context.Background(), event)
	var same fsm.NoTransitionError
	if err != nil && !errors.As(err, &same) {
		return fmt.Errorf("combat: %s from %s: %w", event, e.machine.Current(), err)
	}
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// ID returns the encounter identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

// Player returns the externally driven combatant.
func (e *Engine) Player() *Character { return e.fighters[slotPlayer] }

// Enemy returns the AI-driven combatant.
func (e *Engine) Enemy() *Character { return e.fighters[slotEnemy] }

// Elapsed returns simulated time since Start.
func (e *Engine) Elapsed() time.Duration { return e.elapsed }

// TurnCount returns the number of turns started this encounter.
func (e *Engine) TurnCount() int { return e.turns }

// Rules returns the active tuning.
func (e *Engine) Rules() Rules { return e.rules }

// State returns the lifecycle state.
func (e *Engine) State() State {
	switch e.machine.Current() {
	case stateRunning:
		return StateRunning
	case stateAwaiting:
		return StateAwaitingChoice
	case statePlayerWon:
		return StatePlayerWon
	case statePlayerLost:
		return StatePlayerLost
	default:
		return StateNotStarted
	}
}

// Result returns the encounter outcome.
func (e *Engine) Result() Result {
	switch e.State() {
	case StatePlayerWon:
		return ResultPlayerWon
	case StatePlayerLost:
		return ResultPlayerLost
	default:
		return ResultOngoing
	}
}

// Finished reports whether the encounter has a terminal result.
func (e *Engine) Finished() bool { return e.Result() != ResultOngoing }

// Abandoned reports whether the encounter was ended by EndCombat.
func (e *Engine) Abandoned() bool { return e.abandoned }

// Winner returns the winning combatant, or nil while ongoing.
func (e *Engine) Winner() *Character { return e.winner }

// Loser returns the losing combatant, or nil while ongoing.
func (e *Engine) Loser() *Character { return e.loser }

// Awaiting reports whether the engine is waiting for SubmitChosenSkill.
func (e *Engine) Awaiting() bool { return e.State() == StateAwaitingChoice }

// PendingChoices returns the skills the player may submit, or nil when the
// engine is not awaiting a choice.
func (e *Engine) PendingChoices() []*gamedata.SkillDef {
	if !e.Awaiting() {
		return nil
	}
	return e.Player().Eligible()
}

func (e *Engine) opponent(c *Character) *Character {
	if c == e.fighters[slotPlayer] {
		return e.fighters[slotEnemy]
	}
	return e.fighters[slotPlayer]
}

func (e *Engine) external(slot int) bool {
	return slot == slotPlayer && e.autoPlayer == nil
}

func (e *Engine) chooserFor(slot int) Chooser {
	if slot == slotPlayer && e.autoPlayer != nil {
		return e.autoPlayer
	}
	return e.chooser
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start validates the combatants, zeroes their meters and begins the
// encounter.
func (e *Engine) Start() error {
	if e.State() != StateNotStarted {
		return ErrAlreadyStarted
	}
	for _, c := range e.fighters {
		if c == nil {
			return ErrMissingCombatant
		}
		if c.MaxHP() <= 0 {
			return fmt.Errorf("%w: %s", ErrNoHealth, c.Name())
		}
	}

	for _, c := range e.fighters {
		c.meter = 0
		for _, m := range c.Missing() {
			e.logger.Warn("catalog entry not found; slot is inert",
				"encounter", e.id, "combatant", c.Name(), "entry", m)
		}
	}

	if err := e.fire(eventStart); err != nil {
		return err
	}
	e.logger.Debug("combat started", "encounter", e.id,
		"player", e.Player().Name(), "enemy", e.Enemy().Name())
	e.emit(Event{Kind: EventCombatStarted, Actor: e.Player(), Target: e.Enemy()})
	e.logf("%s faces %s!", e.Player().Name(), e.Enemy().Name())
	return nil
}

// EndCombat ends the encounter immediately, without further resolution.
// playerWon selects the result regardless of current HP. Calling it on a
// finished encounter does nothing.
func (e *Engine) EndCombat(playerWon bool) {
	if e.Finished() || e.State() == StateNotStarted {
		return
	}
	e.abandoned = true
	if playerWon {
		e.finish(e.Player(), e.Enemy())
	} else {
		e.finish(e.Enemy(), e.Player())
	}
}

// Reset prepares the engine for a new pair of combatants, clearing meters,
// cooldowns, effects and the result. The engine returns to StateNotStarted.
func (e *Engine) Reset(player, enemy *Character) error {
	if player == nil || enemy == nil {
		return ErrMissingCombatant
	}
	if err := e.fire(eventReset); err != nil {
		return err
	}
	player.resetForBattle()
	enemy.resetForBattle()
	e.fighters = [2]*Character{player, enemy}
	e.id = uuid.New()
	e.elapsed = 0
	e.turns = 0
	e.ready = nil
	e.buffer = nil
	e.buffering = false
	e.winner, e.loser = nil, nil
	e.abandoned = false
	return nil
}

// =============================================================================
// Scheduling
// =============================================================================

// Tick advances simulated time by dt. Meters below full are filled; every
// combatant with a full meter then takes a turn, in readyOrder. Tick does
// nothing unless the engine is running and not waiting for the player.
func (e *Engine) Tick(dt time.Duration) {
	if !e.busy.CompareAndSwap(false, true) {
		e.logger.Warn("re-entrant tick dropped", "encounter", e.id)
		return
	}
	defer e.busy.Store(false)

	if e.State() != StateRunning || dt <= 0 {
		return
	}

	e.elapsed += dt
	seconds := dt.Seconds()
	for _, c := range e.fighters {
		if c.meter < MeterFull {
			c.AdvanceMeter(seconds, e.rules.SpeedFactor)
			e.emit(Event{Kind: EventActionBarUpdated, Actor: c})
		}
	}

	e.ready = e.readyOrder()
	e.drainReady()
}

// readyOrder returns the slots with a full meter in resolution order:
// AI-driven before externally driven, then lower current HP, then enemy
// before player.
func (e *Engine) readyOrder() []int {
	var ready []int
	for slot, c := range e.fighters {
		if c.meter >= MeterFull {
			ready = append(ready, slot)
		}
	}
	slices.SortStableFunc(ready, func(a, b int) int {
		if ea, eb := e.external(a), e.external(b); ea != eb {
			if ea {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(e.fighters[a].hp, e.fighters[b].hp); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})
	return ready
}

func (e *Engine) drainReady() {
	for len(e.ready) > 0 && e.State() == StateRunning {
		slot := e.ready[0]
		e.ready = e.ready[1:]
		if e.fighters[slot].meter < MeterFull {
			continue
		}
		e.takeTurn(slot)
	}
}

// takeTurn runs turn resolution for the combatant in slot up to either the
// skill resolution or the player suspension point.
func (e *Engine) takeTurn(slot int) {
	c := e.fighters[slot]
	o := e.opponent(c)

	e.turns++
	c.turns++
	e.beginTurn()

	c.TickStatusEffects(e)
	if !c.IsAlive() {
		e.flush()
		e.finish(o, c)
		return
	}
	e.firePassives(c, o, gamedata.TriggerTurnStart, 0, nil)
	if !o.IsAlive() {
		e.flush()
		e.finish(c, o)
		return
	}

	c.tickCooldowns()
	eligible := c.Eligible()

	if len(eligible) == 0 {
		e.pass(c)
		e.flush()
		return
	}

	if e.external(slot) {
		e.flush()
		if err := e.fire(eventAwait); err != nil {
			e.logger.Error("cannot suspend for player choice", "encounter", e.id, "err", err)
			return
		}
		e.emit(Event{Kind: EventChoiceRequested, Actor: c, Eligible: eligible})
		return
	}

	skill := e.chooserFor(slot).ChooseSkill(c, o, eligible)
	if skill == nil || !c.CanUse(skill) {
		e.pass(c)
		e.flush()
		return
	}
	e.resolve(c, o, skill)
}

// pass ends a turn without acting. One full meter is consumed.
func (e *Engine) pass(c *Character) {
	c.SpendMeter(MeterFull)
	e.logf("%s catches their breath.", c.Name())
	e.emit(Event{Kind: EventActionBarUpdated, Actor: c})
}

// SubmitChosenSkill resolves the player's pending turn with the skill with
// the given ID. A skill that is not equipped or not currently usable is
// rejected with ErrInvalidSelection and offered again; nothing changes. A
// slot whose catalog entry is missing resolves as a no-op that consumes no
// meter.
func (e *Engine) SubmitChosenSkill(skillID string) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.busy.Store(false)

	if e.State() != StateAwaitingChoice {
		return ErrNotAwaiting
	}

	c := e.Player()
	o := e.Enemy()

	slot, ok := c.slot(skillID)
	if ok && slot.Def == nil {
		e.logger.Warn("submitted skill missing from catalog; turn skipped",
			"encounter", e.id, "skill", skillID)
		if err := e.fire(eventResume); err != nil {
			return err
		}
		e.beginTurn()
		e.logf("%s fumbles an unknown technique.", c.Name())
		e.flush()
		e.drainReady()
		return nil
	}

	if !ok || !c.CanUse(slot.Def) {
		e.logger.Info("invalid skill selection", "encounter", e.id, "skill", skillID,
			"cooldown", c.Cooldown(skillID), "meter", c.meter)
		e.emit(Event{Kind: EventChoiceRequested, Actor: c, Eligible: c.Eligible()})
		return fmt.Errorf("%w: %s", ErrInvalidSelection, skillID)
	}

	if err := e.fire(eventResume); err != nil {
		return err
	}
	e.beginTurn()
	e.resolve(c, o, slot.Def)
	e.drainReady()
	return nil
}

// resolve pays for and executes a skill, then checks for a knockout.
func (e *Engine) resolve(c, o *Character, skill *gamedata.SkillDef) {
	c.SpendMeter(float64(skill.Cost))
	c.startCooldown(skill)

	e.emit(Event{Kind: EventSkillUsed, Actor: c, Target: o, Skill: skill})
	e.logf("%s uses %s!", c.Name(), skill.Name)
	e.logger.Debug("skill used", "encounter", e.id, "actor", c.Name(), "skill", skill.ID,
		"meter", c.meter, "turn", e.turns)

	e.execute(c, o, skill)

	if !o.IsAlive() {
		e.firePassives(c, o, gamedata.TriggerKill, 0, nil)
	}

	e.emit(Event{Kind: EventActionBarUpdated, Actor: c})
	e.emit(Event{Kind: EventActionBarUpdated, Actor: o})
	e.flush()
	e.checkTermination()
}

func (e *Engine) checkTermination() {
	if e.Finished() {
		return
	}
	switch {
	case !e.Player().IsAlive():
		e.finish(e.Enemy(), e.Player())
	case !e.Enemy().IsAlive():
		e.finish(e.Player(), e.Enemy())
	}
}

// finish records the terminal result and freezes both combatants.
func (e *Engine) finish(winner, loser *Character) {
	event := eventLose
	if winner == e.Player() {
		event = eventWin
	}
	if err := e.fire(event); err != nil {
		e.logger.Error("cannot end combat", "encounter", e.id, "err", err)
		return
	}

	e.winner, e.loser = winner, loser
	e.ready = nil
	for _, c := range e.fighters {
		c.frozen = true
	}

	e.logger.Info("combat ended", "encounter", e.id, "result", e.Result().String(),
		"winner", winner.Name(), "turns", e.turns, "elapsed", e.elapsed, "abandoned", e.abandoned)
	e.emit(Event{
		Kind:      EventCombatEnded,
		Actor:     winner,
		Target:    loser,
		Result:    e.Result(),
		Abandoned: e.abandoned,
	})
}

// =============================================================================
// Events
// =============================================================================

// kindOrder fixes the delivery order of events buffered during a turn.
var kindOrder = map[EventKind]int{
	EventActionBarUpdated: 0,
	EventSkillUsed:        1,
	EventDamageApplied:    2,
	EventStatusApplied:    3,
	EventLog:              4,
}

func (e *Engine) beginTurn() {
	e.buffering = true
	e.buffer = e.buffer[:0]
}

// flush delivers buffered turn events grouped by kind.
func (e *Engine) flush() {
	if !e.buffering {
		return
	}
	e.buffering = false
	events := slices.Clone(e.buffer)
	e.buffer = e.buffer[:0]

	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(kindOrder[a.Kind], kindOrder[b.Kind])
	})
	for _, ev := range events {
		e.dispatch(ev)
	}
}

func (e *Engine) emit(ev Event) {
	ev.Encounter = e.id
	ev.Elapsed = e.elapsed
	if e.buffering {
		if _, ok := kindOrder[ev.Kind]; ok {
			e.buffer = append(e.buffer, ev)
			return
		}
	}
	e.dispatch(ev)
}

func (e *Engine) dispatch(ev Event) {
	if e.listener != nil {
		e.listener.HandleEvent(ev)
	}
}

func (e *Engine) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	e.logger.Debug("combat log", "encounter", e.id, "line", line)
	e.emit(Event{Kind: EventLog, Message: line})
}

// roll returns a uniform number in [0, 1).
func (e *Engine) roll() float64 {
	return e.rng.Float64()
}
