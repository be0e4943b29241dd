package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/entity"
)

// Span and attribute names.
const (
	SpanEncounter = "combat.encounter"

	EventTurn   = "combat.turn"
	EventStatus = "combat.status"
	EventDodge  = "combat.dodge"

	attrEncounter = attribute.Key("combat.encounter_id")
	attrPlayer    = attribute.Key("combat.player")
	attrEnemy     = attribute.Key("combat.enemy")
	attrLevel     = attribute.Key("combat.enemy_level")
	attrActor     = attribute.Key("combat.actor")
	attrSkill     = attribute.Key("combat.skill")
	attrStatus    = attribute.Key("combat.status_kind")
	attrResult    = attribute.Key("combat.result")
	attrWinner    = attribute.Key("combat.winner")
	attrAbandoned = attribute.Key("combat.abandoned")
	attrTurns     = attribute.Key("combat.turns")
	attrElapsedMS = attribute.Key("combat.elapsed_ms")
	attrDealt     = attribute.Key("combat.damage_dealt")
	attrTaken     = attribute.Key("combat.damage_taken")
	attrCrits     = attribute.Key("combat.crits")
	attrDodges    = attribute.Key("combat.dodges")
)

// CombatObserver records each encounter as one span. Skill uses, status
// effects and dodges become span events; the outcome and damage totals are
// set as attributes when the encounter ends.
//
// A CombatObserver follows one engine at a time and must be driven from the
// engine's goroutine.
type CombatObserver struct {
	parent context.Context
	tracer trace.Tracer

	span   trace.Span
	turns  int
	dealt  int // By the player
	taken  int // By the player
	crits  int
	dodges int
}

var _ combat.Listener = (*CombatObserver)(nil)

// NewCombatObserver creates an observer whose encounter spans are children of
// the span in ctx, if any.
func NewCombatObserver(ctx context.Context, tracer trace.Tracer) *CombatObserver {
	if tracer == nil {
		tracer = NoopTracer()
	}
	return &CombatObserver{parent: ctx, tracer: tracer}
}

// HandleEvent implements combat.Listener.
func (o *CombatObserver) HandleEvent(ev combat.Event) {
	if ev.Kind == combat.EventCombatStarted {
		o.start(ev)
		return
	}
	if o.span == nil {
		return
	}

	switch ev.Kind {
	case combat.EventSkillUsed:
		o.turns++
		o.span.AddEvent(EventTurn, trace.WithAttributes(
			attrActor.String(ev.Actor.Name()),
			attrSkill.String(ev.Skill.ID),
			attrTurns.Int(o.turns),
		))

	case combat.EventDamageApplied:
		d := ev.Damage
		if d.Dodged {
			o.dodges++
			o.span.AddEvent(EventDodge, trace.WithAttributes(attrActor.String(d.Target.Name())))
			return
		}
		if d.Crit {
			o.crits++
		}
		if d.Target.Side() == entity.SidePlayer {
			o.taken += d.Amount
		} else {
			o.dealt += d.Amount
		}

	case combat.EventStatusApplied:
		o.span.AddEvent(EventStatus, trace.WithAttributes(
			attrActor.String(ev.Target.Name()),
			attrSkill.String(ev.Status.Source),
			attrStatus.String(ev.Status.Kind.String()),
		))

	case combat.EventCombatEnded:
		o.end(ev)
	}
}

func (o *CombatObserver) start(ev combat.Event) {
	if o.span != nil {
		// A previous encounter never reported an end.
		o.span.SetStatus(codes.Error, "encounter not finished")
		o.span.End()
	}
	parent := o.parent
	if parent == nil {
		parent = context.Background()
	}
	_, o.span = o.tracer.Start(parent, SpanEncounter, trace.WithAttributes(
		attrEncounter.String(ev.Encounter.String()),
		attrPlayer.String(ev.Actor.Name()),
		attrEnemy.String(ev.Target.Name()),
		attrLevel.Int(ev.Target.Level()),
	))
	o.turns, o.dealt, o.taken, o.crits, o.dodges = 0, 0, 0, 0, 0
}

func (o *CombatObserver) end(ev combat.Event) {
	o.span.SetAttributes(
		attrResult.String(ev.Result.String()),
		attrWinner.String(ev.Actor.Name()),
		attrAbandoned.Bool(ev.Abandoned),
		attrTurns.Int(o.turns),
		attrElapsedMS.Int64(ev.Elapsed.Milliseconds()),
		attrDealt.Int(o.dealt),
		attrTaken.Int(o.taken),
		attrCrits.Int(o.crits),
		attrDodges.Int(o.dodges),
	)
	o.span.SetStatus(codes.Ok, "")
	o.span.End()
	o.span = nil
}
