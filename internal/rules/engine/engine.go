// Package engine composes per-target stacking totals with categorical
// penalties into gameplay-facing numbers: net attack, skill checks, defenses,
// and a whole-character audit. Every call recomputes from the character
// snapshot; the engine holds no resolved state.
package engine

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sagaforge/engine/internal/character"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
	"github.com/sagaforge/engine/internal/rules/producer"
	"github.com/sagaforge/engine/internal/rules/reconcile"
	"github.com/sagaforge/engine/internal/rules/resolve"
	"github.com/sagaforge/engine/internal/telemetry"
)

const tracerName = "github.com/sagaforge/engine/internal/rules/engine"

// Options tunes a single resolution call.
type Options struct {
	// Extra carries transient records the caller wants considered, for
	// example a UI preview of an uncommitted effect. They join the merge at
	// display authority, the lowest rank, so they can never override
	// authoritative producers.
	Extra []modifier.Modifier
}

// Penalties are the categorical penalty totals read from character state.
// They are not stacked modifiers; they compose after aggregation.
type Penalties struct {
	Condition   float64
	Encumbrance float64
	Fatigue     float64
}

// Sum is the combined categorical penalty applied to attacks and checks.
func (p Penalties) Sum() float64 {
	return p.Condition + p.Encumbrance + p.Fatigue
}

// AttackResult is the composed attack-resolution output.
type AttackResult struct {
	NetAttack  float64
	NetDamage  float64
	Attack     resolve.Breakdown
	Damage     resolve.Breakdown
	Initiative resolve.Breakdown
	Penalties  Penalties
	// Err is set when resolution degraded to safe defaults.
	Err error
}

// SkillResult is the composed skill-check output.
type SkillResult struct {
	Skill           string
	Ability         string
	AbilityModifier int
	Net             float64
	Breakdown       resolve.Breakdown
	Penalties       Penalties
	Err             error
}

// DefenseResult is the composed defense output. Only the condition penalty
// applies to defenses; encumbrance and fatigue do not.
type DefenseResult struct {
	Defense          string
	Base             float64
	AbilityModifier  float64
	ConditionPenalty float64
	Net              float64
	Breakdown        resolve.Breakdown
	// DexterityLost reports that a meta flag suppressed the ability
	// component of reflex defense.
	DexterityLost bool
	Err           error
}

// AuditDomain is one target's net effect in the whole-character audit.
type AuditDomain struct {
	Target    string
	Net       float64
	Breakdown resolve.Breakdown
}

// AuditResult is the whole-character diagnostic report.
type AuditResult struct {
	DomainCount     int
	TotalBonuses    float64
	TotalPenalties  float64
	AffectedDomains []string
	Domains         []AuditDomain
	Penalties       Penalties
	Err             error
}

// Engine runs the producer → reconcile → resolve pipeline and composes the
// results. Producers are registered once at construction; their order is the
// deterministic merge order for reconciliation.
type Engine struct {
	producers []producer.Producer
	emitter   *telemetry.Emitter
	tracer    trace.Tracer
}

// New creates an engine over the given producers. The emitter may be nil.
func New(producers []producer.Producer, emitter *telemetry.Emitter) *Engine {
	return &Engine{
		producers: producers,
		emitter:   emitter,
		tracer:    otel.Tracer(tracerName),
	}
}

// ResolveAttack composes net attack and damage for the character. Net attack
// is the attack aggregate plus all three categorical penalties; net damage is
// the damage aggregate alone. It never panics or returns an error past this
// boundary: failures yield zero nets with Err set.
func (e *Engine) ResolveAttack(ctx context.Context, ch *character.Character, opts Options) AttackResult {
	ctx, span := e.tracer.Start(ctx, "engine.ResolveAttack")
	defer span.End()

	var res AttackResult
	err := e.guard(ctx, ch, "resolve_attack", opts, func(mods []modifier.Modifier) error {
		res.Attack = resolve.Resolve(mods, modifier.TargetGlobalAttack)
		res.Damage = resolve.Resolve(mods, modifier.TargetGlobalDamage)
		res.Initiative = resolve.Resolve(mods, modifier.TargetInitiative)
		res.Penalties = penalties(ch)
		res.NetAttack = res.Attack.Total + res.Penalties.Sum()
		res.NetDamage = res.Damage.Total
		return nil
	})
	if err != nil {
		return AttackResult{Err: err}
	}
	span.SetAttributes(attribute.Float64("sagaforge.net_attack", res.NetAttack))
	return res
}

// ResolveSkill composes the net check bonus for a trained skill: the ability
// modifier plus the skill aggregate plus all three categorical penalties.
func (e *Engine) ResolveSkill(ctx context.Context, ch *character.Character, skill string, opts Options) SkillResult {
	ctx, span := e.tracer.Start(ctx, "engine.ResolveSkill",
		trace.WithAttributes(attribute.String("sagaforge.skill", skill)))
	defer span.End()

	res := SkillResult{Skill: skill}
	err := e.guard(ctx, ch, "resolve_skill", opts, func(mods []modifier.Modifier) error {
		ability, ok := ch.SkillAbility(skill)
		if !ok {
			return apperrors.WithMetadata(
				apperrors.CodeEngineUnknownSkill,
				"unknown skill: "+skill,
				map[string]string{"Skill": skill},
			)
		}
		abilityMod, err := ch.AbilityModifier(ability)
		if err != nil {
			return err
		}
		res.Ability = ability
		res.AbilityModifier = abilityMod
		res.Breakdown = resolve.Resolve(mods, modifier.SkillTarget(skill))
		res.Penalties = penalties(ch)
		res.Net = float64(abilityMod) + res.Breakdown.Total + res.Penalties.Sum()
		return nil
	})
	if err != nil {
		return SkillResult{Skill: skill, Err: err}
	}
	return res
}

// ResolveDefense composes a defense score: base value plus the defense
// aggregate plus the ability component plus the condition penalty. Reflex
// defense adds the dexterity modifier unless a dexterity-loss flag is raised
// for it; the other defenses carry no ability component here.
func (e *Engine) ResolveDefense(ctx context.Context, ch *character.Character, defense string, opts Options) DefenseResult {
	ctx, span := e.tracer.Start(ctx, "engine.ResolveDefense",
		trace.WithAttributes(attribute.String("sagaforge.defense", defense)))
	defer span.End()

	res := DefenseResult{Defense: defense}
	err := e.guard(ctx, ch, "resolve_defense", opts, func(mods []modifier.Modifier) error {
		if !modifier.ValidDefense(defense) {
			return apperrors.WithMetadata(
				apperrors.CodeEngineUnknownDefense,
				"unknown defense: "+defense,
				map[string]string{"Defense": defense},
			)
		}
		res.Base = ch.BaseDefense(defense)
		res.Breakdown = resolve.Resolve(mods, modifier.DefenseTarget(defense))
		res.ConditionPenalty = ch.ConditionPenalty()
		if defense == modifier.DefenseReflex {
			if res.Breakdown.HasMeta(modifier.TypeDexterityLoss) {
				res.DexterityLost = true
			} else {
				dex, err := ch.AbilityModifier(character.AbilityDexterity)
				if err != nil {
					return err
				}
				res.AbilityModifier = float64(dex)
			}
		}
		res.Net = res.Base + res.Breakdown.Total + res.AbilityModifier + res.ConditionPenalty
		return nil
	})
	if err != nil {
		return DefenseResult{Defense: defense, Net: 10, Err: err}
	}
	return res
}

// BuildAudit resolves every target any producer touched plus the standard
// attack domains and defenses, and reports which carry a non-zero net. The
// report is for inspection tooling, never gameplay decisions.
func (e *Engine) BuildAudit(ctx context.Context, ch *character.Character) AuditResult {
	ctx, span := e.tracer.Start(ctx, "engine.BuildAudit")
	defer span.End()

	var res AuditResult
	err := e.guard(ctx, ch, "modifier_audit", Options{}, func(mods []modifier.Modifier) error {
		targets := map[string]bool{
			modifier.TargetGlobalAttack: true,
			modifier.TargetGlobalDamage: true,
			modifier.TargetInitiative:   true,
		}
		for _, name := range modifier.DefenseNames {
			targets[modifier.DefenseTarget(name)] = true
		}
		for _, m := range mods {
			targets[m.Target] = true
		}

		names := make([]string, 0, len(targets))
		for t := range targets {
			names = append(names, t)
		}
		sort.Strings(names)

		res.Penalties = penalties(ch)
		for _, target := range names {
			b := resolve.Resolve(mods, target)
			res.Domains = append(res.Domains, AuditDomain{Target: target, Net: b.Total, Breakdown: b})
			if b.Total != 0 {
				res.AffectedDomains = append(res.AffectedDomains, target)
			}
			if b.Total > 0 {
				res.TotalBonuses += b.Total
			} else {
				res.TotalPenalties += b.Total
			}
		}
		res.DomainCount = len(res.Domains)
		return nil
	})
	if err != nil {
		return AuditResult{Err: err}
	}
	return res
}

// guard runs the producer → reconcile pipeline and hands the merged modifier
// list to fn. Any error or panic on the way is converted into a returned
// error and reported to telemetry; callers map it onto their degraded
// default.
func (e *Engine) guard(ctx context.Context, ch *character.Character, op string, opts Options, fn func([]modifier.Modifier) error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			if rErr, ok := recovered.(error); ok {
				err = rErr
			} else {
				err = fmt.Errorf("%s: %v", op, recovered)
			}
		}
		if err != nil {
			e.reportFailure(ctx, ch, op, err)
		}
	}()

	if ch == nil {
		return apperrors.New(apperrors.CodeEngineNilCharacter, "character is required")
	}

	sets := make([]producer.Set, 0, len(e.producers)+1)
	for _, p := range e.producers {
		set, produceErr := p.Produce(ctx, ch)
		if produceErr != nil {
			return fmt.Errorf("producer %s: %w", p.Name(), produceErr)
		}
		sets = append(sets, set)
	}
	if len(opts.Extra) > 0 {
		sets = append(sets, producer.Set{
			Producer:  "caller",
			Authority: producer.AuthorityDisplay,
			Modifiers: opts.Extra,
		})
	}

	merged := reconcile.Reconcile(sets...)
	e.reportReconciliation(ctx, ch, merged)

	return fn(merged.Modifiers)
}

func (e *Engine) reportReconciliation(ctx context.Context, ch *character.Character, res reconcile.Result) {
	for _, d := range res.Dropped {
		_ = e.emitter.Emit(ctx, telemetry.Event{
			Kind:        telemetry.KindModifierDropped,
			Severity:    telemetry.SeverityWarn,
			CharacterID: ch.ID,
			Target:      d.Modifier.Target,
			ModifierID:  d.Modifier.ID,
			Producer:    d.Producer,
			Message:     d.Reason.Error(),
		})
	}
	for _, c := range res.Conflicts {
		_ = e.emitter.Emit(ctx, telemetry.Event{
			Kind:        telemetry.KindAuthorityConflict,
			Severity:    telemetry.SeverityWarn,
			CharacterID: ch.ID,
			Target:      c.Target,
			ModifierID:  c.ID,
			Producer:    c.DiscardedProducer,
			Message:     c.Err.Error(),
			Attributes: map[string]any{
				"kept_producer": c.KeptProducer,
				"kept_value":    c.Kept.Value,
				"lost_value":    c.Discarded.Value,
			},
		})
	}
}

func (e *Engine) reportFailure(ctx context.Context, ch *character.Character, op string, err error) {
	evt := telemetry.Event{
		Kind:     telemetry.KindResolutionFailed,
		Severity: telemetry.SeverityError,
		Message:  err.Error(),
		Attributes: map[string]any{
			"operation": op,
		},
	}
	if ch != nil {
		evt.CharacterID = ch.ID
	}
	_ = e.emitter.Emit(ctx, evt)
}

func penalties(ch *character.Character) Penalties {
	return Penalties{
		Condition:   ch.ConditionPenalty(),
		Encumbrance: ch.EncumbrancePenalty(),
		Fatigue:     ch.FatiguePenalty(),
	}
}
