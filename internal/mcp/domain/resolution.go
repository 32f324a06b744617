// Package domain defines the MCP tool schemas and handlers for modifier
// resolution diagnostics.
package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sagaforge/engine/internal/character"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/engine"
	"github.com/sagaforge/engine/internal/rules/resolve"
)

// CharacterSource loads character snapshots for tool handlers.
type CharacterSource interface {
	Character(ctx context.Context, id string) (*character.Character, error)
}

// AppliedEntry is one considered modifier in a breakdown.
type AppliedEntry struct {
	ID           string  `json:"id" jsonschema:"stable modifier identity"`
	Source       string  `json:"source" jsonschema:"origin category"`
	SourceName   string  `json:"source_name" jsonschema:"human label of the origin"`
	Type         string  `json:"type" jsonschema:"stacking category"`
	Value        float64 `json:"value" jsonschema:"signed adjustment"`
	Contributing bool    `json:"contributing" jsonschema:"whether the record joined the total"`
	SuppressedBy string  `json:"suppressed_by,omitempty" jsonschema:"winning source when a stacking rule excluded this record"`
	Description  string  `json:"description" jsonschema:"display text"`
}

// TypeEntry is one per-type subtotal in a breakdown.
type TypeEntry struct {
	Type        string  `json:"type" jsonschema:"stacking category"`
	Value       float64 `json:"value" jsonschema:"subtotal for the category"`
	Count       int     `json:"count" jsonschema:"number of contributing records"`
	Description string  `json:"description" jsonschema:"subtotal display text"`
}

// BreakdownResult is the auditable aggregate for one target.
type BreakdownResult struct {
	Target    string         `json:"target" jsonschema:"aggregation target key"`
	Total     float64        `json:"total" jsonschema:"stacked total for the target"`
	ByType    []TypeEntry    `json:"by_type,omitempty" jsonschema:"per-type subtotals"`
	Applied   []AppliedEntry `json:"applied,omitempty" jsonschema:"every considered record"`
	MetaFlags []string       `json:"meta_flags,omitempty" jsonschema:"raised meta flags such as dexterity-loss"`
}

// PenaltiesResult reports the categorical penalty components.
type PenaltiesResult struct {
	Condition   float64 `json:"condition" jsonschema:"condition track penalty"`
	Encumbrance float64 `json:"encumbrance" jsonschema:"load penalty"`
	Fatigue     float64 `json:"fatigue" jsonschema:"fatigue penalty"`
}

// ResolveAttackInput identifies the character to resolve.
type ResolveAttackInput struct {
	CharacterID string `json:"character_id" jsonschema:"stored character identifier"`
	Locale      string `json:"locale,omitempty" jsonschema:"locale for degraded-result messages, defaults to en-US"`
}

// ResolveAttackResult is the composed attack resolution.
type ResolveAttackResult struct {
	NetAttack  float64         `json:"net_attack" jsonschema:"attack aggregate plus categorical penalties"`
	NetDamage  float64         `json:"net_damage" jsonschema:"damage aggregate"`
	Attack     BreakdownResult `json:"attack" jsonschema:"attack breakdown"`
	Damage     BreakdownResult `json:"damage" jsonschema:"damage breakdown"`
	Initiative BreakdownResult `json:"initiative" jsonschema:"initiative breakdown"`
	Penalties  PenaltiesResult `json:"penalties" jsonschema:"categorical penalty components"`
	Error      string          `json:"error,omitempty" jsonschema:"set when resolution degraded to safe defaults"`
}

// ResolveSkillInput identifies the character and trained skill.
type ResolveSkillInput struct {
	CharacterID string `json:"character_id" jsonschema:"stored character identifier"`
	Skill       string `json:"skill" jsonschema:"trained skill key, for example acrobatics"`
	Locale      string `json:"locale,omitempty" jsonschema:"locale for degraded-result messages, defaults to en-US"`
}

// ResolveSkillResult is the composed skill check.
type ResolveSkillResult struct {
	Skill           string          `json:"skill" jsonschema:"resolved skill key"`
	Ability         string          `json:"ability" jsonschema:"governing ability key"`
	AbilityModifier int             `json:"ability_modifier" jsonschema:"derived ability modifier"`
	Net             float64         `json:"net" jsonschema:"ability modifier plus aggregate plus penalties"`
	Breakdown       BreakdownResult `json:"breakdown" jsonschema:"skill aggregate breakdown"`
	Penalties       PenaltiesResult `json:"penalties" jsonschema:"categorical penalty components"`
	Error           string          `json:"error,omitempty" jsonschema:"set when resolution degraded to safe defaults"`
}

// ResolveDefenseInput identifies the character and defense.
type ResolveDefenseInput struct {
	CharacterID string `json:"character_id" jsonschema:"stored character identifier"`
	Defense     string `json:"defense" jsonschema:"defense name: fortitude, reflex, will, armor, or damageThreshold"`
	Locale      string `json:"locale,omitempty" jsonschema:"locale for degraded-result messages, defaults to en-US"`
}

// ResolveDefenseResult is the composed defense score.
type ResolveDefenseResult struct {
	Defense          string          `json:"defense" jsonschema:"resolved defense name"`
	Base             float64         `json:"base" jsonschema:"base defense value"`
	AbilityModifier  float64         `json:"ability_modifier" jsonschema:"ability component, when the defense carries one"`
	ConditionPenalty float64         `json:"condition_penalty" jsonschema:"condition track penalty"`
	Net              float64         `json:"net" jsonschema:"composed defense score"`
	DexterityLost    bool            `json:"dexterity_lost" jsonschema:"whether a meta flag suppressed the ability component"`
	Breakdown        BreakdownResult `json:"breakdown" jsonschema:"defense aggregate breakdown"`
	Error            string          `json:"error,omitempty" jsonschema:"set when resolution degraded to safe defaults"`
}

// ModifierAuditInput identifies the character to audit.
type ModifierAuditInput struct {
	CharacterID string `json:"character_id" jsonschema:"stored character identifier"`
	Locale      string `json:"locale,omitempty" jsonschema:"locale for degraded-result messages, defaults to en-US"`
}

// AuditDomainEntry is one target's net effect in the audit.
type AuditDomainEntry struct {
	Target    string          `json:"target" jsonschema:"aggregation target key"`
	Net       float64         `json:"net" jsonschema:"stacked total for the target"`
	Breakdown BreakdownResult `json:"breakdown" jsonschema:"full breakdown for the target"`
}

// ModifierAuditResult is the whole-character diagnostic report.
type ModifierAuditResult struct {
	DomainCount     int                `json:"domain_count" jsonschema:"number of domains inspected"`
	TotalBonuses    float64            `json:"total_bonuses" jsonschema:"sum of positive domain nets"`
	TotalPenalties  float64            `json:"total_penalties" jsonschema:"sum of negative domain nets"`
	AffectedDomains []string           `json:"affected_domains,omitempty" jsonschema:"domains with a non-zero net"`
	Domains         []AuditDomainEntry `json:"domains,omitempty" jsonschema:"every inspected domain"`
	Penalties       PenaltiesResult    `json:"penalties" jsonschema:"categorical penalty components"`
	Error           string             `json:"error,omitempty" jsonschema:"set when the audit degraded"`
}

// ResolveAttackTool defines the MCP tool schema for attack resolution.
func ResolveAttackTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_attack",
		Description: "Resolves net attack and damage modifiers for a stored character",
	}
}

// ResolveSkillTool defines the MCP tool schema for skill resolution.
func ResolveSkillTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_skill",
		Description: "Resolves the net check bonus for a trained skill",
	}
}

// ResolveDefenseTool defines the MCP tool schema for defense resolution.
func ResolveDefenseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_defense",
		Description: "Resolves a composed defense score",
	}
}

// ModifierAuditTool defines the MCP tool schema for the character audit.
func ModifierAuditTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "modifier_audit",
		Description: "Builds the full per-character modifier audit report",
	}
}

// ResolveAttackHandler loads the character and runs attack resolution.
func ResolveAttackHandler(source CharacterSource, eng *engine.Engine) mcp.ToolHandlerFor[ResolveAttackInput, ResolveAttackResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveAttackInput) (*mcp.CallToolResult, ResolveAttackResult, error) {
		ch, err := source.Character(ctx, input.CharacterID)
		if err != nil {
			return nil, ResolveAttackResult{}, fmt.Errorf("load character: %w", err)
		}
		res := eng.ResolveAttack(ctx, ch, engine.Options{})
		out := ResolveAttackResult{
			NetAttack:  res.NetAttack,
			NetDamage:  res.NetDamage,
			Attack:     toBreakdown(res.Attack),
			Damage:     toBreakdown(res.Damage),
			Initiative: toBreakdown(res.Initiative),
			Penalties:  toPenalties(res.Penalties),
		}
		if res.Err != nil {
			out.Error = apperrors.Localize(res.Err, input.Locale)
		}
		return nil, out, nil
	}
}

// ResolveSkillHandler loads the character and runs skill resolution.
func ResolveSkillHandler(source CharacterSource, eng *engine.Engine) mcp.ToolHandlerFor[ResolveSkillInput, ResolveSkillResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveSkillInput) (*mcp.CallToolResult, ResolveSkillResult, error) {
		ch, err := source.Character(ctx, input.CharacterID)
		if err != nil {
			return nil, ResolveSkillResult{}, fmt.Errorf("load character: %w", err)
		}
		res := eng.ResolveSkill(ctx, ch, input.Skill, engine.Options{})
		out := ResolveSkillResult{
			Skill:           res.Skill,
			Ability:         res.Ability,
			AbilityModifier: res.AbilityModifier,
			Net:             res.Net,
			Breakdown:       toBreakdown(res.Breakdown),
			Penalties:       toPenalties(res.Penalties),
		}
		if res.Err != nil {
			out.Error = apperrors.Localize(res.Err, input.Locale)
		}
		return nil, out, nil
	}
}

// ResolveDefenseHandler loads the character and runs defense resolution.
func ResolveDefenseHandler(source CharacterSource, eng *engine.Engine) mcp.ToolHandlerFor[ResolveDefenseInput, ResolveDefenseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveDefenseInput) (*mcp.CallToolResult, ResolveDefenseResult, error) {
		ch, err := source.Character(ctx, input.CharacterID)
		if err != nil {
			return nil, ResolveDefenseResult{}, fmt.Errorf("load character: %w", err)
		}
		res := eng.ResolveDefense(ctx, ch, input.Defense, engine.Options{})
		out := ResolveDefenseResult{
			Defense:          res.Defense,
			Base:             res.Base,
			AbilityModifier:  res.AbilityModifier,
			ConditionPenalty: res.ConditionPenalty,
			Net:              res.Net,
			DexterityLost:    res.DexterityLost,
			Breakdown:        toBreakdown(res.Breakdown),
		}
		if res.Err != nil {
			out.Error = apperrors.Localize(res.Err, input.Locale)
		}
		return nil, out, nil
	}
}

// ModifierAuditHandler loads the character and builds the audit report.
func ModifierAuditHandler(source CharacterSource, eng *engine.Engine) mcp.ToolHandlerFor[ModifierAuditInput, ModifierAuditResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ModifierAuditInput) (*mcp.CallToolResult, ModifierAuditResult, error) {
		ch, err := source.Character(ctx, input.CharacterID)
		if err != nil {
			return nil, ModifierAuditResult{}, fmt.Errorf("load character: %w", err)
		}
		res := eng.BuildAudit(ctx, ch)
		out := ModifierAuditResult{
			DomainCount:     res.DomainCount,
			TotalBonuses:    res.TotalBonuses,
			TotalPenalties:  res.TotalPenalties,
			AffectedDomains: res.AffectedDomains,
			Penalties:       toPenalties(res.Penalties),
		}
		for _, d := range res.Domains {
			out.Domains = append(out.Domains, AuditDomainEntry{
				Target:    d.Target,
				Net:       d.Net,
				Breakdown: toBreakdown(d.Breakdown),
			})
		}
		if res.Err != nil {
			out.Error = apperrors.Localize(res.Err, input.Locale)
		}
		return nil, out, nil
	}
}

func toBreakdown(b resolve.Breakdown) BreakdownResult {
	out := BreakdownResult{Target: b.Target, Total: b.Total}
	for _, entry := range b.ByType {
		out.ByType = append(out.ByType, TypeEntry{
			Type:        string(entry.Type),
			Value:       entry.Value,
			Count:       entry.Count,
			Description: entry.Description,
		})
	}
	for _, applied := range b.Applied {
		out.Applied = append(out.Applied, AppliedEntry{
			ID:           applied.Modifier.ID,
			Source:       string(applied.Modifier.Source),
			SourceName:   applied.Modifier.SourceName,
			Type:         string(applied.Modifier.Type),
			Value:        applied.Modifier.Value,
			Contributing: applied.Contributing,
			SuppressedBy: applied.SuppressedBy,
			Description:  applied.Modifier.Description,
		})
	}
	for _, flag := range b.Meta {
		out.MetaFlags = append(out.MetaFlags, string(flag))
	}
	return out
}

func toPenalties(p engine.Penalties) PenaltiesResult {
	return PenaltiesResult{
		Condition:   p.Condition,
		Encumbrance: p.Encumbrance,
		Fatigue:     p.Fatigue,
	}
}
