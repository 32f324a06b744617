package domain

import (
	"context"
	"testing"

	"github.com/sagaforge/engine/internal/character"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/engine"
	"github.com/sagaforge/engine/internal/rules/modifier"
	"github.com/sagaforge/engine/internal/rules/producer"
)

type fakeSource struct {
	characters map[string]*character.Character
}

func (s *fakeSource) Character(_ context.Context, id string) (*character.Character, error) {
	ch, ok := s.characters[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "character not found: "+id)
	}
	return ch, nil
}

type static struct {
	name string
	mods []modifier.Modifier
}

func (s *static) Name() string { return s.name }

func (s *static) Produce(context.Context, *character.Character) (producer.Set, error) {
	return producer.Set{Producer: s.name, Authority: producer.AuthorityDefinition, Modifiers: s.mods}, nil
}

func mustModifier(t *testing.T, in modifier.Input) modifier.Modifier {
	t.Helper()
	m, err := modifier.New(in)
	if err != nil {
		t.Fatalf("modifier.New: %v", err)
	}
	return m
}

func fixture(t *testing.T) (*fakeSource, *engine.Engine) {
	t.Helper()
	source := &fakeSource{characters: map[string]*character.Character{
		"ch-1": {
			ID:            "ch-1",
			Name:          "Acrobat",
			Abilities:     map[string]int{character.AbilityDexterity: 16},
			TrainedSkills: map[string]string{"acrobatics": character.AbilityDexterity},
		},
	}}
	eng := engine.New([]producer.Producer{
		&static{name: "equipment", mods: []modifier.Modifier{
			mustModifier(t, modifier.Input{
				Source: modifier.SourceEquipment, SourceID: "itm-1", SourceName: "Gymnast Rig",
				Target: "skill.acrobatics", Type: modifier.TypeEnhancement, Value: 2,
			}),
			mustModifier(t, modifier.Input{
				Source: modifier.SourceEquipment, SourceID: "itm-2", SourceName: "Targeting Scope",
				Target: "global.attack", Type: modifier.TypeUntyped, Value: 1,
			}),
		}},
	}, nil)
	return source, eng
}

func TestResolveSkillHandler(t *testing.T) {
	source, eng := fixture(t)
	handler := ResolveSkillHandler(source, eng)

	_, out, err := handler(context.Background(), nil, ResolveSkillInput{CharacterID: "ch-1", Skill: "acrobatics"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("result error = %q", out.Error)
	}
	if out.Net != 5 {
		t.Fatalf("net = %g, want 5 (dex +3, enhancement +2)", out.Net)
	}
	if out.Breakdown.Target != "skill.acrobatics" || len(out.Breakdown.Applied) != 1 {
		t.Fatalf("breakdown = %+v", out.Breakdown)
	}
}

func TestResolveSkillHandlerUnknownSkillDegrades(t *testing.T) {
	source, eng := fixture(t)
	handler := ResolveSkillHandler(source, eng)

	_, out, err := handler(context.Background(), nil, ResolveSkillInput{CharacterID: "ch-1", Skill: "basketweaving"})
	if err != nil {
		t.Fatalf("handler must not fail on a degraded resolution: %v", err)
	}
	if out.Error == "" || out.Net != 0 {
		t.Fatalf("out = %+v, want degraded default with error text", out)
	}
}

func TestResolveAttackHandler(t *testing.T) {
	source, eng := fixture(t)
	handler := ResolveAttackHandler(source, eng)

	_, out, err := handler(context.Background(), nil, ResolveAttackInput{CharacterID: "ch-1"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.NetAttack != 1 || out.NetDamage != 0 {
		t.Fatalf("out = %+v", out)
	}
}

func TestResolveDefenseHandler(t *testing.T) {
	source, eng := fixture(t)
	handler := ResolveDefenseHandler(source, eng)

	_, out, err := handler(context.Background(), nil, ResolveDefenseInput{CharacterID: "ch-1", Defense: "reflex"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Net != 13 || out.AbilityModifier != 3 {
		t.Fatalf("out = %+v, want base 10 plus dex 3", out)
	}
}

func TestModifierAuditHandler(t *testing.T) {
	source, eng := fixture(t)
	handler := ModifierAuditHandler(source, eng)

	_, out, err := handler(context.Background(), nil, ModifierAuditInput{CharacterID: "ch-1"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(out.AffectedDomains) != 2 {
		t.Fatalf("affected = %v, want skill.acrobatics and global.attack", out.AffectedDomains)
	}
	if out.TotalBonuses != 3 {
		t.Fatalf("total bonuses = %g, want 3", out.TotalBonuses)
	}
}

func TestHandlersFailOnMissingCharacter(t *testing.T) {
	source, eng := fixture(t)
	handler := ResolveAttackHandler(source, eng)

	_, _, err := handler(context.Background(), nil, ResolveAttackInput{CharacterID: "missing"})
	if err == nil {
		t.Fatal("expected load error for unknown character")
	}
}
