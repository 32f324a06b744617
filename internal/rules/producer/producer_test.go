package producer

import (
	"context"
	"testing"

	"github.com/sagaforge/engine/internal/character"
	"github.com/sagaforge/engine/internal/content"
	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// fakeLibrary serves definitions from a map, returning NOT_FOUND for misses.
type fakeLibrary struct {
	defs map[string]content.Definition
}

func (f *fakeLibrary) Definition(_ context.Context, id string) (content.Definition, error) {
	def, ok := f.defs[id]
	if !ok {
		return content.Definition{}, apperrors.New(apperrors.CodeNotFound, "definition not found: "+id)
	}
	return def, nil
}

func (f *fakeLibrary) ByKind(_ context.Context, kind content.Kind) ([]content.Definition, error) {
	var out []content.Definition
	for _, def := range f.defs {
		if def.Kind == kind {
			out = append(out, def)
		}
	}
	return out, nil
}

func library() *fakeLibrary {
	return &fakeLibrary{defs: map[string]content.Definition{
		"itm-gloves": {
			ID:   "itm-gloves",
			Kind: content.KindEquipment,
			Name: "Sparring Gloves",
			Effects: []content.Effect{
				{Target: "skill.acrobatics", Type: modifier.TypeEnhancement, Value: 2},
			},
		},
		"itm-scope": {
			ID:   "itm-scope",
			Kind: content.KindEquipment,
			Name: "Targeting Scope",
			Effects: []content.Effect{
				{Target: "global.attack", Type: modifier.TypeUntyped, Value: 1, Condition: "aiming"},
			},
		},
		"tal-dodge": {
			ID:   "tal-dodge",
			Kind: content.KindTalent,
			Name: "Dodge",
			Effects: []content.Effect{
				{Target: "defense.reflex", Type: modifier.TypeDodge, Value: 1},
			},
		},
		"spc-nimble": {
			ID:   "spc-nimble",
			Kind: content.KindSpecies,
			Name: "Nimble Folk",
			Effects: []content.Effect{
				{Target: "ability.dexterity", Type: modifier.TypeUntyped, Value: 2},
			},
		},
		"cnd-pinned": {
			ID:   "cnd-pinned",
			Kind: content.KindCondition,
			Name: "Pinned",
			Effects: []content.Effect{
				{Target: "defense.reflex", Type: modifier.TypeDexterityLoss, Value: 1},
				{Target: "skill.acrobatics", Type: modifier.TypeCircumstance, Value: -5},
			},
		},
		"sys-gyro": {
			ID:   "sys-gyro",
			Kind: content.KindDroidSystem,
			Name: "Gyro Stabilizer",
			Effects: []content.Effect{
				{Target: "skill.acrobatics", Type: modifier.TypeEnhancement, Value: 2},
			},
		},
	}}
}

func TestEquipmentProducer(t *testing.T) {
	ch := &character.Character{Equipment: []character.ItemRef{
		{ItemID: "i1", DefinitionID: "itm-gloves", Name: "Sparring Gloves"},
		{ItemID: "i2", DefinitionID: "itm-missing", Name: "Lost Relic"},
	}}

	set, err := NewEquipment(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if set.Authority != AuthorityDefinition {
		t.Fatalf("Authority = %d, want definition rank", set.Authority)
	}
	if len(set.Modifiers) != 1 {
		t.Fatalf("modifiers = %d, want 1 (missing definition skipped)", len(set.Modifiers))
	}
	m := set.Modifiers[0]
	if m.Source != modifier.SourceEquipment || m.Target != "skill.acrobatics" || m.Value != 2 {
		t.Fatalf("unexpected modifier %+v", m)
	}
}

func TestConditionalEffectEmittedDisabled(t *testing.T) {
	ch := &character.Character{Equipment: []character.ItemRef{
		{ItemID: "i1", DefinitionID: "itm-scope"},
	}}

	set, err := NewEquipment(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 1 || set.Modifiers[0].Enabled {
		t.Fatalf("unmet condition should emit disabled record, got %+v", set.Modifiers)
	}

	ch.Flags = map[string]bool{"aiming": true}
	set, err = NewEquipment(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if !set.Modifiers[0].Enabled {
		t.Fatalf("met condition should emit enabled record")
	}
}

func TestTalentAndSpeciesProducers(t *testing.T) {
	ch := &character.Character{
		SpeciesID: "spc-nimble",
		Talents:   []character.TalentRef{{DefinitionID: "tal-dodge", Name: "Dodge"}},
	}

	talents, err := NewTalents(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("talents: %v", err)
	}
	if len(talents.Modifiers) != 1 || talents.Modifiers[0].Type != modifier.TypeDodge {
		t.Fatalf("talent modifiers = %+v", talents.Modifiers)
	}

	species, err := NewSpecies(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("species: %v", err)
	}
	if len(species.Modifiers) != 1 || species.Modifiers[0].Source != modifier.SourceSpecies {
		t.Fatalf("species modifiers = %+v", species.Modifiers)
	}
}

func TestConditionProducerEmitsMeta(t *testing.T) {
	ch := &character.Character{Conditions: []character.ConditionRef{
		{DefinitionID: "cnd-pinned", Name: "Pinned"},
	}}

	set, err := NewConditions(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 2 {
		t.Fatalf("modifiers = %d, want 2", len(set.Modifiers))
	}
	if set.Modifiers[0].Type != modifier.TypeDexterityLoss {
		t.Fatalf("first effect type = %s, want dexterity-loss", set.Modifiers[0].Type)
	}
}

func TestInstalledSystemsProducer(t *testing.T) {
	ch := &character.Character{Systems: []character.SystemRef{
		{DefinitionID: "sys-gyro", Slot: "chassis-1"},
	}}

	set, err := NewInstalledSystems(library()).Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 1 || set.Modifiers[0].Source != modifier.SourceDroidSystem {
		t.Fatalf("modifiers = %+v", set.Modifiers)
	}
}

func TestEncumbranceProducer(t *testing.T) {
	light := &character.Character{CarriedWeight: 10, CarryCapacity: 40}
	set, err := NewEncumbrance().Produce(context.Background(), light)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 0 {
		t.Fatalf("light load emitted %+v", set.Modifiers)
	}

	heavy := &character.Character{CarriedWeight: 30, CarryCapacity: 40}
	set, err = NewEncumbrance().Produce(context.Background(), heavy)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 1 || set.Modifiers[0].Target != "speed.base" || set.Modifiers[0].Value != -2 {
		t.Fatalf("heavy load modifiers = %+v", set.Modifiers)
	}
}

func TestAdHocProducerPassesThroughUnvalidated(t *testing.T) {
	raw := modifier.Modifier{
		ID:         "edit-1",
		Source:     modifier.SourceAdHoc,
		SourceName: "GM Edit",
		Target:     "bogus.path", // malformed on purpose
		Type:       modifier.TypeUntyped,
		Value:      3,
		Enabled:    true,
		Priority:   modifier.PriorityDefault,
	}
	ch := &character.Character{AdHoc: []modifier.Modifier{raw}}

	set, err := NewAdHoc().Produce(context.Background(), ch)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(set.Modifiers) != 1 || set.Modifiers[0].Target != "bogus.path" {
		t.Fatalf("ad-hoc records should pass through untouched, got %+v", set.Modifiers)
	}
	if set.Authority != AuthorityAdHoc {
		t.Fatalf("Authority = %d, want ad-hoc rank", set.Authority)
	}
}
