package content

import (
	"errors"
	"testing"

	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

func TestValidateAcceptsWellFormedDefinition(t *testing.T) {
	def := Definition{
		ID:   "equip-test",
		Kind: KindEquipment,
		Name: "Test Item",
		Effects: []Effect{
			{Target: modifier.TargetGlobalAttack, Type: modifier.TypeUntyped, Value: 1},
			{Target: "skill.acrobatics", Type: modifier.TypeEnhancement, Value: 2, Condition: "aiming"},
		},
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		code apperrors.Code
	}{
		{
			name: "missing id",
			def:  Definition{Kind: KindTalent, Name: "No ID"},
			code: apperrors.CodeContentUnknownKind,
		},
		{
			name: "unknown kind",
			def:  Definition{ID: "x", Kind: Kind("artifact"), Name: "X"},
			code: apperrors.CodeContentUnknownKind,
		},
		{
			name: "bad effect target",
			def: Definition{
				ID: "x", Kind: KindCondition, Name: "X",
				Effects: []Effect{{Target: "bogus.path", Type: modifier.TypePenalty, Value: -1}},
			},
			code: apperrors.CodeContentInvalidEffect,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, apperrors.New(tc.code, "")) {
				t.Fatalf("error = %v, want code %s", err, tc.code)
			}
		})
	}
}

func TestDefaultDefinitionsAreValid(t *testing.T) {
	defs := DefaultDefinitions()
	if len(defs) == 0 {
		t.Fatal("expected seed definitions")
	}
	seen := map[string]bool{}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			t.Fatalf("seed definition %s: %v", def.ID, err)
		}
		if seen[def.ID] {
			t.Fatalf("duplicate seed definition id %s", def.ID)
		}
		seen[def.ID] = true
	}
}
