package content

import "github.com/sagaforge/engine/internal/rules/modifier"

// DefaultDefinitions is the seed catalog installed on first boot so a fresh
// store can resolve something meaningful before any content is authored.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:     "equip-combat-gloves",
			Kind:   KindEquipment,
			Name:   "Combat Gloves",
			Weight: 0.5,
			Effects: []Effect{
				{Target: modifier.TargetGlobalAttack, Type: modifier.TypeUntyped, Value: 1},
			},
		},
		{
			ID:     "equip-targeting-scope",
			Kind:   KindEquipment,
			Name:   "Targeting Scope",
			Weight: 1,
			Effects: []Effect{
				{Target: modifier.TargetGlobalAttack, Type: modifier.TypeUntyped, Value: 1, Condition: "aiming"},
			},
		},
		{
			ID:   "talent-battle-meditation",
			Kind: KindTalent,
			Name: "Battle Meditation",
			Effects: []Effect{
				{Target: "defense.will", Type: modifier.TypeMorale, Value: 1},
			},
		},
		{
			ID:   "species-nimble",
			Kind: KindSpecies,
			Name: "Nimble",
			Effects: []Effect{
				{Target: "ability.dexterity", Type: modifier.TypeUntyped, Value: 2},
			},
		},
		{
			ID:   "condition-pinned",
			Kind: KindCondition,
			Name: "Pinned",
			Effects: []Effect{
				{Target: "defense.reflex", Type: modifier.TypeDexterityLoss, Value: 1},
				{Target: "skill.acrobatics", Type: modifier.TypeCircumstance, Value: -5},
			},
		},
		{
			ID:     "system-gyro-stabilizer",
			Kind:   KindDroidSystem,
			Name:   "Gyro Stabilizer",
			Weight: 4,
			Effects: []Effect{
				{Target: "skill.acrobatics", Type: modifier.TypeEnhancement, Value: 2},
			},
		},
	}
}
