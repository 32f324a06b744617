// Package character models the snapshot document consumed by modifier
// producers and the resolution engine. The engine never mutates it; producers
// regenerate their modifier lists from it on every call.
package character

import (
	"strings"

	apperrors "github.com/sagaforge/engine/internal/platform/errors"
	"github.com/sagaforge/engine/internal/rules/modifier"
)

// Ability keys for the six ability scores.
const (
	AbilityStrength     = "strength"
	AbilityDexterity    = "dexterity"
	AbilityConstitution = "constitution"
	AbilityIntelligence = "intelligence"
	AbilityWisdom       = "wisdom"
	AbilityCharisma     = "charisma"
)

// AbilityNames lists every legal ability key.
var AbilityNames = []string{
	AbilityStrength,
	AbilityDexterity,
	AbilityConstitution,
	AbilityIntelligence,
	AbilityWisdom,
	AbilityCharisma,
}

// Condition track steps. Step 0 is unharmed; StepHelpless disables actions.
const (
	TrackStepMin = 0
	StepHelpless = 5
)

// conditionTrackPenalties maps the condition track step to the categorical
// penalty applied to attacks, checks, and defenses.
var conditionTrackPenalties = [...]float64{0, -1, -2, -5, -10, -10}

// Fatigue levels and their check penalties.
const (
	FatigueNone = iota
	FatigueFatigued
	FatigueExhausted
)

var fatiguePenalties = [...]float64{0, -2, -6}

// Load states derived from carried weight against capacity.
type Load string

const (
	LoadLight      Load = "light"
	LoadHeavy      Load = "heavy"
	LoadOverloaded Load = "overloaded"
)

// loadPenalties maps load state to the categorical check penalty.
var loadPenalties = map[Load]float64{
	LoadLight:      0,
	LoadHeavy:      -5,
	LoadOverloaded: -10,
}

// ItemRef is an equipped item pointing at its content definition.
type ItemRef struct {
	ItemID       string
	DefinitionID string
	Name         string
}

// TalentRef is a taken talent or feat pointing at its content definition.
type TalentRef struct {
	DefinitionID string
	Name         string
}

// ConditionRef is an active condition or temporary effect pointing at its
// content definition.
type ConditionRef struct {
	DefinitionID string
	Name         string
}

// SystemRef is an installed droid or vehicle system occupying a slot.
type SystemRef struct {
	DefinitionID string
	Slot         string
	Name         string
}

// Character is the read-only snapshot of one character at resolution time.
type Character struct {
	ID   string
	Name string

	// Abilities maps ability key to score (typically 8..20).
	Abilities map[string]int
	// TrainedSkills maps skill key to its governing ability key.
	TrainedSkills map[string]string
	// BaseDefenses overrides the default base of 10 per defense name.
	BaseDefenses map[string]float64
	// BaseAttack is the character's base attack bonus.
	BaseAttack int

	// ConditionStep is the current condition track position (0..5).
	ConditionStep int
	// FatigueLevel is 0 (none), 1 (fatigued), or 2 (exhausted).
	FatigueLevel int

	// CarriedWeight and CarryCapacity drive the encumbrance state.
	CarriedWeight float64
	CarryCapacity float64

	SpeciesID  string
	Equipment  []ItemRef
	Talents    []TalentRef
	Conditions []ConditionRef
	Systems    []SystemRef

	// AdHoc carries direct GM or user edits as raw modifier records. They
	// are not validated at entry; reconciliation drops malformed ones.
	AdHoc []modifier.Modifier

	// Flags carries producer-evaluated conditional state (for example
	// "flatFooted"). The resolution engine never reads it directly.
	Flags map[string]bool
}

// AbilityModifier derives the d20 modifier for an ability key.
func (c *Character) AbilityModifier(key string) (int, error) {
	key = strings.TrimSpace(key)
	score, ok := c.Abilities[key]
	if !ok {
		if !knownAbility(key) {
			return 0, apperrors.WithMetadata(
				apperrors.CodeCharacterUnknownAbility,
				"unknown ability: "+key,
				map[string]string{"Ability": key},
			)
		}
		score = 10
	}
	return scoreModifier(score), nil
}

// SkillAbility returns the governing ability for a trained skill.
func (c *Character) SkillAbility(skill string) (string, bool) {
	ability, ok := c.TrainedSkills[skill]
	return ability, ok
}

// BaseDefense returns the base value for a defense, defaulting to 10.
func (c *Character) BaseDefense(defense string) float64 {
	if base, ok := c.BaseDefenses[defense]; ok {
		return base
	}
	return 10
}

// ConditionPenalty returns the categorical penalty for the current condition
// track step. Steps outside the track clamp to the nearest end.
func (c *Character) ConditionPenalty() float64 {
	step := min(max(c.ConditionStep, TrackStepMin), StepHelpless)
	return conditionTrackPenalties[step]
}

// FatiguePenalty returns the categorical penalty for the fatigue level.
func (c *Character) FatiguePenalty() float64 {
	level := min(max(c.FatigueLevel, FatigueNone), FatigueExhausted)
	return fatiguePenalties[level]
}

// CurrentLoad classifies carried weight against capacity. A zero capacity
// never counts as overloaded; unknown capacity means unencumbered.
func (c *Character) CurrentLoad() Load {
	if c.CarryCapacity <= 0 {
		return LoadLight
	}
	switch {
	case c.CarriedWeight > c.CarryCapacity:
		return LoadOverloaded
	case c.CarriedWeight > c.CarryCapacity/2:
		return LoadHeavy
	default:
		return LoadLight
	}
}

// EncumbrancePenalty returns the categorical penalty for the current load.
func (c *Character) EncumbrancePenalty() float64 {
	return loadPenalties[c.CurrentLoad()]
}

// Flag reports whether a producer-evaluated conditional flag is set.
func (c *Character) Flag(name string) bool {
	return c.Flags[name]
}

func knownAbility(key string) bool {
	for _, name := range AbilityNames {
		if key == name {
			return true
		}
	}
	return false
}

// scoreModifier floors (score-10)/2, rounding toward negative infinity for
// odd scores below 10.
func scoreModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}
