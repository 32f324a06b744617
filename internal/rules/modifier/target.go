package modifier

import "strings"

// Defense names accepted under the defense.* namespace.
const (
	DefenseFortitude       = "fortitude"
	DefenseReflex          = "reflex"
	DefenseWill            = "will"
	DefenseArmor           = "armor"
	DefenseDamageThreshold = "damageThreshold"
)

// Exact aggregation targets outside the wildcard namespaces.
const (
	TargetInitiative   = "initiative.total"
	TargetBaseAttack   = "bab.total"
	TargetMaxHP        = "hp.max"
	TargetGlobalAttack = "global.attack"
	TargetGlobalDamage = "global.damage"
)

// exactTargets is the closed set of non-wildcard targets.
var exactTargets = map[string]struct{}{
	TargetInitiative:   {},
	TargetBaseAttack:   {},
	TargetMaxHP:        {},
	TargetGlobalAttack: {},
	TargetGlobalDamage: {},
}

// wildcardNamespaces accept any non-empty key segment after the prefix.
var wildcardNamespaces = []string{"ability.", "skill.", "speed."}

// DefenseNames lists every recognized defense in display order.
var DefenseNames = []string{
	DefenseFortitude,
	DefenseReflex,
	DefenseWill,
	DefenseArmor,
	DefenseDamageThreshold,
}

// defenseNames is the closed set of keys under defense.*.
var defenseNames = map[string]struct{}{
	DefenseFortitude:       {},
	DefenseReflex:          {},
	DefenseWill:            {},
	DefenseArmor:           {},
	DefenseDamageThreshold: {},
}

// ValidTarget reports whether target matches a registered aggregation
// pattern. Unknown targets are rejected at ingestion so producer typos never
// disappear into a wrong bucket.
func ValidTarget(target string) bool {
	if _, ok := exactTargets[target]; ok {
		return true
	}
	if name, ok := strings.CutPrefix(target, "defense."); ok {
		_, known := defenseNames[name]
		return known
	}
	for _, prefix := range wildcardNamespaces {
		if key, ok := strings.CutPrefix(target, prefix); ok {
			return key != "" && !strings.Contains(key, ".")
		}
	}
	return false
}

// SkillTarget builds the aggregation target for a skill key.
func SkillTarget(skill string) string {
	return "skill." + skill
}

// AbilityTarget builds the aggregation target for an ability key.
func AbilityTarget(ability string) string {
	return "ability." + ability
}

// DefenseTarget builds the aggregation target for a defense name.
func DefenseTarget(defense string) string {
	return "defense." + defense
}

// ValidDefense reports whether the defense name itself is recognized.
func ValidDefense(defense string) bool {
	_, ok := defenseNames[defense]
	return ok
}
