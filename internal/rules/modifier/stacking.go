package modifier

// Rule is the combination law for one stacking category.
type Rule string

const (
	// RuleStack sums every enabled modifier of the type.
	RuleStack Rule = "stack"
	// RuleHighestOnly applies only the single greatest signed value. Ties
	// break by lowest priority, then alphabetical source name.
	RuleHighestOnly Rule = "highestOnly"
	// RuleStackUnlessSameSource sums across distinct source IDs; duplicates
	// from one source contribute only their greatest signed value.
	RuleStackUnlessSameSource Rule = "stackUnlessSameSource"
	// RuleMeta excludes the type from numeric aggregation entirely; it is
	// surfaced as a flag for downstream calculators.
	RuleMeta Rule = "meta"
)

// stackingRules is the per-type combination law. It is fixed rules content,
// not runtime configuration.
var stackingRules = map[Type]Rule{
	TypeUntyped:       RuleStack,
	TypeDodge:         RuleStack,
	TypePenalty:       RuleStack,
	TypeCompetence:    RuleHighestOnly,
	TypeEnhancement:   RuleHighestOnly,
	TypeMorale:        RuleHighestOnly,
	TypeInsight:       RuleHighestOnly,
	TypeCircumstance:  RuleStackUnlessSameSource,
	TypeDexterityLoss: RuleMeta,
}

// StackingRule returns the combination law for the given type. Unknown types
// fall back to RuleStack, but construction rejects them before this matters.
func StackingRule(t Type) Rule {
	if rule, ok := stackingRules[t]; ok {
		return rule
	}
	return RuleStack
}
