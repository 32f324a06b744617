// Package modifier defines the typed bonus/penalty record that feeds the
// stacking engine, plus the static stacking-rule and target tables.
package modifier

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/sagaforge/engine/internal/platform/errors"
)

// Source is the origin category of a modifier.
type Source string

const (
	SourceEquipment     Source = "equipment"
	SourceTalent        Source = "talent"
	SourceSpecies       Source = "species"
	SourceCondition     Source = "condition"
	SourceTemporary     Source = "temporary-effect"
	SourceEncumbrance   Source = "encumbrance"
	SourceDroidSystem   Source = "droid-system"
	SourceVehicleSystem Source = "vehicle-system"
	SourceAdHoc         Source = "ad-hoc"
)

// Sources lists every legal source category.
var Sources = []Source{
	SourceEquipment,
	SourceTalent,
	SourceSpecies,
	SourceCondition,
	SourceTemporary,
	SourceEncumbrance,
	SourceDroidSystem,
	SourceVehicleSystem,
	SourceAdHoc,
}

// Type is the stacking category of a modifier.
type Type string

const (
	TypeUntyped      Type = "untyped"
	TypeCompetence   Type = "competence"
	TypeEnhancement  Type = "enhancement"
	TypeMorale       Type = "morale"
	TypeInsight      Type = "insight"
	TypeCircumstance Type = "circumstance"
	TypePenalty      Type = "penalty"
	TypeDodge        Type = "dodge"
	// TypeDexterityLoss is a meta flag, never summed. The defense calculator
	// reads it to suppress the ability component of reflex defense.
	TypeDexterityLoss Type = "dexterity-loss"
)

// Types lists every legal stacking category.
var Types = []Type{
	TypeUntyped,
	TypeCompetence,
	TypeEnhancement,
	TypeMorale,
	TypeInsight,
	TypeCircumstance,
	TypePenalty,
	TypeDodge,
	TypeDexterityLoss,
}

// Priority bounds. PriorityDefault is assigned when a record omits priority.
const (
	PriorityMin     = 0
	PriorityMax     = 1000
	PriorityDefault = 500
)

// Modifier is one bonus or penalty candidate aimed at a single target.
// Records are immutable after construction: a change means building a new
// record and discarding the old one.
type Modifier struct {
	// ID is a stable identity, synthesized from source and target when the
	// producer does not supply one.
	ID string
	// Source is the origin category.
	Source Source
	// SourceID identifies the specific originating record, used for
	// same-source deduplication.
	SourceID string
	// SourceName is the human label used in breakdown text and tie-breaks.
	SourceName string
	// Target is the namespaced key this modifier applies to.
	Target string
	// Type is the stacking category.
	Type Type
	// Value is the signed adjustment.
	Value float64
	// Enabled excludes the record from aggregation when false; disabled
	// records are retained for audit.
	Enabled bool
	// Priority (0..1000, lower first) breaks highest-value ties and orders
	// display output.
	Priority int
	// Conditions carries producer-evaluated conditional flags. The engine
	// never evaluates them.
	Conditions []string
	// Description is display text, synthesized when absent.
	Description string
}

// Input carries the raw fields for constructing a Modifier. Optional fields
// use pointers so absence is distinguishable from the zero value.
type Input struct {
	ID          string
	Source      Source
	SourceID    string
	SourceName  string
	Target      string
	Type        Type
	Value       float64
	Enabled     *bool
	Priority    *int
	Conditions  []string
	Description string
}

// New validates input and constructs an immutable Modifier. It fails with a
// descriptive error rather than defaulting any required field.
func New(in Input) (Modifier, error) {
	if strings.TrimSpace(string(in.Source)) == "" {
		return Modifier{}, apperrors.New(apperrors.CodeModifierMissingSource, "modifier source is required")
	}
	if strings.TrimSpace(in.SourceName) == "" {
		return Modifier{}, apperrors.New(apperrors.CodeModifierMissingSourceName, "modifier source name is required")
	}
	if strings.TrimSpace(in.Target) == "" {
		return Modifier{}, apperrors.New(apperrors.CodeModifierMissingTarget, "modifier target is required")
	}
	if strings.TrimSpace(string(in.Type)) == "" {
		return Modifier{}, apperrors.New(apperrors.CodeModifierMissingType, "modifier type is required")
	}
	if !validSource(in.Source) {
		return Modifier{}, apperrors.WithMetadata(
			apperrors.CodeModifierInvalidSource,
			fmt.Sprintf("unknown modifier source: %s", in.Source),
			map[string]string{"Source": string(in.Source)},
		)
	}
	if !validType(in.Type) {
		return Modifier{}, apperrors.WithMetadata(
			apperrors.CodeModifierInvalidType,
			fmt.Sprintf("unknown modifier type: %s", in.Type),
			map[string]string{"Type": string(in.Type)},
		)
	}
	if !ValidTarget(in.Target) {
		return Modifier{}, apperrors.WithMetadata(
			apperrors.CodeModifierInvalidTarget,
			fmt.Sprintf("unknown modifier target: %s", in.Target),
			map[string]string{"Target": in.Target},
		)
	}
	if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
		return Modifier{}, apperrors.New(apperrors.CodeModifierValueNotFinite, "modifier value must be finite")
	}

	m := Modifier{
		ID:          strings.TrimSpace(in.ID),
		Source:      in.Source,
		SourceID:    strings.TrimSpace(in.SourceID),
		SourceName:  strings.TrimSpace(in.SourceName),
		Target:      in.Target,
		Type:        in.Type,
		Value:       in.Value,
		Enabled:     true,
		Priority:    PriorityDefault,
		Description: strings.TrimSpace(in.Description),
	}
	if len(in.Conditions) > 0 {
		m.Conditions = append([]string(nil), in.Conditions...)
	}
	if in.Enabled != nil {
		m.Enabled = *in.Enabled
	}
	if in.Priority != nil {
		m.Priority = clampPriority(*in.Priority)
	}
	if m.ID == "" {
		m.ID = synthesizeID(m)
	}
	if m.Description == "" {
		m.Description = synthesizeDescription(m)
	}
	return m, nil
}

// IsValid is the non-throwing validity predicate used when ingesting
// externally-produced records. It mirrors New without constructing.
func IsValid(m Modifier) bool {
	if strings.TrimSpace(string(m.Source)) == "" ||
		strings.TrimSpace(m.SourceName) == "" ||
		strings.TrimSpace(m.Target) == "" ||
		strings.TrimSpace(string(m.Type)) == "" {
		return false
	}
	if !validSource(m.Source) || !validType(m.Type) || !ValidTarget(m.Target) {
		return false
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return false
	}
	return m.Priority >= PriorityMin && m.Priority <= PriorityMax
}

func validSource(s Source) bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

func validType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

func clampPriority(p int) int {
	return min(max(p, PriorityMin), PriorityMax)
}

func synthesizeID(m Modifier) string {
	if m.SourceID != "" {
		return fmt.Sprintf("%s:%s:%s", m.Source, m.SourceID, m.Target)
	}
	return fmt.Sprintf("%s:%s", m.Source, m.Target)
}

func synthesizeDescription(m Modifier) string {
	return fmt.Sprintf("%s %+g", m.SourceName, m.Value)
}
